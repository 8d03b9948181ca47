package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/models"
	"github.com/meur/dtwiki/internal/team"
	"github.com/meur/dtwiki/internal/tierlist"
)

// canonicalBody parses a published body through the matching builder so
// only well-formed documents over known characters get stored.
func (s *Server) canonicalBody(kind models.DocumentKind, body json.RawMessage) (json.RawMessage, error) {
	if len(body) == 0 {
		return nil, errors.InvalidArgument("document body is required")
	}
	switch kind {
	case models.KindTeam:
		c, err := s.teams.Paste(team.New(), string(body))
		if err != nil {
			return nil, err
		}
		return team.Marshal(c)
	case models.KindTierList:
		c, err := s.tiers.Paste(tierlist.New(), string(body))
		if err != nil {
			return nil, err
		}
		return tierlist.Marshal(c)
	}
	return nil, errors.InvalidArgumentf("unknown document kind %q", kind)
}

// handlePublishDocument stores a team or tier list under a share code
func (s *Server) handlePublishDocument(w http.ResponseWriter, r *http.Request) {
	var req models.DocumentCreate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	body, err := s.canonicalBody(req.Kind, req.Body)
	if err != nil {
		respondErr(w, err)
		return
	}
	req.Body = body

	doc, err := s.store.CreateDocument(&req)
	if err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

// handleListDocuments returns published summaries, optionally of one ?kind=
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	kind := models.DocumentKind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		respondErr(w, errors.InvalidArgumentf("unknown document kind %q", kind))
		return
	}

	docs, err := s.store.ListDocuments(kind)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch documents")
		return
	}

	respondJSON(w, http.StatusOK, docs)
}

// handleGetDocument returns a published document by ID
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetDocument(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// handleUpdateDocument republishes an existing document
func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := s.store.GetDocument(id)
	if err != nil {
		respondErr(w, err)
		return
	}

	var req models.DocumentUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Body != nil {
		body, err := s.canonicalBody(existing.Kind, req.Body)
		if err != nil {
			respondErr(w, err)
			return
		}
		req.Body = body
	}

	if err := s.store.UpdateDocument(id, &req); err != nil {
		respondErr(w, err)
		return
	}

	updated, err := s.store.GetDocument(id)
	if err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// handleGetDocumentByCode resolves a share link
func (s *Server) handleGetDocumentByCode(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetDocumentByShareCode(chi.URLParam(r, "code"))
	if err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}
