package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/models"
	"github.com/meur/dtwiki/internal/session"
	"github.com/meur/dtwiki/internal/tierlist"
)

type tierListSessionResponse struct {
	ID       string                  `json:"id"`
	Version  int64                   `json:"version"`
	Document models.TierListDocument `json:"document"`
	// Unranked lists catalog characters not placed in any tier
	Unranked []string `json:"unranked"`
}

func (s *Server) tierListResponse(w http.ResponseWriter, status int, id string, c tierlist.Composition, version int64) {
	unranked := c.Unranked(s.catalog.Names())
	if unranked == nil {
		unranked = []string{}
	}
	setVersion(w, version)
	respondJSON(w, status, tierListSessionResponse{
		ID:       id,
		Version:  version,
		Document: tierlist.Serialize(c),
		Unranked: unranked,
	})
}

// handleOpenTierList opens or resumes a tier-list session
func (s *Server) handleOpenTierList(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, err)
			return
		}
	}

	sess, err := s.sessions.OpenTierList(r.Context(), req.ID)
	if err != nil {
		respondErr(w, err)
		return
	}
	c, version := sess.Snapshot()
	s.tierListResponse(w, http.StatusCreated, sess.ID, c, version)
}

func (s *Server) tierListSession(w http.ResponseWriter, r *http.Request) (*session.TierListSession, bool) {
	sess, err := s.sessions.TierList(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetTierList(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.tierListSession(w, r)
	if !ok {
		return
	}
	c, version := sess.Snapshot()
	s.tierListResponse(w, http.StatusOK, sess.ID, c, version)
}

func (s *Server) handleCloseTierList(w http.ResponseWriter, r *http.Request) {
	discard := r.URL.Query().Get("discard") == "true"
	if err := s.sessions.CloseTierList(r.Context(), chi.URLParam(r, "id"), discard); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateTierList(w http.ResponseWriter, r *http.Request, fn func(tierlist.Composition) (tierlist.Composition, error)) {
	sess, ok := s.tierListSession(w, r)
	if !ok {
		return
	}
	expected, err := expectedVersion(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	c, version, err := sess.Update(expected, fn)
	if err != nil {
		setVersion(w, version)
		respondErr(w, err)
		return
	}
	s.tierListResponse(w, http.StatusOK, sess.ID, c, version)
}

func (s *Server) handleTierListDrop(w http.ResponseWriter, r *http.Request) {
	decodeThen(w, r, func(ev tierlist.DragEvent) {
		s.updateTierList(w, r, func(c tierlist.Composition) (tierlist.Composition, error) {
			return s.tiers.Drop(c, ev)
		})
	})
}

type tierPlaceRequest struct {
	Character string `json:"character"`
	Tier      int    `json:"tier"`
	// Anchor is the ranked character to insert before; empty appends
	Anchor string `json:"anchor"`
}

func (s *Server) handleTierListPlace(w http.ResponseWriter, r *http.Request) {
	decodeThen(w, r, func(req tierPlaceRequest) {
		s.updateTierList(w, r, func(c tierlist.Composition) (tierlist.Composition, error) {
			return s.tiers.PlaceInTier(c, req.Character, req.Tier, req.Anchor)
		})
	})
}

func (s *Server) handleTierListUnrank(w http.ResponseWriter, r *http.Request) {
	decodeThen(w, r, func(req characterRequest) {
		s.updateTierList(w, r, func(c tierlist.Composition) (tierlist.Composition, error) {
			return s.tiers.Unrank(c, req.Character)
		})
	})
}

type addTierRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleAddTier(w http.ResponseWriter, r *http.Request) {
	decodeThen(w, r, func(req addTierRequest) {
		s.updateTierList(w, r, func(c tierlist.Composition) (tierlist.Composition, error) {
			return s.tiers.AddTier(c, req.Name)
		})
	})
}

// updateTierRequest changes any of a tier's name, note and position
type updateTierRequest struct {
	Name     *string `json:"name,omitempty"`
	Note     *string `json:"note,omitempty"`
	Position *int    `json:"position,omitempty"`
}

func tierIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.InvalidArgumentf("invalid tier index %q", raw)
	}
	return i, nil
}

// handleUpdateTier renames, annotates or moves a tier in one update
func (s *Server) handleUpdateTier(w http.ResponseWriter, r *http.Request) {
	i, err := tierIndex(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	decodeThen(w, r, func(req updateTierRequest) {
		s.updateTierList(w, r, func(c tierlist.Composition) (tierlist.Composition, error) {
			var err error
			if req.Name != nil {
				if c, err = s.tiers.RenameTier(c, i, *req.Name); err != nil {
					return c, err
				}
			}
			if req.Note != nil {
				if c, err = s.tiers.SetTierNote(c, i, *req.Note); err != nil {
					return c, err
				}
			}
			if req.Position != nil {
				return s.tiers.MoveTier(c, i, *req.Position)
			}
			return c, nil
		})
	})
}

func (s *Server) handleDeleteTier(w http.ResponseWriter, r *http.Request) {
	i, err := tierIndex(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	s.updateTierList(w, r, func(c tierlist.Composition) (tierlist.Composition, error) {
		return s.tiers.DeleteTier(c, i)
	})
}

type tierNoteRequest struct {
	Character string `json:"character"`
	Note      string `json:"note"`
}

func (s *Server) handleTierListNote(w http.ResponseWriter, r *http.Request) {
	decodeThen(w, r, func(req tierNoteRequest) {
		s.updateTierList(w, r, func(c tierlist.Composition) (tierlist.Composition, error) {
			return s.tiers.SetNote(c, req.Character, req.Note)
		})
	})
}

func (s *Server) handleTierListMetadata(w http.ResponseWriter, r *http.Request) {
	decodeThen(w, r, func(req tierlist.Metadata) {
		s.updateTierList(w, r, func(c tierlist.Composition) (tierlist.Composition, error) {
			return s.tiers.SetMetadata(c, req)
		})
	})
}

func (s *Server) handleTierListClear(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, err)
			return
		}
	}
	s.updateTierList(w, r, func(c tierlist.Composition) (tierlist.Composition, error) {
		return s.tiers.Clear(c, req.ResetMetadata), nil
	})
}

func (s *Server) handleTierListPaste(w http.ResponseWriter, r *http.Request) {
	raw, ok := readPaste(w, r)
	if !ok {
		return
	}
	s.updateTierList(w, r, func(c tierlist.Composition) (tierlist.Composition, error) {
		return s.tiers.Paste(c, raw)
	})
}

func (s *Server) handleTierListSubmission(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.tierListSession(w, r)
	if !ok {
		return
	}
	c, _ := sess.Snapshot()
	issue, err := s.issues.TierList(tierlist.Serialize(c))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, issue)
}
