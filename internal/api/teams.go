package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/models"
	"github.com/meur/dtwiki/internal/session"
	"github.com/meur/dtwiki/internal/synergy"
	"github.com/meur/dtwiki/internal/team"
)

const maxPasteBytes = 1 << 20

// teamSessionResponse is a team session as the client sees it
type teamSessionResponse struct {
	ID       string              `json:"id"`
	Version  int64               `json:"version"`
	Document models.TeamDocument `json:"document"`
	// Available lists catalog characters neither placed nor benched
	Available []string `json:"available"`
}

func (s *Server) teamResponse(w http.ResponseWriter, status int, id string, c team.Composition, version int64) {
	available := []string{}
	for _, name := range s.catalog.Names() {
		if c.SlotOf(name) < 0 && !c.OnBench(name) {
			available = append(available, name)
		}
	}
	setVersion(w, version)
	respondJSON(w, status, teamSessionResponse{
		ID:        id,
		Version:   version,
		Document:  team.Serialize(c),
		Available: available,
	})
}

type openSessionRequest struct {
	// ID resumes the draft of an earlier session when set
	ID string `json:"id"`
}

// handleOpenTeam opens or resumes a team session
func (s *Server) handleOpenTeam(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, err)
			return
		}
	}

	sess, err := s.sessions.OpenTeam(r.Context(), req.ID)
	if err != nil {
		respondErr(w, err)
		return
	}
	c, version := sess.Snapshot()
	s.teamResponse(w, http.StatusCreated, sess.ID, c, version)
}

func (s *Server) teamSession(w http.ResponseWriter, r *http.Request) (*session.TeamSession, bool) {
	sess, err := s.sessions.Team(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return nil, false
	}
	return sess, true
}

// handleGetTeam returns the current state of a team session
func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.teamSession(w, r)
	if !ok {
		return
	}
	c, version := sess.Snapshot()
	s.teamResponse(w, http.StatusOK, sess.ID, c, version)
}

// handleCloseTeam flushes and closes a team session; ?discard=true also
// deletes its draft
func (s *Server) handleCloseTeam(w http.ResponseWriter, r *http.Request) {
	discard := r.URL.Query().Get("discard") == "true"
	if err := s.sessions.CloseTeam(r.Context(), chi.URLParam(r, "id"), discard); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// updateTeam runs fn against a session and responds with the new state
func (s *Server) updateTeam(w http.ResponseWriter, r *http.Request, fn func(team.Composition) (team.Composition, error)) {
	sess, ok := s.teamSession(w, r)
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
	s.teamResponse(w, http.StatusOK, sess.ID, c, version)
}

// decodeThen decodes the request body into a fresh T and hands it to fn
func decodeThen[T any](w http.ResponseWriter, r *http.Request, fn func(T)) {
	var req T
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	fn(req)
}

func (s *Server) handleTeamDrop(w http.ResponseWriter, r *http.Request) {
	decodeThen(w, r, func(ev team.DragEvent) {
		s.updateTeam(w, r, func(c team.Composition) (team.Composition, error) {
			return s.teams.Drop(c, ev)
		})
	})
}

type placeRequest struct {
	Character string `json:"character"`
	Slot      int    `json:"slot"`
}

func (s *Server) handleTeamPlace(w http.ResponseWriter, r *http.Request) {
	decodeThen(w, r, func(req placeRequest) {
		s.updateTeam(w, r, func(c team.Composition) (team.Composition, error) {
			return s.teams.PlaceOnSlot(c, req.Character, req.Slot)
		})
	})
}

type benchRequest struct {
	Character string `json:"character"`
	// Anchor is the benched character to insert before; empty appends
	Anchor string `json:"anchor"`
}

func (s *Server) handleTeamBench(w http.ResponseWriter, r *http.Request) {
	decodeThen(w, r, func(req benchRequest) {
		s.updateTeam(w, r, func(c team.Composition) (team.Composition, error) {
			return s.teams.MoveToBench(c, req.Character, req.Anchor)
		})
	})
}

type characterRequest struct {
	Character string `json:"character"`
}

func (s *Server) handleTeamAvailable(w http.ResponseWriter, r *http.Request) {
	decodeThen(w, r, func(req characterRequest) {
		s.updateTeam(w, r, func(c team.Composition) (team.Composition, error) {
			return s.teams.MoveToAvailable(c, req.Character)
		})
	})
}

func (s *Server) handleTeamAuto(w http.ResponseWriter, r *http.Request) {
	decodeThen(w, r, func(req characterRequest) {
		s.updateTeam(w, r, func(c team.Composition) (team.Composition, error) {
			return s.teams.AddToNextValidSlot(c, req.Character)
		})
	})
}

type overdriveRequest struct {
	Slot int `json:"slot"`
	// Order is the requested 1-based rank; null removes the slot
	Order *float64 `json:"order"`
}

func (s *Server) handleTeamOverdrive(w http.ResponseWriter, r *http.Request) {
	decodeThen(w, r, func(req overdriveRequest) {
		s.updateTeam(w, r, func(c team.Composition) (team.Composition, error) {
			return s.teams.SetOverdriveOrder(c, req.Slot, req.Order)
		})
	})
}

type teamNoteRequest struct {
	// Slot addresses a slot note; without it Character addresses a bench note
	Slot      *int   `json:"slot"`
	Character string `json:"character"`
	Note      string `json:"note"`
}

func (s *Server) handleTeamNote(w http.ResponseWriter, r *http.Request) {
	decodeThen(w, r, func(req teamNoteRequest) {
		s.updateTeam(w, r, func(c team.Composition) (team.Composition, error) {
			if req.Slot != nil {
				return s.teams.SetSlotNote(c, *req.Slot, req.Note)
			}
			return s.teams.SetBenchNote(c, req.Character, req.Note)
		})
	})
}

func (s *Server) handleTeamMetadata(w http.ResponseWriter, r *http.Request) {
	decodeThen(w, r, func(req team.Metadata) {
		s.updateTeam(w, r, func(c team.Composition) (team.Composition, error) {
			return s.teams.SetMetadata(c, req)
		})
	})
}

type wyrmspellRequest struct {
	Category models.WyrmspellCategory `json:"category"`
	Name     string                   `json:"name"`
}

func (s *Server) handleTeamWyrmspell(w http.ResponseWriter, r *http.Request) {
	decodeThen(w, r, func(req wyrmspellRequest) {
		if req.Name != "" {
			if spell, ok := s.catalog.Wyrmspell(req.Name); !ok || spell.Type != req.Category {
				respondErr(w, errors.InvalidArgumentf("%q is not a %s wyrmspell", req.Name, req.Category))
				return
			}
		}
		s.updateTeam(w, r, func(c team.Composition) (team.Composition, error) {
			return s.teams.SetWyrmspell(c, req.Category, req.Name)
		})
	})
}

type clearRequest struct {
	ResetMetadata bool `json:"reset_metadata"`
}

func (s *Server) handleTeamClear(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, err)
			return
		}
	}
	s.updateTeam(w, r, func(c team.Composition) (team.Composition, error) {
		return s.teams.Clear(c, req.ResetMetadata), nil
	})
}

func readPaste(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxPasteBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return "", false
	}
	return string(raw), true
}

// handleTeamPaste merges a pasted team document or member list into the session
func (s *Server) handleTeamPaste(w http.ResponseWriter, r *http.Request) {
	raw, ok := readPaste(w, r)
	if !ok {
		return
	}
	s.updateTeam(w, r, func(c team.Composition) (team.Composition, error) {
		return s.teams.Paste(c, raw)
	})
}

// synergyInput gathers the scorer input from a composition
func (s *Server) synergyInput(c team.Composition) synergy.Input {
	in := synergy.Input{
		Faction:        c.Faction,
		ContentType:    c.ContentType,
		OverdriveCount: len(c.Overdrive),
		Wyrmspells:     c.Wyrmspells,
	}
	for _, name := range c.Roster() {
		if ch, ok := s.catalog.Character(name); ok {
			in.Roster = append(in.Roster, ch)
		}
	}
	return in
}

func (s *Server) handleTeamSynergy(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.teamSession(w, r)
	if !ok {
		return
	}
	c, _ := sess.Snapshot()
	respondJSON(w, http.StatusOK, synergy.Score(s.synergyInput(c)))
}

// handleScoreTeam scores a posted team document without a session
func (s *Server) handleScoreTeam(w http.ResponseWriter, r *http.Request) {
	raw, ok := readPaste(w, r)
	if !ok {
		return
	}
	c, err := s.teams.Paste(team.New(), raw)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, synergy.Score(s.synergyInput(c)))
}

func (s *Server) handleTeamSubmission(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.teamSession(w, r)
	if !ok {
		return
	}
	c, _ := sess.Snapshot()
	issue, err := s.issues.Team(team.Serialize(c))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, issue)
}
