package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meur/dtwiki/internal/catalog"
	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/icons"
	"github.com/meur/dtwiki/internal/models"
)

// characterView is a catalog character with its icon references resolved
type characterView struct {
	models.Character
	Icon         *icons.Reference  `json:"icon,omitempty"`
	ClassIcon    *icons.Reference  `json:"class_icon,omitempty"`
	FactionIcons []icons.Reference `json:"faction_icons,omitempty"`
}

func (s *Server) lookupIcon(kind icons.Kind, name string) *icons.Reference {
	ref, ok := s.icons.Lookup(kind, name)
	if !ok {
		return nil
	}
	return &ref
}

func (s *Server) viewCharacter(ch models.Character) characterView {
	v := characterView{
		Character: ch,
		Icon:      s.lookupIcon(icons.KindCharacter, ch.Name),
		ClassIcon: s.lookupIcon(icons.KindClass, string(ch.CharacterClass)),
	}
	for _, f := range ch.Factions {
		if ref := s.lookupIcon(icons.KindFaction, string(f)); ref != nil {
			v.FactionIcons = append(v.FactionIcons, *ref)
		}
	}
	return v
}

// handleListCharacters returns the catalog, filtered by ?q=, ?class=,
// ?faction= and ?quality=
func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	found := s.catalog.Find(catalog.Filter{
		Query:   q.Get("q"),
		Class:   models.CharacterClass(q.Get("class")),
		Faction: models.Faction(q.Get("faction")),
		Quality: models.Quality(q.Get("quality")),
	})

	views := make([]characterView, 0, len(found))
	for _, ch := range found {
		views = append(views, s.viewCharacter(ch))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"characters":  views,
		"total_count": len(views),
	})
}

// handleGetCharacter returns a single character by name
func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ch, ok := s.catalog.Character(name)
	if !ok {
		respondErr(w, errors.NotFoundf("character %q not found", name))
		return
	}

	respondJSON(w, http.StatusOK, s.viewCharacter(ch))
}

type wyrmspellView struct {
	models.Wyrmspell
	Icon *icons.Reference `json:"icon,omitempty"`
}

// handleListWyrmspells returns wyrmspells, optionally of one ?category=
func (s *Server) handleListWyrmspells(w http.ResponseWriter, r *http.Request) {
	category := models.WyrmspellCategory(r.URL.Query().Get("category"))

	spells := s.catalog.Wyrmspells(category)
	views := make([]wyrmspellView, 0, len(spells))
	for _, spell := range spells {
		views = append(views, wyrmspellView{
			Wyrmspell: spell,
			Icon:      s.lookupIcon(icons.KindWyrmspell, spell.Name),
		})
	}

	respondJSON(w, http.StatusOK, views)
}
