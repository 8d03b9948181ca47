package api

import (
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
	"github.com/invopop/jsonschema"

	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/models"
)

var schemaTypes = map[models.DocumentKind]struct {
	value any
	title string
}{
	models.KindTeam:     {models.TeamDocument{}, "Team"},
	models.KindTierList: {models.TierListDocument{}, "Tier List"},
}

// documentSchema reflects the JSON schema of a document kind
func documentSchema(kind models.DocumentKind) (*jsonschema.Schema, error) {
	t, ok := schemaTypes[kind]
	if !ok {
		return nil, errors.NotFoundf("no schema for kind %q", kind)
	}

	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.ReflectFromType(reflect.TypeOf(t.value))
	schema.Title = t.title
	return schema, nil
}

// handleGetSchema serves the JSON schema of a document kind
func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := documentSchema(models.DocumentKind(chi.URLParam(r, "kind")))
	if err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, schema)
}
