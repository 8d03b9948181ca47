package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/meur/dtwiki/internal/catalog"
	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/icons"
	"github.com/meur/dtwiki/internal/session"
	"github.com/meur/dtwiki/internal/storage"
	"github.com/meur/dtwiki/internal/submission"
	"github.com/meur/dtwiki/internal/team"
	"github.com/meur/dtwiki/internal/tierlist"
)

// Config holds the HTTP server dependencies
type Config struct {
	Catalog        *catalog.Catalog
	Icons          icons.Resolver
	Sessions       *session.Manager
	Teams          *team.Builder
	TierLists      *tierlist.Builder
	Store          *storage.Store
	Issues         *submission.IssueBuilder
	AllowedOrigins []string
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	switch {
	case c.Catalog == nil:
		return errors.InvalidArgument("catalog is required")
	case c.Sessions == nil:
		return errors.InvalidArgument("session manager is required")
	case c.Teams == nil, c.TierLists == nil:
		return errors.InvalidArgument("builders are required")
	case c.Store == nil:
		return errors.InvalidArgument("store is required")
	case c.Issues == nil:
		return errors.InvalidArgument("issue builder is required")
	}
	return nil
}

// Server holds the HTTP server dependencies
type Server struct {
	catalog  *catalog.Catalog
	icons    icons.Resolver
	sessions *session.Manager
	teams    *team.Builder
	tiers    *tierlist.Builder
	store    *storage.Store
	issues   *submission.IssueBuilder
	router   chi.Router
}

// New creates a new API server
func New(cfg *Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	resolver := cfg.Icons
	if resolver == nil {
		resolver = icons.NewManifest("", nil)
	}

	s := &Server{
		catalog:  cfg.Catalog,
		icons:    resolver,
		sessions: cfg.Sessions,
		teams:    cfg.Teams,
		tiers:    cfg.TierLists,
		store:    cfg.Store,
		issues:   cfg.Issues,
		router:   chi.NewRouter(),
	}

	s.setupMiddleware(cfg.AllowedOrigins)
	s.setupRoutes()

	return s, nil
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the router so static file routes can be mounted
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "If-Match"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Catalog
		r.Get("/characters", s.handleListCharacters)
		r.Get("/characters/{name}", s.handleGetCharacter)
		r.Get("/wyrmspells", s.handleListWyrmspells)

		// Team builder sessions
		r.Route("/teams/sessions", func(r chi.Router) {
			r.Post("/", s.handleOpenTeam)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTeam)
				r.Delete("/", s.handleCloseTeam)
				r.Post("/drop", s.handleTeamDrop)
				r.Post("/place", s.handleTeamPlace)
				r.Post("/bench", s.handleTeamBench)
				r.Post("/available", s.handleTeamAvailable)
				r.Post("/auto", s.handleTeamAuto)
				r.Post("/overdrive", s.handleTeamOverdrive)
				r.Post("/notes", s.handleTeamNote)
				r.Post("/metadata", s.handleTeamMetadata)
				r.Post("/wyrmspells", s.handleTeamWyrmspell)
				r.Post("/clear", s.handleTeamClear)
				r.Post("/paste", s.handleTeamPaste)
				r.Get("/synergy", s.handleTeamSynergy)
				r.Get("/submission", s.handleTeamSubmission)
			})
		})

		// Tier-list builder sessions
		r.Route("/tierlists/sessions", func(r chi.Router) {
			r.Post("/", s.handleOpenTierList)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTierList)
				r.Delete("/", s.handleCloseTierList)
				r.Post("/drop", s.handleTierListDrop)
				r.Post("/place", s.handleTierListPlace)
				r.Post("/unrank", s.handleTierListUnrank)
				r.Post("/tiers", s.handleAddTier)
				r.Patch("/tiers/{index}", s.handleUpdateTier)
				r.Delete("/tiers/{index}", s.handleDeleteTier)
				r.Post("/notes", s.handleTierListNote)
				r.Post("/metadata", s.handleTierListMetadata)
				r.Post("/clear", s.handleTierListClear)
				r.Post("/paste", s.handleTierListPaste)
				r.Get("/submission", s.handleTierListSubmission)
			})
		})

		// Stateless scoring
		r.Post("/synergy", s.handleScoreTeam)

		// Published documents
		r.Post("/documents", s.handlePublishDocument)
		r.Get("/documents", s.handleListDocuments)
		r.Get("/documents/{id}", s.handleGetDocument)
		r.Put("/documents/{id}", s.handleUpdateDocument)

		// Share links
		r.Get("/s/{code}", s.handleGetDocumentByCode)

		// Schemas
		r.Get("/schemas/{kind}", s.handleGetSchema)
	})

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

type errorResponse struct {
	Error string         `json:"error"`
	Code  errors.Code    `json:"code,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondErr maps a structured error to its HTTP status
func respondErr(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	respondJSON(w, code.HTTPStatus(), errorResponse{
		Error: errors.GetMessage(err),
		Code:  code,
		Meta:  errors.GetMeta(err),
	})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid request body")
	}
	return nil
}

// expectedVersion reads the optimistic concurrency version from If-Match.
// A missing header means an unconditional update.
func expectedVersion(r *http.Request) (int64, error) {
	h := r.Header.Get("If-Match")
	if h == "" || h == "*" {
		return 0, nil
	}
	v, err := strconv.ParseInt(trimQuotes(h), 10, 64)
	if err != nil || v <= 0 {
		return 0, errors.InvalidArgumentf("invalid If-Match version %q", h)
	}
	return v, nil
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func setVersion(w http.ResponseWriter, version int64) {
	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(version, 10)))
}
