package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/meur/dtwiki/internal/api"
	"github.com/meur/dtwiki/internal/catalog"
	"github.com/meur/dtwiki/internal/config"
	"github.com/meur/dtwiki/internal/drafts"
	"github.com/meur/dtwiki/internal/icons"
	redisclient "github.com/meur/dtwiki/internal/redis"
	"github.com/meur/dtwiki/internal/session"
	"github.com/meur/dtwiki/internal/storage"
	"github.com/meur/dtwiki/internal/submission"
	"github.com/meur/dtwiki/internal/team"
	"github.com/meur/dtwiki/internal/tierlist"
)

var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Port = port
	}

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	cat, err := loadCatalog(cfg.DataDir, store)
	if err != nil {
		return err
	}

	resolver := icons.Resolver(icons.NewManifest(cfg.AssetBaseURL, nil))
	if cfg.AssetManifest != "" {
		manifest, err := icons.LoadManifest(cfg.AssetManifest, cfg.AssetBaseURL)
		if err != nil {
			return fmt.Errorf("failed to load asset manifest: %w", err)
		}
		resolver = manifest
	}

	draftStore, err := newDraftStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	teams := team.NewBuilder(cat)
	tiers := tierlist.NewBuilder(cat)
	sessions, err := session.NewManager(&session.Config{
		Teams:         teams,
		TierLists:     tiers,
		Drafts:        draftStore,
		AutosaveDelay: cfg.AutosaveDelay,
	})
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}
	defer sessions.Close()

	issues, err := submission.NewIssueBuilder(cfg.IssueRepoURL)
	if err != nil {
		return err
	}

	srv, err := api.New(&api.Config{
		Catalog:        cat,
		Icons:          resolver,
		Sessions:       sessions,
		Teams:          teams,
		TierLists:      tiers,
		Store:          store,
		Issues:         issues,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	// Serve frontend static files (for production deployment)
	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		FileServer(srv.Router(), "/", http.Dir(filepath.Clean(cfg.StaticDir)))
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Builder API starting on http://localhost:%d", cfg.Port)
		log.Printf("Database: %s, %d characters loaded", cfg.DBPath, cat.Len())
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Println("Received shutdown signal, gracefully stopping...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// loadCatalog prefers the JSON data files and falls back to the database
// when the data directory has no characters.json.
func loadCatalog(dataDir string, store *storage.Store) (*catalog.Catalog, error) {
	if _, err := os.Stat(filepath.Join(dataDir, "characters.json")); err == nil {
		cat, err := catalog.Load(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		return cat, nil
	}

	chars, err := store.GetCharacters()
	if err != nil {
		return nil, fmt.Errorf("failed to read characters: %w", err)
	}
	spells, err := store.GetWyrmspells()
	if err != nil {
		return nil, fmt.Errorf("failed to read wyrmspells: %w", err)
	}
	return catalog.New(chars, spells), nil
}

// newDraftStore uses Redis when REDIS_ADDR is set and memory otherwise
func newDraftStore(ctx context.Context, cfg *config.Config) (drafts.Store, error) {
	if cfg.RedisAddr == "" {
		log.Println("REDIS_ADDR not set, drafts are kept in memory")
		return drafts.NewMemoryStore(), nil
	}

	client, err := redisclient.NewClient(cfg.RedisAddr, &redisclient.Options{
		PoolSize:        10,
		ConnMaxIdleTime: 5 * time.Minute,
		MaxRetries:      3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}

	return drafts.NewRedisStore(&drafts.RedisConfig{Client: client, TTL: cfg.DraftTTL})
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		rctx := chi.RouteContext(req.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, req)
	})
}
