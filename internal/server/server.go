// Package server exposes snapshots and their hierarchies over HTTP.
//
// All responses are JSON except rendered artifacts. Errors carry the code of
// the underlying [errors.Error]:
//
//	{"code": "SNAPSHOT_NOT_FOUND", "message": "snapshot not found"}
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/clustermap/pkg/buildinfo"
	"github.com/matzehuels/clustermap/pkg/pipeline"
	"github.com/matzehuels/clustermap/pkg/snapshot"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// maxBody limits uploaded payloads.
const maxBody = 64 << 20

// Config holds server dependencies.
type Config struct {
	Addr   string
	Store  snapshot.Store
	Runner *pipeline.Runner // renders artifacts; nil uses an uncached runner
	Logger *log.Logger
}

// Server serves the snapshot API.
type Server struct {
	store  snapshot.Store
	runner *pipeline.Runner
	log    *log.Logger
	http   *http.Server
}

// New creates a server. Config.Store is required.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, nil, cfg.Logger)
	}
	s := &Server{store: cfg.Store, runner: cfg.Runner, log: cfg.Logger}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.http.Addr }

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog(s.log))
	r.Use(recoverer(s.log))

	r.Get("/healthz", handleHealthz)

	r.Route("/api/snapshots", func(r chi.Router) {
		r.Get("/", s.listSnapshots)
		r.Post("/", s.createSnapshot)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSnapshot)
			r.Delete("/", s.deleteSnapshot)
			r.Get("/levels", s.getLevels)
			r.Get("/levels/{depth}", s.getLevel)
			r.Get("/levels/{depth}/footprints", s.getFootprints)
			r.Get("/clusters/{cid}/children", s.getChildren)
			r.Get("/render/{format}", s.render)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.http.Addr)
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return s.http.Shutdown(shutdownCtx)
	}
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	i := buildinfo.Get()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": i.Version, "commit": i.ShortCommit()})
}
