// Package server exposes attune's HTTP surface: session lifecycle,
// telemetry ingestion, recommendations, and health checks. Each started
// session owns a live engine held in the registry until the session
// ends or the daemon shuts down.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ambelin/attune/internal/catalog"
	"github.com/ambelin/attune/internal/config"
	"github.com/ambelin/attune/internal/content"
	"github.com/ambelin/attune/internal/store"
)

// Server is the attune HTTP API server.
type Server struct {
	db       *store.DB
	cfg      config.Config
	log      *zap.Logger
	fetcher  content.Fetcher
	catalog  *catalog.Graph
	sessions *Registry
	router   chi.Router
	version  string
	started  time.Time

	// now feeds the clock of every engine this server creates.
	now func() time.Time
}

// New creates a new Server with the given database, config, and version
// string. fetcher may be nil, in which case prefetching is disabled.
func New(db *store.DB, cfg config.Config, fetcher content.Fetcher, log *zap.Logger, version string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		db:       db,
		cfg:      cfg,
		log:      log,
		fetcher:  fetcher,
		catalog:  catalog.Default(),
		sessions: NewRegistry(),
		version:  version,
		started:  time.Now(),
		now:      time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops every engine still registered. Profiles are persisted
// write-through on every mutation, so nothing else needs flushing.
func (s *Server) Close() {
	for _, as := range s.sessions.Drain() {
		as.Engine.Stop()
	}
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/v1", func(r chi.Router) {
			r.Post("/session/start", s.handleSessionStart)
			r.Post("/session/end", s.handleSessionEnd)
			r.Post("/telemetry", s.handleTelemetry)
			r.Post("/recommend", s.handleRecommend)
			r.Get("/sessions/{sessionID}/metrics", s.handleSessionMetrics)
			r.Get("/children/{childID}/summary", s.handleChildSummary)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"version":         s.version,
		"uptime":          time.Since(s.started).Seconds(),
		"db":              dbOK,
		"db_path":         s.db.Path,
		"active_sessions": s.sessions.Len(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("response encode failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	http.Error(w, fmt.Sprintf(`{"error":%q}`, msg), status)
}
