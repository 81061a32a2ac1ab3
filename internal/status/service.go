// Package status serves a small local HTTP endpoint with corpus and
// backend-connection statistics, for debugging a running MCP server.
package status

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/richardwhiteii/ccrecall/internal/corpus"
	"github.com/richardwhiteii/ccrecall/internal/rlm"
)

// Service is the status HTTP service.
type Service struct {
	scanner *corpus.Scanner
	client  *rlm.Client
	cache   *corpus.Cache
	server  *http.Server
}

// NewService creates a status service listening on addr.
func NewService(addr string, scanner *corpus.Scanner, client *rlm.Client, cache *corpus.Cache) *Service {
	s := &Service{scanner: scanner, client: client, cache: cache}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called. Run it in
// its own goroutine; the MCP loop owns the foreground.
func (s *Service) Start() {
	log.Info().Str("addr", s.server.Addr).Msg("Status endpoint listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn().Err(err).Msg("Status endpoint stopped")
	}
}

// Shutdown stops the HTTP server.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleStats(w http.ResponseWriter, _ *http.Request) {
	listing, err := s.scanner.ListProjects()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	stats := map[string]interface{}{
		"total_projects": listing.TotalProjects,
		"total_sessions": listing.TotalSessions,
		"total_size_gb":  listing.TotalSizeGB,
		"backend_state":  s.client.State().String(),
	}
	if s.cache != nil {
		stats["cached_sessions"] = s.cache.Len()
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
