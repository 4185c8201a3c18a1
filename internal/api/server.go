// Package api serves the daemon's health and metrics endpoint. This is
// operational surface only; the recordings API that lists and downloads
// archived segments belongs to the downstream metadata service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aircheck/internal/logging"
	"aircheck/internal/metrics"
	"aircheck/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Server exposes /healthz and /metrics on the configured bind address.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewServer builds the HTTP server. The store may be nil, in which case the
// health payload omits journal counts.
func NewServer(bind string, journal *store.Store, m *metrics.Metrics, logger *slog.Logger) *Server {
	logger = logging.NewComponentLogger(logger, "api")

	r := chi.NewRouter()
	r.Get("/healthz", healthHandler(journal, logger))
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	return &Server{
		srv:    &http.Server{Addr: bind, Handler: r},
		logger: logger,
	}
}

func healthHandler(journal *store.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := struct {
			Status  string               `json:"status"`
			Journal *store.HealthSummary `json:"journal,omitempty"`
		}{Status: "ok"}

		if journal != nil {
			summary, err := journal.Health(r.Context())
			if err != nil {
				logger.Error("journal health query failed", logging.Error(err))
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "degraded"})
				return
			}
			payload.Journal = &summary
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	s.logger.Info("api server listening", logging.String("bind", s.srv.Addr))
}

// Shutdown drains connections and stops the server.
func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("api server shutdown", logging.Error(err))
	}
}
