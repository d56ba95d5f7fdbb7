// Package web exposes the storefront over HTTP: the simulated payment API,
// static assets behind the versioned cache, notifications, metrics and a
// health probe.
package web

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"healthcare-storefront/internal/domain/model"
	"healthcare-storefront/internal/domain/ports/adapter"
	"healthcare-storefront/internal/infra/assets"
)

type Server struct {
	backend  adapter.PaymentBackend
	cache    *assets.Cache
	notifier adapter.Notifier
	log      *zerolog.Logger
}

func NewServer(backend adapter.PaymentBackend, cache *assets.Cache, notifier adapter.Notifier, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "web").Logger()
	return &Server{backend: backend, cache: cache, notifier: notifier, log: &l}
}

// Router builds the chi mux. Every /api/* POST goes through the simulated
// backend; anything it does not recognize comes back as a 400 with the
// standard error envelope.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/api/*", s.handleAPI)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/notify", s.handleNotify)

	r.NotFound(s.cache.Handler(http.NotFoundHandler()).ServeHTTP)
	return r
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := s.backend.SimulateRequest(r.Context(), r.URL.Path, body)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   err.Error(),
			"success": false,
		})
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type notifyRequest struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// handleNotify surfaces a server-pushed message through the notification
// stack, mirroring what a web push event does on the client.
func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sev := model.Severity(req.Severity)
	if !sev.Valid() {
		sev = model.SeverityInfo
	}
	s.notifier.Show(req.Message, sev)
	w.WriteHeader(http.StatusAccepted)
}
