package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"phishguard/internal/app"
	"phishguard/internal/logging"
)

type server struct {
	app    *app.App
	queue  *redis.Client // nil disables /enqueue
	apiKey string
	log    *slog.Logger
}

func (s *server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(enableCORS)
	r.Use(s.withRequestLogger)

	r.Get("/healthz", s.healthHandler)
	r.Get("/info", infoHandler)

	r.Group(func(r chi.Router) {
		r.Use(requireAPIKey(s.apiKey))

		r.Post("/scan", s.scanHandler)
		r.Post("/enqueue", s.enqueueHandler)
		r.Get("/reports", s.reportsHandler)
		r.Get("/reports/lookup", s.lookupHandler)
		r.Get("/export", s.exportHandler)
		r.Post("/import", s.importHandler)
		r.Get("/summary", s.summaryHandler)
		r.Handle("/metrics", promhttp.Handler())
	})
	return r
}

// withRequestLogger tags every request with an id and puts the logger on the
// request context for the scan pipeline to pick up.
func (s *server) withRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		l := s.log.With("request_id", reqID, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), l)))
	})
}

func (s *server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func infoHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "PhishGuard Risk Engine",
		"version": "1.0.0",
		"capabilities": []string{
			"Heuristic risk scoring (HTTPS, insecure password forms)",
			"Domain age via RDAP",
			"PhishTank blocklist",
			"Bounded de-duplicated report history",
			"JSON / CSV export",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
