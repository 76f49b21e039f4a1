package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterConfig controls optional parts of the router
type RouterConfig struct {
	RequestTimeout time.Duration
	EnableMetrics  bool
	PublicDir      string
}

// NewRouter registers all routes and the middleware chain.
//
// Execution order (outside-in):
// Recovery -> Logging -> RequestID -> CORS -> Metrics -> Timeout -> handler
func NewRouter(h *Handler, logger *zap.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		RequestIDMiddleware,
		CORSMiddleware,
		MetricsMiddleware,
	)

	r.Get("/health/live", h.HealthCheck)
	r.Get("/health/ready", h.Readiness)
	if cfg.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/", h.ServeUI)
	mountStaticFiles(r, cfg.PublicDir)

	r.Route("/api/shorturl", func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(TimeoutMiddleware(cfg.RequestTimeout))
		}
		r.Post("/", h.CreateShortURL)
		r.Get("/", h.Redirect)
		r.Get("/{urlId}", h.Redirect)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})

	return r
}
