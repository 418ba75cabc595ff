package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fiscaldash/internal/config"
	"fiscaldash/internal/infrastructure"
	"fiscaldash/internal/services"
)

// NewRouter assembles the API router.
func NewRouter(data *services.DataService, fc *services.ForecastService, cfg config.ServerConfig, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(traceMiddleware)
	r.Use(middleware.Recoverer)
	if cfg.RateLimit.Enabled {
		r.Use(NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger).Handler)
	}

	r.Get("/healthz", NewHealthHandler(logger).Get)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/revenue", NewRevenueHandler(data, logger).Routes())
		r.Mount("/forecast", NewForecastHandler(fc, logger).Routes())
	})

	return r
}

// traceMiddleware assigns each request a trace ID, propagated through the
// context into every log record and echoed back to the client.
func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = infrastructure.NewTraceID()
		}
		w.Header().Set("X-Trace-ID", traceID)
		ctx := infrastructure.WithTraceID(r.Context(), traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
