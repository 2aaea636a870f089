package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// NewRouter creates and returns the HTTP router for the notification API.
func NewRouter(svc Service, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(hlog.NewHandler(log.With().Str("component", "api").Logger()))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.CleanPath)

	h := &Handlers{svc: svc}

	r.Route("/api/notifications", func(r chi.Router) {
		r.Get("/config", h.getConfig)
		r.Patch("/config", h.patchConfig)

		r.Get("/permission", h.getPermission)
		r.Post("/permission", h.requestPermission)

		r.Post("/test-sound", h.testSound)
		r.Post("/dispatch", h.dispatch)
		r.Delete("/toasts", h.clearToasts)

		r.Get("/history", h.getHistory)
		r.Delete("/history", h.clearHistory)

		r.Get("/subscribe", h.sseEvents)
	})

	r.Post("/api/orders/snapshot", h.postSnapshot)

	if svc.Profiler {
		r.Mount("/debug", middleware.Profiler())
	}

	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}
