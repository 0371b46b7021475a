package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/boardstore/backend/internal/setup"
	mw "github.com/itchan-dev/boardstore/shared/middleware"
	"github.com/itchan-dev/boardstore/shared/middleware/metrics"
)

// New creates and configures a chi router with all the routes.
func New(deps *setup.Dependencies) http.Handler {
	cfg := deps.Config.Public
	h := deps.Handler

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(metrics.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CorsAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.Use(mw.SecurityHeaders(cfg.IsHTTPS))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Post("/threads/{board}", h.CreateThread)
		api.Get("/threads/{board}", h.ListThreads)
		api.Delete("/threads/{board}", h.DeleteThread)
		api.Put("/threads/{board}", h.ReportThread)

		api.Post("/replies/{board}", h.CreateReply)
		api.Get("/replies/{board}", h.GetThread)
		api.Delete("/replies/{board}", h.DeleteReply)
		api.Put("/replies/{board}", h.ReportReply)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	return r
}
