package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sermon_sync/internal/middleware"
)

type RouterConfig struct {
	AdminToken string
	Limiter    *middleware.RateLimiter
}

// NewRouter wires every route. Admin routes sit behind the bearer token
// check; everything under /api is rate limited per client.
func NewRouter(h *Handlers, cfg RouterConfig, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger), middleware.Recover(logger))

	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/feed/sermons.rss", h.SermonFeed).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	if cfg.Limiter != nil {
		api.Use(cfg.Limiter.Middleware)
	}
	api.HandleFunc("/sermons", h.ListSermons).Methods(http.MethodGet)
	api.HandleFunc("/sermons/{videoId}", h.GetSermon).Methods(http.MethodGet)

	admin := api.NewRoute().Subrouter()
	admin.Use(middleware.AdminAuth(cfg.AdminToken, logger))
	admin.HandleFunc("/youtube/sync", h.SyncYouTube).Methods(http.MethodPost)
	admin.HandleFunc("/youtube/status", h.YouTubeStatus).Methods(http.MethodGet)
	admin.HandleFunc("/admin/sermons/{id:[0-9]+}", h.UpdateSermon).Methods(http.MethodPatch)

	return r
}
