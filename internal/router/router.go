// Package router wires the request and push channels onto a chi router.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nbmusic/remote/internal/catalog"
	"github.com/nbmusic/remote/internal/config"
	"github.com/nbmusic/remote/internal/gateway"
	"github.com/nbmusic/remote/internal/handlers"
	"github.com/nbmusic/remote/internal/hub"
	"github.com/nbmusic/remote/internal/middleware"
)

// New builds the HTTP handler serving both channels.
func New(cfg *config.Config, gw *gateway.Gateway, hotList *catalog.HotList, source catalog.Source, h *hub.Hub) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestContextMiddleware)
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	// Handlers
	remoteHandler := handlers.NewRemoteHandler(gw, hotList, source, h)
	wsHandler := handlers.NewWSHandler(h, gw, source)

	// Rate limiter for upstream-bound search
	searchRateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	// Routes
	r.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Get("/hot-songs", remoteHandler.HotSongs)
		r.With(searchRateLimiter.Middleware).Get("/search", remoteHandler.Search)

		r.Route("/player", func(r chi.Router) {
			r.Post("/control", remoteHandler.Control)
			r.Get("/status", remoteHandler.Status)
		})

		r.Post("/playlist/add", remoteHandler.AddToPlaylist)
		r.Post("/remote/play", remoteHandler.RemotePlay)

		r.Get("/server/status", remoteHandler.ServerStatus)
	})

	// Push channel
	r.Get("/ws", wsHandler.Serve)

	return r
}
