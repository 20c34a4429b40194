package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// CORS allows the browser client to call the API from another origin.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewRouter installs middleware and registers the HTTP routes. ws serves the
// websocket upgrade and is kept out of the request timeout.
func NewRouter(h *Handler, ws http.HandlerFunc) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID) // add X-Request-ID
	r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	r.Use(chimw.Recoverer) // recover from panics

	if ws != nil {
		r.Get("/ws", ws)
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(CORS)
		r.Get("/health", h.Health)
		r.Route("/api", func(r chi.Router) {
			r.Get("/leaderboard", h.Leaderboard)
			r.Get("/history", h.History)
			r.Options("/*", func(w http.ResponseWriter, r *http.Request) {})
		})
	})
	return r
}
