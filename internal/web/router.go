package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/session"
	"github.com/starford/raido/internal/store"
)

// NewRouter creates a chi router with the page routes and the devtools API.
// authEnabled controls whether Bearer token auth is enforced on /api.
// sseHandler, if non-nil, is mounted at GET /api/events inside the auth group.
func NewRouter(mgr *session.Manager, journal store.SessionJournal, title string, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(mgr, journal, title)

	r := chi.NewRouter()

	// Pages.
	r.Get("/", h.NewSession)
	r.Get("/s/{id}", h.GetPage)
	r.Post("/s/{id}", h.PostPage)

	// Devtools API (auth-protected).
	r.Route("/api", func(api chi.Router) {
		api.Use(AuthMiddleware(authEnabled, token))

		api.Get("/sessions", h.ListSessions)
		api.Get("/sessions/{id}", h.GetSession)
		api.Delete("/sessions/{id}", h.DeleteSession)

		if sseHandler != nil {
			api.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
