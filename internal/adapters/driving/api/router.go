// Package api serves the HTTP JSON API.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter returns the API routes. Every route except /api/health
// needs an X-User-ID header; authentication happens upstream.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(UserMiddleware)

			r.Get("/documents", h.ListDocuments)
			r.Post("/documents", h.UploadDocument)
			r.Delete("/documents/{documentID}", h.DeleteDocument)
			r.Post("/ask", h.Ask)
			r.Get("/notes", h.Notes)
		})
	})

	return r
}
