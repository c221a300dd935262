package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/laguz/internal/notes"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// events, if non-nil, is called after each successful mutation.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(model *notes.Model, authEnabled bool, token string, events EventPublisher, sseHandler http.Handler) chi.Router {
	h := NewHandler(model, events)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Post("/notes/import", h.ImportNote)
	r.Delete("/notes", h.ClearNotes)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.RemoveNote)

	// Cache control.
	r.Post("/reload", h.Reload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
