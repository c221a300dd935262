package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/notes"
)

// EventPublisher is called after a successful mutation so outer layers can
// fan the change out (SSE). kind is one of "created", "updated", "removed".
type EventPublisher func(kind, id string)

// Handler holds API route handlers over the notes model.
type Handler struct {
	model  *notes.Model
	events EventPublisher
}

// NewHandler creates a new Handler. events may be nil.
func NewHandler(model *notes.Model, events EventPublisher) *Handler {
	return &Handler{model: model, events: events}
}

func (h *Handler) publish(kind, id string) {
	if h.events != nil {
		h.events(kind, id)
	}
}

// ListNotes handles GET /notes.
//
// filter selects the view: "active" (default) excludes tombstones and
// honors sort, "dirty" returns unsynced notes, "all" returns everything in
// internal order. sort is "created" (default) or "modified" and only
// applies to the active view.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := q.Get("filter")
	sortBy := q.Get("sort")

	var out []*models.Note
	switch filter {
	case "", "active":
		less := notes.ByCreatedDate
		switch sortBy {
		case "", "created":
		case "modified":
			less = notes.ByModifiedDate
		default:
			writeJSON(w, http.StatusBadRequest, errorBody("unknown sort: "+sortBy))
			return
		}
		out = h.model.Sorted(less)
	case "dirty":
		out = h.model.Dirty()
	case "all":
		out = h.model.All()
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("unknown filter: "+filter))
		return
	}

	if out == nil {
		out = []*models.Note{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: out, Total: len(out)})
}

// GetNote handles GET /notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, ok := h.model.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// CreateNote handles POST /notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	n, err := h.model.Create(req.Content)
	if err != nil {
		slog.Error("create note failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publish("created", n.ID)
	writeJSON(w, http.StatusCreated, n)
}

// ImportNote handles POST /notes/import: adds a pre-built record as-is.
func (h *Handler) ImportNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ImportNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if !models.IsNoteKey(req.ID) {
		writeJSON(w, http.StatusBadRequest, errorBody("id must match note-<digits>"))
		return
	}
	n, err := h.model.Add(req.Note())
	if err != nil {
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
		return
	}
	h.publish("created", n.ID)
	writeJSON(w, http.StatusCreated, n)
}

// UpdateNote handles PUT /notes/{id}. The model treats an unknown id as a
// no-op; the HTTP surface reports it as 404 so clients are not left
// guessing.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")
	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	if _, ok := h.model.Get(id); !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	if err := h.model.Save(id, req.Content); err != nil {
		slog.Error("update note failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	n, _ := h.model.Get(id)
	h.publish("updated", id)
	writeJSON(w, http.StatusOK, n)
}

// RemoveNote handles DELETE /notes/{id}: tombstones the note. The record
// stays in the caches and the store.
func (h *Handler) RemoveNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.model.Get(id); !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	if err := h.model.Remove(id); err != nil {
		slog.Error("remove note failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publish("removed", id)
	w.WriteHeader(http.StatusNoContent)
}

// Reload handles POST /reload: rebuilds the caches from the store.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.model.Reload(); err != nil {
		slog.Error("reload failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearNotes handles DELETE /notes. With ?store=true it also removes every
// note record from the store, which is irreversible.
func (h *Handler) ClearNotes(w http.ResponseWriter, r *http.Request) {
	clearStore := r.URL.Query().Get("store") == "true"
	if err := h.model.Clear(clearStore); err != nil {
		slog.Error("clear failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
