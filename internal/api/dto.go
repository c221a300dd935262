package api

import "github.com/starford/laguz/internal/models"

// CreateNoteRequest is the request body for creating a note from raw content.
type CreateNoteRequest struct {
	Content string `json:"content"`
}

// UpdateNoteRequest is the request body for updating a note's content.
type UpdateNoteRequest struct {
	Content string `json:"content"`
}

// ImportNoteRequest carries a pre-built note record, for example one
// exported from another store.
type ImportNoteRequest struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Date    int64  `json:"date"`
	Dirty   bool   `json:"dirty"`
	Removed bool   `json:"removed"`
}

// Note converts the import payload into the domain type.
func (r ImportNoteRequest) Note() *models.Note {
	return &models.Note{
		ID:      r.ID,
		Content: r.Content,
		Date:    r.Date,
		Dirty:   r.Dirty,
		Removed: r.Removed,
	}
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []*models.Note `json:"notes"`
	Total int            `json:"total"`
}
