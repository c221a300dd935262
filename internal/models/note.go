// Package models defines the domain types for Laguz.
package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// KeyPrefix is the namespace prefix for note keys in the store.
const KeyPrefix = "note-"

// noteKeyRe matches valid note keys: the prefix followed by one or more
// digits (typically a millisecond timestamp). Any other key sharing the
// store namespace is invisible to the model.
var noteKeyRe = regexp.MustCompile(`^note-\d+$`)

// IsNoteKey reports whether key follows the note naming scheme.
func IsNoteKey(key string) bool {
	return noteKeyRe.MatchString(key)
}

// NewID returns a fresh note id of the form note-<millis>.
func NewID(t time.Time) string {
	return fmt.Sprintf("%s%d", KeyPrefix, t.UnixMilli())
}

// Note represents a single user-authored text record. Once persisted, the
// id uniquely identifies the note and doubles as its store key.
type Note struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Date    int64  `json:"date"` // last modification, unix millis
	Dirty   bool   `json:"dirty"`
	Removed bool   `json:"removed"`
}

// New creates a Note with the given id and no content. The id may be empty
// for a not-yet-persisted note.
func New(id string) *Note {
	return &Note{ID: id}
}

// SetContent replaces the note's content, touching the modification date
// and marking the note dirty.
func (n *Note) SetContent(content string, now time.Time) {
	n.Content = content
	n.Date = now.UnixMilli()
	n.Dirty = true
}

// MarkRemoved tombstones the note. The record is not deleted from the
// store; removal is an ordinary field update so it propagates like any
// other change.
func (n *Note) MarkRemoved(now time.Time) {
	n.Removed = true
	n.Date = now.UnixMilli()
	n.Dirty = true
}

// Encode serializes the note into its stored record form.
func (n *Note) Encode() (string, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("models: encode note %s: %w", n.ID, err)
	}
	return string(data), nil
}

// ParseNote decodes a stored record. It fails on malformed JSON and on
// records without an id, since such a note could never be indexed.
func ParseNote(value string) (*Note, error) {
	var n Note
	if err := json.Unmarshal([]byte(value), &n); err != nil {
		return nil, fmt.Errorf("models: parse note record: %w", err)
	}
	if n.ID == "" {
		return nil, fmt.Errorf("models: parse note record: missing id")
	}
	return &n, nil
}
