// Package notes implements the in-memory notes model layered over a
// key-value store. The model is the single point of access to the note
// collection: it mirrors every mutation to the store and serves filtered
// and sorted views from its caches.
package notes

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/starford/laguz/internal/kvstore"
	"github.com/starford/laguz/internal/models"
)

// Model keeps an ordered list and an id-keyed map of the same Note
// instances. Both caches are rebuilt by Reload and kept mutually consistent
// by every mutation.
//
// The model assumes it is the sole writer to note keys in its store. The
// internal mutex only makes the caches safe to share between the HTTP
// handlers and the watcher goroutine; it is not a conflict-resolution
// mechanism — concurrent writers to the same key still race, last writer
// wins.
type Model struct {
	store  kvstore.Store
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	notes []*models.Note
	byID  map[string]*models.Note
}

// NewModel creates a model over the given store. The caches start empty;
// call Reload to populate them.
func NewModel(store kvstore.Store, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{
		store:  store,
		logger: logger,
		now:    time.Now,
		byID:   make(map[string]*models.Note),
	}
}

// Reload rebuilds both caches from the store. Keys that do not follow the
// note naming scheme are ignored. A record that cannot be read or parsed is
// skipped so that one corrupt entry never fails the whole reload. Cache
// order follows store iteration order.
func (m *Model) Reload() error {
	keys, err := m.store.Keys()
	if err != nil {
		return fmt.Errorf("notes: reload: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.notes = nil
	m.byID = make(map[string]*models.Note)

	for _, key := range keys {
		if !models.IsNoteKey(key) {
			continue
		}
		value, ok, err := m.store.Get(key)
		if err != nil || !ok {
			m.logger.Warn("reload: skipping unreadable record", slog.String("key", key))
			continue
		}
		n, err := models.ParseNote(value)
		if err != nil {
			m.logger.Warn("reload: skipping malformed record",
				slog.String("key", key), slog.String("error", err.Error()))
			continue
		}
		m.notes = append(m.notes, n)
		m.byID[n.ID] = n
	}
	return nil
}

// Clear empties both caches. When clearPersistence is true it additionally
// removes every note key from the store, which is irreversible.
func (m *Model) Clear(clearPersistence bool) error {
	m.mu.Lock()
	m.notes = nil
	m.byID = make(map[string]*models.Note)
	m.mu.Unlock()

	if !clearPersistence {
		return nil
	}
	keys, err := m.store.Keys()
	if err != nil {
		return fmt.Errorf("notes: clear: %w", err)
	}
	for _, key := range keys {
		if !models.IsNoteKey(key) {
			continue
		}
		if err := m.store.Remove(key); err != nil {
			return fmt.Errorf("notes: clear: %w", err)
		}
	}
	return nil
}

// Save updates the content of the note with the given id and persists it.
// An unknown id is a silent no-op: callers are expected to pass ids they
// obtained from this model.
func (m *Model) Save(id, content string) error {
	m.mu.Lock()
	n, ok := m.byID[id]
	if ok {
		n.SetContent(content, m.now())
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return m.persist(n)
}

// Create mints a fresh note from raw content, persists it, and caches it.
// It returns the new note so callers can read the generated id. Ids embed
// the current millisecond timestamp; when two creations land in the same
// millisecond the stamp is bumped until the id is free.
func (m *Model) Create(content string) (*models.Note, error) {
	m.mu.Lock()
	ts := m.now().UnixMilli()
	for {
		if _, taken := m.byID[fmt.Sprintf("%s%d", models.KeyPrefix, ts)]; !taken {
			break
		}
		ts++
	}
	n := models.New(fmt.Sprintf("%s%d", models.KeyPrefix, ts))
	n.SetContent(content, m.now())
	m.notes = append(m.notes, n)
	m.byID[n.ID] = n
	m.mu.Unlock()

	if err := m.persist(n); err != nil {
		m.evict(n.ID)
		return nil, err
	}
	return n, nil
}

// Add caches and persists a pre-built note as-is, for imported records.
// The note must carry an id that is not already present.
func (m *Model) Add(n *models.Note) (*models.Note, error) {
	if n.ID == "" {
		return nil, fmt.Errorf("notes: add: note has no id")
	}
	m.mu.Lock()
	if _, taken := m.byID[n.ID]; taken {
		m.mu.Unlock()
		return nil, fmt.Errorf("notes: add: id already present: %s", n.ID)
	}
	m.notes = append(m.notes, n)
	m.byID[n.ID] = n
	m.mu.Unlock()

	if err := m.persist(n); err != nil {
		m.evict(n.ID)
		return nil, err
	}
	return n, nil
}

// evict drops a note from both caches after a failed persist, so the
// caches never claim a note the store does not have.
func (m *Model) evict(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return
	}
	delete(m.byID, id)
	for i, n := range m.notes {
		if n.ID == id {
			m.notes = append(m.notes[:i], m.notes[i+1:]...)
			break
		}
	}
}

// Remove tombstones the note with the given id and persists the updated
// record. The note stays in both caches and in the store. An unknown id is
// a silent no-op.
//
// TODO: removals are indistinguishable from other updates in the stored
// record, which a future cross-device sync would need to tell apart.
func (m *Model) Remove(id string) error {
	m.mu.Lock()
	n, ok := m.byID[id]
	if ok {
		n.MarkRemoved(m.now())
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return m.persist(n)
}

// Get looks a note up by id.
func (m *Model) Get(id string) (*models.Note, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.byID[id]
	return n, ok
}

// Sorted returns the non-removed notes ordered by the given comparator.
// The internal order is left untouched.
func (m *Model) Sorted(less func(a, b *models.Note) bool) []*models.Note {
	m.mu.Lock()
	out := make([]*models.Note, 0, len(m.notes))
	for _, n := range m.notes {
		if Active(n) {
			out = append(out, n)
		}
	}
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Dirty returns every note with unsynced changes, removed or not.
func (m *Model) Dirty() []*models.Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Note
	for _, n := range m.notes {
		if IsDirty(n) {
			out = append(out, n)
		}
	}
	return out
}

// All returns a shallow copy of the full note list in internal order,
// including removed and dirty notes.
func (m *Model) All() []*models.Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Note, len(m.notes))
	copy(out, m.notes)
	return out
}

// Len returns the number of cached notes, tombstones included.
func (m *Model) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notes)
}

func (m *Model) persist(n *models.Note) error {
	rec, err := n.Encode()
	if err != nil {
		return err
	}
	if err := m.store.Set(n.ID, rec); err != nil {
		return fmt.Errorf("notes: persist %s: %w", n.ID, err)
	}
	return nil
}

// ByCreatedDate orders notes newest-created first, comparing the numeric
// timestamp embedded in each note's id (non-digit characters stripped).
func ByCreatedDate(a, b *models.Note) bool {
	return createdStamp(a) > createdStamp(b)
}

// ByModifiedDate orders notes newest-modified first.
func ByModifiedDate(a, b *models.Note) bool {
	return a.Date > b.Date
}

// Active reports whether a note is not tombstoned.
func Active(n *models.Note) bool {
	return !n.Removed
}

// IsDirty reports whether a note has unsynced changes.
func IsDirty(n *models.Note) bool {
	return n.Dirty
}

// createdStamp extracts the digits from a note id. Ids without digits
// (including the empty placeholder id) yield 0.
func createdStamp(n *models.Note) int64 {
	digits := make([]byte, 0, len(n.ID))
	for i := 0; i < len(n.ID); i++ {
		if c := n.ID[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) == 0 {
		return 0
	}
	v, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
