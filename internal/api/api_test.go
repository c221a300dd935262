package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/laguz/internal/kvstore"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/notes"
)

// testEnv sets up a memory store, model, and router. An empty token means
// auth disabled.
func testEnv(t *testing.T, authToken string) (*notes.Model, *kvstore.Memory, http.Handler) {
	t.Helper()
	store := kvstore.NewMemory()
	model := notes.NewModel(store, slog.Default())
	router := NewRouter(model, authToken != "", authToken, nil, nil)
	return model, store, router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetNote(t *testing.T) {
	_, _, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/notes", map[string]string{"content": "hello"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created models.Note
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if !models.IsNoteKey(created.ID) {
		t.Errorf("id = %q, want note-<digits>", created.ID)
	}
	if created.Content != "hello" {
		t.Errorf("content = %q", created.Content)
	}

	w = doJSON(t, router, http.MethodGet, "/notes/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got models.Note
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.ID != created.ID || got.Content != "hello" {
		t.Errorf("got %+v", got)
	}
}

func TestCreateValidation(t *testing.T) {
	_, _, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/notes", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty content = %d, want 400", w.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader([]byte("{broken")))
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	if w2.Code != http.StatusBadRequest {
		t.Errorf("broken json = %d, want 400", w2.Code)
	}
}

func TestGetUnknownNote(t *testing.T) {
	_, _, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodGet, "/notes/note-404", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateNote(t *testing.T) {
	model, store, router := testEnv(t, "")
	n, _ := model.Create("v1")

	w := doJSON(t, router, http.MethodPut, "/notes/"+n.ID, map[string]string{"content": "v2"})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	if n.Content != "v2" {
		t.Errorf("cached note content = %q, want v2 (in-place update)", n.Content)
	}
	rec, _, _ := store.Get(n.ID)
	stored, _ := models.ParseNote(rec)
	if stored.Content != "v2" {
		t.Errorf("store content = %q", stored.Content)
	}

	w = doJSON(t, router, http.MethodPut, "/notes/note-404", map[string]string{"content": "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id update = %d, want 404", w.Code)
	}
}

func TestRemoveNoteTombstones(t *testing.T) {
	model, store, router := testEnv(t, "")
	n, _ := model.Create("doomed")

	w := doJSON(t, router, http.MethodDelete, "/notes/"+n.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("remove status = %d", w.Code)
	}
	if !n.Removed {
		t.Error("note should be tombstoned")
	}
	if _, ok, _ := store.Get(n.ID); !ok {
		t.Error("tombstone must stay in the store")
	}

	// The active list excludes it, the all view keeps it.
	w = doJSON(t, router, http.MethodGet, "/notes", nil)
	var active NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &active)
	if active.Total != 0 {
		t.Errorf("active total = %d, want 0", active.Total)
	}
	w = doJSON(t, router, http.MethodGet, "/notes?filter=all", nil)
	var all NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &all)
	if all.Total != 1 {
		t.Errorf("all total = %d, want 1", all.Total)
	}
}

func TestListSortedByCreated(t *testing.T) {
	model, _, router := testEnv(t, "")
	_, _ = model.Add(models.New("note-100"))
	_, _ = model.Add(models.New("note-200"))

	w := doJSON(t, router, http.MethodGet, "/notes?sort=created", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var resp NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Notes) != 2 {
		t.Fatalf("len = %d", len(resp.Notes))
	}
	if resp.Notes[0].ID != "note-200" || resp.Notes[1].ID != "note-100" {
		t.Errorf("order = [%s, %s], want [note-200, note-100]",
			resp.Notes[0].ID, resp.Notes[1].ID)
	}
}

func TestListDirtyFilter(t *testing.T) {
	model, _, router := testEnv(t, "")
	_, _ = model.Add(models.New("note-100")) // clean
	n, _ := model.Create("edited")           // dirty

	w := doJSON(t, router, http.MethodGet, "/notes?filter=dirty", nil)
	var resp NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Notes[0].ID != n.ID {
		t.Errorf("dirty view = %+v", resp)
	}
}

func TestListRejectsUnknownParams(t *testing.T) {
	_, _, router := testEnv(t, "")
	if w := doJSON(t, router, http.MethodGet, "/notes?filter=bogus", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bogus filter = %d, want 400", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/notes?sort=bogus", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bogus sort = %d, want 400", w.Code)
	}
}

func TestImportNote(t *testing.T) {
	_, store, router := testEnv(t, "")
	payload := map[string]any{"id": "note-777", "content": "imported", "date": 777, "dirty": true}

	w := doJSON(t, router, http.MethodPost, "/notes/import", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("import status = %d, body = %s", w.Code, w.Body.String())
	}
	if _, ok, _ := store.Get("note-777"); !ok {
		t.Error("imported note not persisted")
	}

	// Duplicate id conflicts, bad id shape is rejected.
	if w := doJSON(t, router, http.MethodPost, "/notes/import", payload); w.Code != http.StatusConflict {
		t.Errorf("duplicate import = %d, want 409", w.Code)
	}
	bad := map[string]any{"id": "diary-1", "content": "x"}
	if w := doJSON(t, router, http.MethodPost, "/notes/import", bad); w.Code != http.StatusBadRequest {
		t.Errorf("bad id import = %d, want 400", w.Code)
	}
}

func TestClearEndpoint(t *testing.T) {
	model, store, router := testEnv(t, "")
	n, _ := model.Create("x")

	if w := doJSON(t, router, http.MethodDelete, "/notes", nil); w.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", w.Code)
	}
	if model.Len() != 0 {
		t.Error("caches should be empty")
	}
	if _, ok, _ := store.Get(n.ID); !ok {
		t.Error("store should be untouched without ?store=true")
	}

	// Reload restores, then clear with persistence wipes the store.
	if w := doJSON(t, router, http.MethodPost, "/reload", nil); w.Code != http.StatusNoContent {
		t.Fatalf("reload status = %d", w.Code)
	}
	if model.Len() != 1 {
		t.Errorf("Len after reload = %d, want 1", model.Len())
	}
	if w := doJSON(t, router, http.MethodDelete, "/notes?store=true", nil); w.Code != http.StatusNoContent {
		t.Fatalf("clear store status = %d", w.Code)
	}
	if _, ok, _ := store.Get(n.ID); ok {
		t.Error("store record should be removed")
	}
}

func TestAuthTokenMode(t *testing.T) {
	_, _, router := testEnv(t, "secret")

	w := doJSON(t, router, http.MethodGet, "/notes", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	store := kvstore.NewMemory()
	model := notes.NewModel(store, slog.Default())
	var events []string
	router := NewRouter(model, false, "", func(kind, id string) {
		events = append(events, kind)
	}, nil)

	w := doJSON(t, router, http.MethodPost, "/notes", map[string]string{"content": "a"})
	var n models.Note
	_ = json.Unmarshal(w.Body.Bytes(), &n)
	doJSON(t, router, http.MethodPut, "/notes/"+n.ID, map[string]string{"content": "b"})
	doJSON(t, router, http.MethodDelete, "/notes/"+n.ID, nil)

	want := []string{"created", "updated", "removed"}
	if len(events) != len(want) {
		t.Fatalf("events = %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
}
