package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"buildhub/estimate"
)

// draftBackend is an in-memory stand-in for the draft store endpoint.
type draftBackend struct {
	mu      sync.Mutex
	saves   []map[string]string
	deletes int
	stored  map[string]string
}

func (b *draftBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			var req struct {
				DraftData map[string]string `json:"draft_data"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			b.saves = append(b.saves, req.DraftData)
			b.stored = req.DraftData
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":    true,
				"draft_data": b.stored,
				"last_saved": time.Now().Format(time.RFC3339),
			})
		case http.MethodDelete:
			b.deletes++
			b.stored = nil
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
		}
	}
}

func (b *draftBackend) saveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.saves)
}

func newDraftFixture(t *testing.T) (*draftBackend, *DraftClient) {
	t.Helper()
	backend := &draftBackend{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/contractor/save_estimate_draft", backend.handler())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	dc := NewDraftClient(New(srv.URL))
	dc.SetInterval(30 * time.Millisecond)
	return backend, dc
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestScheduleSaveDebounces(t *testing.T) {
	backend, dc := newDraftFixture(t)
	key := DraftKey{ContractorID: 7, SendID: 42}

	// three edits inside one window: only the last snapshot persists
	dc.ScheduleSave(key, map[string]string{"timeline": "6 weeks"})
	dc.ScheduleSave(key, map[string]string{"timeline": "7 weeks"})
	dc.ScheduleSave(key, map[string]string{"timeline": "8 weeks"})

	if !waitFor(t, time.Second, func() bool { return backend.saveCount() >= 1 }) {
		t.Fatal("debounced save never fired")
	}
	// allow any stray extra timer to fire
	time.Sleep(100 * time.Millisecond)

	if got := backend.saveCount(); got != 1 {
		t.Fatalf("save count = %d, want 1", got)
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.saves[0]["timeline"] != "8 weeks" {
		t.Errorf("persisted snapshot = %v, want the last edit", backend.saves[0])
	}
}

func TestScheduleSaveIndependentKeys(t *testing.T) {
	backend, dc := newDraftFixture(t)

	dc.ScheduleSave(DraftKey{ContractorID: 7, SendID: 1}, map[string]string{"notes": "a"})
	dc.ScheduleSave(DraftKey{ContractorID: 7, SendID: 2}, map[string]string{"notes": "b"})

	if !waitFor(t, time.Second, func() bool { return backend.saveCount() == 2 }) {
		t.Fatalf("save count = %d, want 2 (one per key)", backend.saveCount())
	}
}

func TestCancelStopsPendingSave(t *testing.T) {
	backend, dc := newDraftFixture(t)
	key := DraftKey{ContractorID: 7, SendID: 42}

	dc.ScheduleSave(key, map[string]string{"notes": "draft"})
	dc.Cancel(key)

	time.Sleep(120 * time.Millisecond)
	if got := backend.saveCount(); got != 0 {
		t.Errorf("save count = %d after cancel, want 0", got)
	}
}

func TestLoadAbsentDraftReturnsNil(t *testing.T) {
	_, dc := newDraftFixture(t)

	draft, err := dc.Load(context.Background(), DraftKey{ContractorID: 7, SendID: 42})
	if err != nil {
		t.Fatalf("Load on absent draft errored: %v", err)
	}
	if draft != nil {
		t.Fatalf("Load on absent draft = %v, want nil", draft)
	}
}

func TestClearWipesRemoteAndPending(t *testing.T) {
	backend, dc := newDraftFixture(t)
	key := DraftKey{ContractorID: 7, SendID: 42}

	if err := dc.Save(context.Background(), key, map[string]string{"notes": "draft"}); err != nil {
		t.Fatal(err)
	}
	dc.ScheduleSave(key, map[string]string{"notes": "newer"})
	if err := dc.Clear(context.Background(), key); err != nil {
		t.Fatal(err)
	}

	time.Sleep(120 * time.Millisecond)
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.deletes != 1 {
		t.Errorf("deletes = %d, want 1", backend.deletes)
	}
	if len(backend.saves) != 1 {
		t.Errorf("saves = %d, want only the explicit one", len(backend.saves))
	}
}

func TestPopulateSkipsReadOnlyFields(t *testing.T) {
	_, dc := newDraftFixture(t)

	form := estimate.NewForm()
	form.Bind("structured[client_name]", "New Homeowner")

	dc.Populate(form, &Draft{Data: map[string]string{
		"structured[client_name]":             "Old Name",
		"structured[materials][cement][qty]":  "50",
		"structured[materials][cement][rate]": "380",
		"timeline":                            "8 weeks",
	}})

	if got := form.Get("structured[client_name]"); got != "New Homeowner" {
		t.Errorf("client_name = %q, stale draft overwrote identity binding", got)
	}
	if got := form.Get("timeline"); got != "8 weeks" {
		t.Errorf("timeline = %q", got)
	}
	// populate recalculates, so the restored qty/rate produce totals
	if got := form.Get("structured[totals][materials]"); got != "19000" {
		t.Errorf("materials total after populate = %q, want 19000", got)
	}
}
