// client/drafts.go
package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"buildhub/estimate"
	"buildhub/models"
)

// DraftKey identifies one remote draft record. The draft client is the
// sole writer for a given key.
type DraftKey struct {
	ContractorID int
	SendID       int
}

// Draft is a loaded snapshot: the flat field map plus the server's
// last-saved stamp.
type Draft struct {
	Data      map[string]string
	LastSaved models.JSONTime
}

// DraftClient auto-saves in-progress estimate forms. ScheduleSave is a
// trailing-edge debounce: within the window only the last snapshot is
// persisted. Save failures are logged and swallowed — draft loss must
// never block estimate submission.
type DraftClient struct {
	api      *Client
	interval time.Duration
	log      *slog.Logger

	mu     sync.Mutex
	timers map[DraftKey]*time.Timer
}

func NewDraftClient(api *Client) *DraftClient {
	return &DraftClient{
		api:      api,
		interval: 2 * time.Second,
		log:      slog.Default(),
		timers:   map[DraftKey]*time.Timer{},
	}
}

// SetInterval overrides the debounce window (tests use a short one).
func (d *DraftClient) SetInterval(interval time.Duration) {
	d.interval = interval
}

// ScheduleSave arms the debounce timer for key with the given snapshot.
// A newer edit cancels the pending save; only the final state within
// the window reaches the server.
func (d *DraftClient) ScheduleSave(key DraftKey, snapshot map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		if err := d.Save(context.Background(), key, snapshot); err != nil {
			d.log.Error("draft autosave failed", "send_id", key.SendID, "error", err)
		}
	})
}

// Cancel stops any pending save for key without persisting, for form
// teardown. A scheduled timer must not outlive its form.
func (d *DraftClient) Cancel(key DraftKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
}

// Save upserts the snapshot immediately. Idempotent; last save wins.
func (d *DraftClient) Save(ctx context.Context, key DraftKey, snapshot map[string]string) error {
	body := map[string]interface{}{
		"contractor_id": key.ContractorID,
		"send_id":       key.SendID,
		"draft_data":    snapshot,
	}
	return d.api.call(ctx, "POST", "/api/v1/contractor/save_estimate_draft", body, nil)
}

// Load fetches the stored draft for key. A missing draft is not an
// error: the result is simply nil.
func (d *DraftClient) Load(ctx context.Context, key DraftKey) (*Draft, error) {
	var out struct {
		envelope
		DraftData map[string]string `json:"draft_data"`
		LastSaved models.JSONTime   `json:"last_saved"`
	}
	path := fmt.Sprintf("/api/v1/contractor/save_estimate_draft?contractor_id=%d&send_id=%d",
		key.ContractorID, key.SendID)
	if err := d.api.call(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	if out.DraftData == nil {
		return nil, nil
	}
	return &Draft{Data: out.DraftData, LastSaved: out.LastSaved}, nil
}

// Clear wipes the remote draft and any pending local save. This is the
// explicit user action, distinct from a silent overwrite; after a clear
// the key only re-enters the draft lifecycle via a fresh save.
func (d *DraftClient) Clear(ctx context.Context, key DraftKey) error {
	d.Cancel(key)
	path := fmt.Sprintf("/api/v1/contractor/save_estimate_draft?contractor_id=%d&send_id=%d",
		key.ContractorID, key.SendID)
	return d.api.call(ctx, "DELETE", path, nil, nil)
}

// Populate applies a saved draft onto a live form and recalculates
// totals. Read-only fields are skipped: identity bindings always come
// from the current inbox item, never from a stale draft.
func (d *DraftClient) Populate(form *estimate.Form, draft *Draft) {
	if form == nil || draft == nil {
		return
	}
	for name, value := range draft.Data {
		if form.IsReadOnly(name) {
			continue
		}
		form.Set(name, value)
	}
	estimate.Recalc(form)
}
