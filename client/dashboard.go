// client/dashboard.go
package client

import (
	"context"
	"sync"
	"time"

	"buildhub/models"
)

// Poll runs refresh on a fixed interval until stop is called or ctx is
// cancelled. The returned stop blocks until the loop has exited, so no
// refresh runs after it returns. Mirrors the dashboards' interval
// timers, which are always cleared on unmount.
func Poll(ctx context.Context, interval time.Duration, refresh func(context.Context)) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refresh(ctx)
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// Dashboard is the thin contractor shell around the estimate core: it
// owns the inbox and estimate lists and keeps them fresh. A fast poll
// runs while any estimate is still pending a homeowner decision, and a
// slow background poll refreshes the counts regardless.
type Dashboard struct {
	api          *Client
	contractorID int

	// Polling cadences; the fast one runs only while something is
	// still processing.
	FastInterval time.Duration
	SlowInterval time.Duration

	mu        sync.Mutex
	inbox     []models.LayoutSend
	estimates []models.Estimate
}

func NewDashboard(api *Client, contractorID int) *Dashboard {
	return &Dashboard{
		api:          api,
		contractorID: contractorID,
		FastInterval: 5 * time.Second,
		SlowInterval: 60 * time.Second,
	}
}

// Refresh re-fetches both lists. Errors leave the previous lists in
// place; a failed background refresh is not surfaced.
func (d *Dashboard) Refresh(ctx context.Context) {
	if items, err := d.api.Inbox(ctx, d.contractorID); err == nil {
		d.mu.Lock()
		d.inbox = items
		d.mu.Unlock()
	}
	if estimates, err := d.api.MyEstimates(ctx, d.contractorID); err == nil {
		d.mu.Lock()
		d.estimates = estimates
		d.mu.Unlock()
	}
}

func (d *Dashboard) Inbox() []models.LayoutSend {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.LayoutSend, len(d.inbox))
	copy(out, d.inbox)
	return out
}

func (d *Dashboard) Estimates() []models.Estimate {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Estimate, len(d.estimates))
	copy(out, d.estimates)
	return out
}

// Processing reports whether any tracked estimate still awaits a
// homeowner decision.
func (d *Dashboard) Processing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range d.estimates {
		if e.Status == models.EstimateStatusPending {
			return true
		}
	}
	return false
}

// Start launches the two pollers and returns a stop function that
// tears both down. No refresh runs after stop returns.
func (d *Dashboard) Start(ctx context.Context) (stop func()) {
	stopSlow := Poll(ctx, d.SlowInterval, d.Refresh)
	stopFast := Poll(ctx, d.FastInterval, func(ctx context.Context) {
		if d.Processing() {
			d.Refresh(ctx)
		}
	})
	return func() {
		stopFast()
		stopSlow()
	}
}
