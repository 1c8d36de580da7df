package client

import (
	"context"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"buildhub/models"
)

func TestPollStops(t *testing.T) {
	var calls atomic.Int64
	stop := Poll(context.Background(), 10*time.Millisecond, func(context.Context) {
		calls.Add(1)
	})

	if !waitFor(t, time.Second, func() bool { return calls.Load() >= 2 }) {
		t.Fatal("poller never ticked")
	}
	stop()
	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != settled {
		t.Error("refresh ran after stop returned")
	}
}

func TestPollStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int64
	stop := Poll(ctx, 10*time.Millisecond, func(context.Context) {
		calls.Add(1)
	})
	defer stop()

	cancel()
	time.Sleep(30 * time.Millisecond)
	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != settled {
		t.Error("refresh ran after context cancellation")
	}
}

func TestDashboardRefreshAndProcessing(t *testing.T) {
	market := newFakeMarketplace()
	market.items[42] = &models.LayoutSend{ID: 42, ContractorID: 7, HomeownerName: "New Homeowner"}
	srv := httptest.NewServer(market.handler())
	defer srv.Close()

	d := NewDashboard(New(srv.URL), 7)
	if d.Processing() {
		t.Error("empty dashboard reports processing")
	}

	d.Refresh(context.Background())
	if got := d.Inbox(); len(got) != 1 || got[0].ID != 42 {
		t.Fatalf("inbox = %v", got)
	}

	market.mu.Lock()
	market.estimates = append(market.estimates, map[string]interface{}{
		"id": 1, "send_id": 42, "contractor_id": 7, "status": models.EstimateStatusPending,
	})
	market.mu.Unlock()

	d.Refresh(context.Background())
	if !d.Processing() {
		t.Error("pending estimate not reported as processing")
	}
}
