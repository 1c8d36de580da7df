package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"buildhub/estimate"
	"buildhub/models"
)

// fakeMarketplace implements the whole contractor contract in memory so
// the workflow can run end to end.
type fakeMarketplace struct {
	mu        sync.Mutex
	items     map[int]*models.LayoutSend
	drafts    map[string]map[string]string
	estimates []map[string]interface{}
}

func newFakeMarketplace() *fakeMarketplace {
	return &fakeMarketplace{
		items:  map[int]*models.LayoutSend{},
		drafts: map[string]map[string]string{},
	}
}

func (m *fakeMarketplace) handler() http.Handler {
	ok := func(w http.ResponseWriter, extra map[string]interface{}) {
		out := map[string]interface{}{"success": true}
		for k, v := range extra {
			out[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
	fail := func(w http.ResponseWriter, msg string) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": msg})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/contractor/get_inbox", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		items := []models.LayoutSend{}
		for _, it := range m.items {
			items = append(items, *it)
		}
		ok(w, map[string]interface{}{"items": items})
	})
	mux.HandleFunc("/api/v1/contractor/acknowledge_inbox_item", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID      int    `json:"id"`
			DueDate string `json:"due_date"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		m.mu.Lock()
		defer m.mu.Unlock()
		item, found := m.items[req.ID]
		if !found {
			fail(w, "Item not found")
			return
		}
		now := models.JSONTime(time.Now())
		item.AcknowledgedAt = &now
		if due, err := time.Parse("2006-01-02", req.DueDate); err == nil {
			d := models.JSONTime(due)
			item.DueDate = &d
		}
		ok(w, map[string]interface{}{"acknowledged_at": now})
	})
	mux.HandleFunc("/api/v1/contractor/save_estimate_draft", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		switch r.Method {
		case http.MethodPost:
			var req struct {
				ContractorID int               `json:"contractor_id"`
				SendID       int               `json:"send_id"`
				DraftData    map[string]string `json:"draft_data"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			m.drafts[strconv.Itoa(req.ContractorID)+":"+strconv.Itoa(req.SendID)] = req.DraftData
			ok(w, nil)
		case http.MethodGet:
			key := r.URL.Query().Get("contractor_id") + ":" + r.URL.Query().Get("send_id")
			draft := m.drafts[key]
			if draft == nil {
				ok(w, map[string]interface{}{"draft_data": nil})
				return
			}
			ok(w, map[string]interface{}{
				"draft_data": draft,
				"last_saved": time.Now().Format(time.RFC3339),
			})
		case http.MethodDelete:
			key := r.URL.Query().Get("contractor_id") + ":" + r.URL.Query().Get("send_id")
			delete(m.drafts, key)
			ok(w, nil)
		}
	})
	mux.HandleFunc("/api/v1/contractor/submit_estimate_for_send", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		m.mu.Lock()
		defer m.mu.Unlock()
		sendID := int(req["send_id"].(float64))
		item, found := m.items[sendID]
		if !found {
			fail(w, "Invalid send or permission denied")
			return
		}
		if item.AcknowledgedAt == nil {
			fail(w, "Acknowledgment required before submitting an estimate")
			return
		}
		req["id"] = len(m.estimates) + 1
		req["status"] = models.EstimateStatusPending
		m.estimates = append(m.estimates, req)
		ok(w, map[string]interface{}{"estimate_id": req["id"]})
	})
	mux.HandleFunc("/api/v1/contractor/get_my_estimates", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		ok(w, map[string]interface{}{"estimates": m.estimates})
	})
	return mux
}

func TestEstimateWorkflowEndToEnd(t *testing.T) {
	market := newFakeMarketplace()
	market.items[42] = &models.LayoutSend{
		ID:            42,
		ContractorID:  7,
		HomeownerName: "New Homeowner",
		PlotSize:      "40x60",
		BuildingSize:  "2400 sqft",
	}
	srv := httptest.NewServer(market.handler())
	defer srv.Close()

	api := New(srv.URL)
	drafts := NewDraftClient(api)
	submitter := NewSubmitter(api, drafts)
	ctx := context.Background()

	// unacknowledged item: no form
	inbox, err := api.Inbox(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(inbox) != 1 || inbox[0].ID != 42 {
		t.Fatalf("inbox = %v", inbox)
	}
	if _, err := OpenEstimateForm(inbox[0]); !errors.Is(err, estimate.ErrAcknowledgmentRequired) {
		t.Fatalf("unacknowledged open err = %v, want ErrAcknowledgmentRequired", err)
	}

	// acknowledge, then the form renders
	if _, err := api.AcknowledgeInboxItem(ctx, 42, 7, "2024-06-01"); err != nil {
		t.Fatal(err)
	}
	inbox, err = api.Inbox(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	form, err := OpenEstimateForm(inbox[0])
	if err != nil {
		t.Fatalf("acknowledged open err = %v", err)
	}
	if form.Get("structured[client_name]") != "New Homeowner" {
		t.Errorf("client_name = %q", form.Get("structured[client_name]"))
	}

	// cement 50 x 380 drives the materials total
	form.Set("structured[materials][cement][qty]", "50")
	form.Set("structured[materials][cement][rate]", "380")
	totals := estimate.Recalc(form)
	if totals.Materials.Display() != "19000" {
		t.Fatalf("materials total = %q, want 19000", totals.Materials.Display())
	}

	// draft round-trip before submitting
	key := DraftKey{ContractorID: 7, SendID: 42}
	if err := drafts.Save(ctx, key, form.Snapshot()); err != nil {
		t.Fatal(err)
	}
	loaded, err := drafts.Load(ctx, key)
	if err != nil || loaded == nil {
		t.Fatalf("draft load = %v, %v", loaded, err)
	}

	form.Set("timeline", "8 weeks")
	if err := submitter.Submit(ctx, 42, 7, form); err != nil {
		t.Fatal(err)
	}

	// submitted payload carries the exact structured totals
	market.mu.Lock()
	submitted := market.estimates[0]
	market.mu.Unlock()
	if submitted["total_cost"] != "19000" {
		t.Errorf("total_cost = %v, want 19000", submitted["total_cost"])
	}
	structured := submitted["structured"].(map[string]interface{})
	grand := structured["totals"].(map[string]interface{})["grand"]
	if grand != "19000" {
		t.Errorf("grand total = %v, want 19000", grand)
	}
	cement := structured["materials"].(map[string]interface{})["cement"].(map[string]interface{})
	if cement["amount"] != "19000" {
		t.Errorf("cement amount = %v", cement["amount"])
	}

	// draft is gone, list shows the pending estimate
	if loaded, _ := drafts.Load(ctx, key); loaded != nil {
		t.Error("draft survived submission")
	}
	estimates, err := api.MyEstimates(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(estimates) != 1 || estimates[0].Status != models.EstimateStatusPending {
		t.Fatalf("estimates = %v", estimates)
	}
}
