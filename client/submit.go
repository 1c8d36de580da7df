// client/submit.go
package client

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"buildhub/estimate"
)

// Submitter validates, serializes and submits final estimates, then
// reconciles the dependent state: draft cleared, form reset, estimate
// list refreshed.
type Submitter struct {
	api    *Client
	drafts *DraftClient

	// OnSubmitted, when set, runs after a successful submission so the
	// owning dashboard can refresh its lists.
	OnSubmitted func(ctx context.Context)

	mu       sync.Mutex
	inFlight map[int]bool
}

func NewSubmitter(api *Client, drafts *DraftClient) *Submitter {
	return &Submitter{
		api:      api,
		drafts:   drafts,
		inFlight: map[int]bool{},
	}
}

type submitPayload struct {
	SendID        int                    `json:"send_id"`
	ContractorID  int                    `json:"contractor_id"`
	Materials     string                 `json:"materials"`
	CostBreakdown string                 `json:"cost_breakdown"`
	TotalCost     string                 `json:"total_cost"`
	Timeline      string                 `json:"timeline"`
	Notes         string                 `json:"notes"`
	Structured    map[string]interface{} `json:"structured"`
}

// Submit sends the estimate for one inbox item. Identifiers must
// resolve (session identity with a form-field fallback) and the
// required leaves must be present, otherwise a ValidationError is
// returned before any network activity. While a submission for a send
// is outstanding a second one is rejected, so a double-click cannot
// create duplicate estimates. On failure the form is left untouched for
// retry; on success the draft is cleared and the form reset.
func (s *Submitter) Submit(ctx context.Context, sendID, contractorID int, form *estimate.Form) error {
	if sendID <= 0 {
		if n, err := strconv.Atoi(form.Get("send_id")); err == nil {
			sendID = n
		}
	}
	if contractorID <= 0 {
		if n, err := strconv.Atoi(form.Get("contractor_id")); err == nil {
			contractorID = n
		}
	}
	if sendID <= 0 || contractorID <= 0 {
		return &ValidationError{Msg: "Missing identifiers"}
	}

	// Totals are authoritative at submission time.
	estimate.Recalc(form)

	if strings.TrimSpace(form.Get("total_cost")) == "" {
		return &ValidationError{Msg: "total_cost is required"}
	}
	if strings.TrimSpace(form.Get("timeline")) == "" {
		return &ValidationError{Msg: "timeline is required"}
	}

	s.mu.Lock()
	if s.inFlight[sendID] {
		s.mu.Unlock()
		return &ValidationError{Msg: "submission already in progress"}
	}
	s.inFlight[sendID] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, sendID)
		s.mu.Unlock()
	}()

	payload := submitPayload{
		SendID:        sendID,
		ContractorID:  contractorID,
		Materials:     form.Get("materials"),
		CostBreakdown: form.Get("cost_breakdown"),
		TotalCost:     form.Get("total_cost"),
		Timeline:      form.Get("timeline"),
		Notes:         form.Get("notes"),
		Structured:    form.StructuredPayload(),
	}

	if err := s.api.call(ctx, "POST", "/api/v1/contractor/submit_estimate_for_send", payload, nil); err != nil {
		// Form state is preserved so the user can retry.
		return err
	}

	// Reconcile: the submitted estimate supersedes the draft.
	key := DraftKey{ContractorID: contractorID, SendID: sendID}
	if err := s.drafts.Clear(ctx, key); err != nil {
		// Non-fatal: the server already dropped the draft row on submit.
		s.api.log.Warn("draft clear after submit failed", "send_id", sendID, "error", err)
	}
	form.Reset()

	if s.OnSubmitted != nil {
		s.OnSubmitted(ctx)
	}
	return nil
}
