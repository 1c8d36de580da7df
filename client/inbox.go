// client/inbox.go
package client

import (
	"context"
	"fmt"

	"buildhub/estimate"
	"buildhub/models"
)

// Inbox lists the contractor's pending requests, newest first.
func (c *Client) Inbox(ctx context.Context, contractorID int) ([]models.LayoutSend, error) {
	var out struct {
		envelope
		Items []models.LayoutSend `json:"items"`
	}
	path := fmt.Sprintf("/api/v1/contractor/get_inbox?contractor_id=%d", contractorID)
	if err := c.call(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// AcknowledgeInboxItem confirms receipt of a request with a committed
// due date (YYYY-MM-DD). Acknowledgment gates estimate entry.
func (c *Client) AcknowledgeInboxItem(ctx context.Context, id, contractorID int, dueDate string) (models.JSONTime, error) {
	var out struct {
		envelope
		AcknowledgedAt models.JSONTime `json:"acknowledged_at"`
	}
	body := map[string]interface{}{
		"id":            id,
		"contractor_id": contractorID,
		"due_date":      dueDate,
	}
	err := c.call(ctx, "POST", "/api/v1/contractor/acknowledge_inbox_item", body, &out)
	return out.AcknowledgedAt, err
}

// RemoveInboxItem soft-deletes an inbox item.
func (c *Client) RemoveInboxItem(ctx context.Context, id, contractorID int) error {
	body := map[string]interface{}{"id": id, "contractor_id": contractorID}
	return c.call(ctx, "POST", "/api/v1/contractor/delete_inbox_item", body, nil)
}

// OpenEstimateForm starts the one form session for an inbox item,
// binding the identity fields from the item. Unacknowledged items get
// estimate.ErrAcknowledgmentRequired instead of a form.
func OpenEstimateForm(item models.LayoutSend) (*estimate.Form, error) {
	return estimate.OpenSession(estimate.Request{
		SendID:           item.ID,
		HomeownerName:    item.HomeownerName,
		HomeownerContact: item.HomeownerEmail,
		PlotSize:         item.PlotSize,
		BuiltUpArea:      item.BuildingSize,
		Acknowledged:     item.Acknowledged(),
	})
}
