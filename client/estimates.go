// client/estimates.go
package client

import (
	"context"
	"fmt"

	"buildhub/models"
)

// MyEstimates lists the contractor's submitted estimates with their
// current homeowner decision status.
func (c *Client) MyEstimates(ctx context.Context, contractorID int) ([]models.Estimate, error) {
	var out struct {
		envelope
		Estimates []models.Estimate `json:"estimates"`
	}
	path := fmt.Sprintf("/api/v1/contractor/get_my_estimates?contractor_id=%d", contractorID)
	if err := c.call(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out.Estimates, nil
}

// DeleteEstimate removes one of the contractor's own estimates.
func (c *Client) DeleteEstimate(ctx context.Context, estimateID, contractorID int) error {
	body := map[string]interface{}{"estimate_id": estimateID, "contractor_id": contractorID}
	return c.call(ctx, "POST", "/api/v1/contractor/delete_estimate", body, nil)
}

// ExportEstimate downloads the xlsx workbook for a submitted estimate.
func (c *Client) ExportEstimate(ctx context.Context, estimateID, contractorID int) ([]byte, error) {
	path := fmt.Sprintf("/api/v1/contractor/estimates/%d/export?contractor_id=%d", estimateID, contractorID)
	return c.download(ctx, path)
}
