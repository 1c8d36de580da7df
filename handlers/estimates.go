// handlers/estimates.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"buildhub/config"
	"buildhub/middleware"
	"buildhub/models"
)

type submitEstimateReq struct {
	SendID        int             `json:"send_id"`
	ContractorID  int             `json:"contractor_id"`
	Materials     string          `json:"materials"`
	CostBreakdown string          `json:"cost_breakdown"`
	TotalCost     string          `json:"total_cost"`
	Timeline      string          `json:"timeline"`
	Notes         string          `json:"notes"`
	Structured    json.RawMessage `json:"structured"`
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// SubmitEstimateForSend records the final estimate for a send. The send
// must belong to the contractor and be acknowledged. On success the
// matching draft row is removed; the estimate itself is immutable from
// here on.
func SubmitEstimateForSend(w http.ResponseWriter, r *http.Request) {
	var req submitEstimateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondFail(w, "Invalid JSON body")
		return
	}
	if sessionID := middleware.GetUserID(r); sessionID > 0 && req.ContractorID == 0 {
		req.ContractorID = sessionID
	}
	if req.SendID <= 0 || req.ContractorID <= 0 {
		respondFail(w, "Missing send_id or contractor_id")
		return
	}

	// Verify send belongs to contractor
	var send models.LayoutSend
	if err := config.DB.Where("id = ? AND contractor_id = ?", req.SendID, req.ContractorID).
		First(&send).Error; err != nil {
		respondFail(w, "Invalid send or permission denied")
		return
	}
	if !send.Acknowledged() {
		respondFail(w, "Acknowledgment required before submitting an estimate")
		return
	}

	est := models.Estimate{
		SendID:        req.SendID,
		ContractorID:  req.ContractorID,
		Materials:     optional(req.Materials),
		CostBreakdown: optional(req.CostBreakdown),
		Timeline:      optional(req.Timeline),
		Notes:         optional(req.Notes),
		Status:        models.EstimateStatusPending,
	}
	if req.TotalCost != "" {
		total, err := decimal.NewFromString(req.TotalCost)
		if err != nil {
			respondFail(w, "Invalid total_cost")
			return
		}
		est.TotalCost = &total
	}
	if len(req.Structured) > 0 {
		est.Structured = []byte(req.Structured)
	}

	if err := config.DB.Create(&est).Error; err != nil {
		respondFail(w, "Error submitting estimate: "+err.Error())
		return
	}

	// The submitted estimate supersedes the draft.
	config.DB.Where("contractor_id = ? AND send_id = ?", req.ContractorID, req.SendID).
		Delete(&models.EstimateDraft{})

	respond(w, map[string]interface{}{"success": true, "estimate_id": est.ID})
}

// GetMyEstimates lists the contractor's submitted estimates, newest
// first, with whatever status the homeowner workflow has set.
func GetMyEstimates(w http.ResponseWriter, r *http.Request) {
	contractorID := middleware.ResolveContractorID(r, r.URL.Query().Get("contractor_id"))
	if contractorID <= 0 {
		respondFail(w, "Missing contractor_id")
		return
	}

	var estimates []models.Estimate
	if err := config.DB.Where("contractor_id = ?", contractorID).
		Order("created_at DESC").Find(&estimates).Error; err != nil {
		respondFail(w, "Error loading estimates: "+err.Error())
		return
	}
	respond(w, map[string]interface{}{"success": true, "estimates": estimates})
}

type deleteEstimateReq struct {
	EstimateID   int `json:"estimate_id"`
	ContractorID int `json:"contractor_id"`
}

func DeleteEstimate(w http.ResponseWriter, r *http.Request) {
	var req deleteEstimateReq
	json.NewDecoder(r.Body).Decode(&req)
	if req.EstimateID <= 0 || req.ContractorID <= 0 {
		respondFail(w, "Missing estimate_id or contractor_id")
		return
	}

	result := config.DB.Where("id = ? AND contractor_id = ?", req.EstimateID, req.ContractorID).
		Delete(&models.Estimate{})
	if result.Error != nil {
		respondFail(w, "Error deleting estimate: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		respondFail(w, "Estimate not found")
		return
	}
	respond(w, map[string]interface{}{"success": true})
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}
