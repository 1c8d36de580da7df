// handlers/inbox.go
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"buildhub/config"
	"buildhub/middleware"
	"buildhub/models"
)

// GetInbox lists the contractor's inbox items, newest first.
func GetInbox(w http.ResponseWriter, r *http.Request) {
	contractorID := middleware.ResolveContractorID(r, r.URL.Query().Get("contractor_id"))
	if contractorID <= 0 {
		respondFail(w, "Missing contractor_id")
		return
	}

	var items []models.LayoutSend
	if err := config.DB.Where("contractor_id = ?", contractorID).
		Order("created_at DESC").Find(&items).Error; err != nil {
		respondFail(w, "Error loading inbox: "+err.Error())
		return
	}
	respond(w, map[string]interface{}{"success": true, "items": items})
}

type acknowledgeReq struct {
	ID           int    `json:"id"`
	ContractorID int    `json:"contractor_id"`
	DueDate      string `json:"due_date"` // YYYY-MM-DD
}

// AcknowledgeInboxItem confirms receipt of a request and records the
// contractor's committed due date. Acknowledging twice is a no-op that
// reports the original timestamp; the transition never reverses.
func AcknowledgeInboxItem(w http.ResponseWriter, r *http.Request) {
	var req acknowledgeReq
	json.NewDecoder(r.Body).Decode(&req)
	if sessionID := middleware.GetUserID(r); sessionID > 0 && req.ContractorID == 0 {
		req.ContractorID = sessionID
	}
	if req.ID <= 0 || req.ContractorID <= 0 {
		respondFail(w, "Missing id or contractor_id")
		return
	}

	var item models.LayoutSend
	if err := config.DB.Where("id = ? AND contractor_id = ?", req.ID, req.ContractorID).
		First(&item).Error; err != nil {
		respondFail(w, "Item not found")
		return
	}

	if !item.Acknowledged() {
		now := models.JSONTime(time.Now())
		item.AcknowledgedAt = &now
		if req.DueDate != "" {
			if due, err := time.Parse("2006-01-02", req.DueDate); err == nil {
				d := models.JSONTime(due)
				item.DueDate = &d
			}
		}
		if err := config.DB.Model(&item).
			Updates(map[string]interface{}{"acknowledged_at": item.AcknowledgedAt, "due_date": item.DueDate}).Error; err != nil {
			respondFail(w, "Error acknowledging item: "+err.Error())
			return
		}
	}

	respond(w, map[string]interface{}{
		"success":         true,
		"acknowledged_at": item.AcknowledgedAt,
	})
}

type deleteInboxReq struct {
	ID           int `json:"id"`
	ContractorID int `json:"contractor_id"`
}

// DeleteInboxItem removes an item from the inbox (soft delete). Removal
// is independent of acknowledgment state.
func DeleteInboxItem(w http.ResponseWriter, r *http.Request) {
	var req deleteInboxReq
	json.NewDecoder(r.Body).Decode(&req)
	if req.ID <= 0 || req.ContractorID <= 0 {
		respondFail(w, "Missing id or contractor_id")
		return
	}

	result := config.DB.Where("id = ? AND contractor_id = ?", req.ID, req.ContractorID).
		Delete(&models.LayoutSend{})
	if result.Error != nil {
		respondFail(w, "Error deleting item: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		respondFail(w, "Item not found")
		return
	}
	respond(w, map[string]interface{}{"success": true})
}
