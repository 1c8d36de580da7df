// handlers/drafts.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"buildhub/config"
	"buildhub/models"
)

type saveDraftReq struct {
	ContractorID int             `json:"contractor_id"`
	SendID       int             `json:"send_id"`
	DraftData    json.RawMessage `json:"draft_data"`
}

// SaveEstimateDraft upserts the autosaved form snapshot for one
// (contractor, send) pair. Last save wins.
func SaveEstimateDraft(w http.ResponseWriter, r *http.Request) {
	var req saveDraftReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondFail(w, "Invalid JSON body")
		return
	}
	if req.ContractorID <= 0 || req.SendID <= 0 {
		respondFail(w, "Missing contractor_id or send_id")
		return
	}
	if len(req.DraftData) == 0 {
		respondFail(w, "Missing draft_data")
		return
	}

	draft := models.EstimateDraft{
		ContractorID: req.ContractorID,
		SendID:       req.SendID,
		DraftData:    []byte(req.DraftData),
		LastSaved:    models.JSONTime(time.Now()),
	}
	err := config.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "contractor_id"}, {Name: "send_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"draft_data", "last_saved", "updated_at"}),
	}).Create(&draft).Error
	if err != nil {
		respondFail(w, "Error saving draft: "+err.Error())
		return
	}
	respond(w, map[string]interface{}{"success": true, "last_saved": draft.LastSaved})
}

// GetEstimateDraft returns the stored draft, or draft_data null when
// none exists. Absence is not an error.
func GetEstimateDraft(w http.ResponseWriter, r *http.Request) {
	contractorID, _ := strconv.Atoi(r.URL.Query().Get("contractor_id"))
	sendID, _ := strconv.Atoi(r.URL.Query().Get("send_id"))
	if contractorID <= 0 || sendID <= 0 {
		respondFail(w, "Missing contractor_id or send_id")
		return
	}

	var draft models.EstimateDraft
	err := config.DB.Where("contractor_id = ? AND send_id = ?", contractorID, sendID).
		First(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respond(w, map[string]interface{}{"success": true, "draft_data": nil})
		return
	}
	if err != nil {
		respondFail(w, "Error loading draft: "+err.Error())
		return
	}
	respond(w, map[string]interface{}{
		"success":    true,
		"draft_data": draft.DraftData,
		"last_saved": draft.LastSaved,
	})
}

// ClearEstimateDraft is the explicit user-triggered wipe, distinct from
// the silent overwrite SaveEstimateDraft performs.
func ClearEstimateDraft(w http.ResponseWriter, r *http.Request) {
	contractorID, _ := strconv.Atoi(r.URL.Query().Get("contractor_id"))
	sendID, _ := strconv.Atoi(r.URL.Query().Get("send_id"))
	if contractorID <= 0 || sendID <= 0 {
		respondFail(w, "Missing contractor_id or send_id")
		return
	}

	if err := config.DB.Where("contractor_id = ? AND send_id = ?", contractorID, sendID).
		Delete(&models.EstimateDraft{}).Error; err != nil {
		respondFail(w, "Error clearing draft: "+err.Error())
		return
	}
	respond(w, map[string]interface{}{"success": true})
}
