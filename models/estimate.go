// models/estimate.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Estimate statuses. Rows are immutable after insert except for status
// and homeowner_message, which only the homeowner-side workflow touches.
const (
	EstimateStatusPending  = "pending"
	EstimateStatusAccepted = "accepted"
	EstimateStatusRejected = "rejected"
)

// EstimateDraft is the autosaved snapshot of an in-progress estimate
// form, one row per (contractor, send) pair. The draft client is the
// sole writer of a given key; last save wins.
type EstimateDraft struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"-"`
	ContractorID int            `gorm:"uniqueIndex:idx_draft_contractor_send;not null" json:"contractor_id"`
	SendID       int            `gorm:"uniqueIndex:idx_draft_contractor_send;not null" json:"send_id"`
	DraftData    datatypes.JSON `gorm:"type:jsonb;not null" json:"draft_data"`
	LastSaved    JSONTime       `gorm:"column:last_saved;not null" json:"last_saved"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (d *EstimateDraft) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}

// Estimate is a submitted cost estimate for one send.
type Estimate struct {
	ID           int `gorm:"primaryKey" json:"id"`
	SendID       int `gorm:"index;not null" json:"send_id"`
	ContractorID int `gorm:"index;not null" json:"contractor_id"`

	Materials     *string          `gorm:"type:text" json:"materials,omitempty"`
	CostBreakdown *string          `gorm:"column:cost_breakdown;type:text" json:"cost_breakdown,omitempty"`
	TotalCost     *decimal.Decimal `gorm:"column:total_cost;type:numeric(15,2)" json:"total_cost,omitempty"`
	Timeline      *string          `gorm:"size:255" json:"timeline,omitempty"`
	Notes         *string          `gorm:"type:text" json:"notes,omitempty"`

	// Structured holds the nested cost-breakdown object submitted
	// alongside the free-text summary fields.
	Structured datatypes.JSON `gorm:"type:jsonb" json:"structured,omitempty"`

	Status           string  `gorm:"size:32;default:pending;index" json:"status"`
	HomeownerMessage *string `gorm:"column:homeowner_message;type:text" json:"homeowner_message,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
