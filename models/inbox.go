// models/inbox.go
package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LayoutSend is one homeowner request routed to one contractor — an
// inbox item. Its id doubles as the send_id the estimate workflow keys
// on. The item transitions unacknowledged -> acknowledged exactly once
// and never back; removal is a soft delete independent of that state.
type LayoutSend struct {
	ID           int  `gorm:"primaryKey" json:"id"`
	ContractorID int  `gorm:"index;not null" json:"contractor_id"`
	HomeownerID  *int `gorm:"index" json:"homeowner_id,omitempty"`

	HomeownerName  string `gorm:"column:homeowner_name;size:200" json:"homeowner_name"`
	HomeownerEmail string `gorm:"column:homeowner_email;size:200" json:"homeowner_email"`
	PlotSize       string `gorm:"column:plot_size;size:100" json:"plot_size"`
	BuildingSize   string `gorm:"column:building_size;size:100" json:"building_size"`

	// Payload carries the request details as sent by the homeowner side
	// (layout references, requirements, room data). Opaque here.
	Payload datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`

	AcknowledgedAt *JSONTime `gorm:"column:acknowledged_at" json:"acknowledged_at,omitempty"`
	DueDate        *JSONTime `gorm:"column:due_date" json:"due_date,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s LayoutSend) Acknowledged() bool {
	return s.AcknowledgedAt != nil && !s.AcknowledgedAt.Time().IsZero()
}
