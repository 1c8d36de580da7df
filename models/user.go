// models/user.go
package models

import "time"

// Marketplace roles.
const (
	RoleHomeowner  = "homeowner"
	RoleContractor = "contractor"
	RoleArchitect  = "architect"
)

type User struct {
	ID           int    `gorm:"primaryKey" json:"id"`
	FirstName    string `gorm:"size:100;not null" json:"first_name"`
	LastName     string `gorm:"size:100" json:"last_name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone        string `gorm:"size:15" json:"phone,omitempty"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:20;not null;index" json:"role"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
