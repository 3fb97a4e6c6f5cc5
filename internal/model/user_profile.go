package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProfile binds an authenticated identity to its organization.
// One profile per user; the profile's organization scopes everything the
// user can see on the dashboard.
type UserProfile struct {
	ID             string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         string    `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	OrganizationID string    `json:"organization_id" gorm:"type:uuid;index;not null"`
	FirstName      string    `json:"first_name" gorm:"type:varchar(80)"`
	LastName       string    `json:"last_name" gorm:"type:varchar(80)"`
	IsActive       bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Organization Organization `json:"-" gorm:"foreignKey:OrganizationID"`
}

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
