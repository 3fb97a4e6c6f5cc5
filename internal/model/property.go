package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Property represents a leasing property handled by the voice agent.
// RetellAgentID links the property to its agent in the external voice
// pipeline and may be unset while onboarding.
type Property struct {
	ID             string    `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID string    `json:"organization_id" gorm:"type:uuid;index;not null"`
	Name           string    `json:"name" gorm:"type:varchar(150);not null"`
	RetellAgentID  *string   `json:"retell_agent_id,omitempty" gorm:"type:varchar(100)"`
	IsActive       bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Organization Organization `json:"-" gorm:"foreignKey:OrganizationID"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
