package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminUser grants elevated CRUD permissions to a user within an
// organization. The capability flags gate the individual admin screens.
type AdminUser struct {
	ID                     string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID                 string    `json:"user_id" gorm:"type:uuid;index;not null"`
	OrganizationID         string    `json:"organization_id" gorm:"type:uuid;index;not null"`
	AdminLevel             string    `json:"admin_level" gorm:"type:varchar(50);not null;default:'admin'"`
	CanManageOrganizations bool      `json:"can_manage_organizations" gorm:"default:true"`
	CanManageProperties    bool      `json:"can_manage_properties" gorm:"default:true"`
	CanManageUsers         bool      `json:"can_manage_users" gorm:"default:true"`
	CanViewAllData         bool      `json:"can_view_all_data" gorm:"default:true"`
	IsActive               bool      `json:"is_active" gorm:"column:is_active;default:true"`
	GrantedBy              *string   `json:"granted_by,omitempty" gorm:"type:uuid"`
	GrantedAt              time.Time `json:"granted_at"`
	CreatedAt              time.Time `json:"created_at"`

	Organization Organization `json:"-" gorm:"foreignKey:OrganizationID"`
}

func (a *AdminUser) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.GrantedAt.IsZero() {
		a.GrantedAt = time.Now()
	}
	return nil
}
