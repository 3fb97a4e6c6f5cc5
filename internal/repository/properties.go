package repository

import (
	"leasing-portal/internal/model"
	"leasing-portal/pkg/database"

	"gorm.io/gorm"
)

// PropertyRepository reads properties for dashboard views
type PropertyRepository interface {
	ListByOrganization(orgID string) ([]model.Property, error)
	CountActive(orgID string) (int64, error)
	NamesByIDs(ids []string) (map[string]string, error)
}

type propertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a gorm-backed PropertyRepository
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) ListByOrganization(orgID string) ([]model.Property, error) {
	var properties []model.Property
	err := r.db.
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&properties).Error
	return properties, err
}

// CountActive counts properties whose is_active flag is true. Schemas
// without the column treat every property as active.
func (r *propertyRepository) CountActive(orgID string) (int64, error) {
	var count int64
	if !database.HasActiveColumn("properties") {
		err := r.db.Model(&model.Property{}).
			Where("organization_id = ?", orgID).
			Count(&count).Error
		return count, err
	}

	err := r.db.Model(&model.Property{}).
		Where("organization_id = ? AND is_active = ?", orgID, true).
		Count(&count).Error
	if database.IsUnknownColumnErr(err, "is_active") {
		database.MarkActiveColumnMissing("properties")
		err = r.db.Model(&model.Property{}).
			Where("organization_id = ?", orgID).
			Count(&count).Error
	}
	return count, err
}

func (r *propertyRepository) NamesByIDs(ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var properties []model.Property
	err := r.db.
		Select("id", "name").
		Where("id IN ?", ids).
		Find(&properties).Error
	if err != nil {
		return names, err
	}

	for _, p := range properties {
		names[p.ID] = p.Name
	}
	return names, nil
}
