package repository

import (
	"errors"

	"leasing-portal/internal/model"

	"gorm.io/gorm"
)

// ProfileRepository resolves authenticated users to their organization
type ProfileRepository interface {
	// OrganizationIDForUser returns the organization id from the user's
	// profile, or "" when no profile row exists. Callers treat "" as
	// "no data to show", never as an error.
	OrganizationIDForUser(userID string) (string, error)
	ProfileForUser(userID string) (*model.UserProfile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a gorm-backed ProfileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) OrganizationIDForUser(userID string) (string, error) {
	var profile model.UserProfile
	err := r.db.
		Select("organization_id").
		Where("user_id = ?", userID).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return profile.OrganizationID, nil
}

func (r *profileRepository) ProfileForUser(userID string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.db.
		Where("user_id = ?", userID).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
