package repository

import (
	"time"

	"leasing-portal/internal/model"

	"gorm.io/gorm"
)

// CallRecordRepository reads call records written by the voice pipeline
type CallRecordRepository interface {
	CountAll() (int64, error)
	CountByOrganization(orgID string) (int64, error)
	CountByProperty(propertyID string) (int64, error)
	CountInRange(orgID string, from, to time.Time) (int64, error)
	ListByOrganization(orgID string) ([]model.CallRecord, error)
	ListByProperty(propertyID string) ([]model.CallRecord, error)
	ListRecent(orgID string, limit int) ([]model.CallRecord, error)
	ListInRange(orgID string, from, to time.Time) ([]model.CallRecord, error)
}

type callRecordRepository struct {
	db *gorm.DB
}

// NewCallRecordRepository creates a gorm-backed CallRecordRepository
func NewCallRecordRepository(db *gorm.DB) CallRecordRepository {
	return &callRecordRepository{db: db}
}

func (r *callRecordRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.CallRecord{}).Count(&count).Error
	return count, err
}

func (r *callRecordRepository) CountByOrganization(orgID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.CallRecord{}).
		Where("organization_id = ?", orgID).
		Count(&count).Error
	return count, err
}

func (r *callRecordRepository) CountByProperty(propertyID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.CallRecord{}).
		Where("property_id = ?", propertyID).
		Count(&count).Error
	return count, err
}

func (r *callRecordRepository) CountInRange(orgID string, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.CallRecord{}).
		Where("organization_id = ?", orgID).
		Where("start_timestamp >= ? AND start_timestamp <= ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *callRecordRepository) ListByOrganization(orgID string) ([]model.CallRecord, error) {
	var calls []model.CallRecord
	err := r.db.
		Select("id", "property_id", "tour_scheduled_for", "duration_ms", "call_successful").
		Where("organization_id = ?", orgID).
		Find(&calls).Error
	return calls, err
}

func (r *callRecordRepository) ListByProperty(propertyID string) ([]model.CallRecord, error) {
	var calls []model.CallRecord
	err := r.db.
		Select("id", "property_id", "tour_scheduled_for", "duration_ms", "call_successful").
		Where("property_id = ?", propertyID).
		Find(&calls).Error
	return calls, err
}

func (r *callRecordRepository) ListRecent(orgID string, limit int) ([]model.CallRecord, error) {
	var calls []model.CallRecord
	err := r.db.
		Where("organization_id = ?", orgID).
		Order("start_timestamp DESC").
		Limit(limit).
		Find(&calls).Error
	return calls, err
}

func (r *callRecordRepository) ListInRange(orgID string, from, to time.Time) ([]model.CallRecord, error) {
	var calls []model.CallRecord
	err := r.db.
		Select("id", "start_timestamp", "tour_scheduled_for").
		Where("organization_id = ?", orgID).
		Where("start_timestamp >= ? AND start_timestamp <= ?", from, to).
		Order("start_timestamp ASC").
		Find(&calls).Error
	return calls, err
}
