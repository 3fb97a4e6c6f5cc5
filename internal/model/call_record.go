package model

import (
	"time"
)

// CallRecord is one leasing call handled by the voice agent. Rows are
// written by the external voice pipeline and are read-only here: this
// service never updates or deletes them.
//
// A non-nil TourScheduledFor is the sole signal that the call produced a
// lead (a scheduled property tour).
type CallRecord struct {
	ID                string     `json:"id" gorm:"type:uuid;primaryKey"`
	PropertyID        string     `json:"property_id" gorm:"type:uuid;index;not null"`
	OrganizationID    string     `json:"organization_id" gorm:"type:uuid;index;not null"`
	CallStatus        string     `json:"call_status" gorm:"type:varchar(50)"`
	StartTimestamp    time.Time  `json:"start_timestamp" gorm:"index"`
	EndTimestamp      *time.Time `json:"end_timestamp,omitempty"`
	DurationMs        *int64     `json:"duration_ms,omitempty"`
	CallSuccessful    *bool      `json:"call_successful,omitempty"`
	CustomerFirstName *string    `json:"customer_first_name,omitempty" gorm:"type:varchar(80)"`
	CustomerLastName  *string    `json:"customer_last_name,omitempty" gorm:"type:varchar(80)"`
	CustomerPhone     *string    `json:"customer_phone,omitempty" gorm:"type:varchar(30)"`
	CustomerEmail     *string    `json:"customer_email,omitempty" gorm:"type:varchar(100)"`
	CallSummary       *string    `json:"call_summary,omitempty" gorm:"type:text"`
	TourScheduledFor  *time.Time `json:"tour_scheduled_for,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`

	// Resolved for presentation, not a column
	PropertyName string `json:"property_name,omitempty" gorm:"-"`
}

// IsLead reports whether the call produced a scheduled tour
func (c *CallRecord) IsLead() bool {
	return c.TourScheduledFor != nil
}
