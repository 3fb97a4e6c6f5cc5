package service

import (
	"fmt"
	"math"
	"sync"
	"time"

	"leasing-portal/internal/model"
	"leasing-portal/internal/repository"

	"go.uber.org/zap"
)

const unknownPropertyName = "Unknown Property"

// The chart never asks for more than 90 days; anything beyond a year is a
// malformed or abusive query parameter.
const maxVolumeWindowDays = 365

// DashboardStats is the summary card row at the top of the dashboard
type DashboardStats struct {
	TotalCalls       int64   `json:"total_calls"`
	TourRate         float64 `json:"tour_rate"`
	AvgCallDuration  string  `json:"avg_call_duration"`
	ActiveProperties int64   `json:"active_properties"`
}

// ActivityItem is one entry of the recent-activity feed
type ActivityItem struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"` // "lead" or "call"
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
	PropertyName string    `json:"property_name,omitempty"`
}

// CallVolumePoint is one calendar day of the call-volume chart
type CallVolumePoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Calls int    `json:"calls"`
	Tours int    `json:"tours"`
}

// PropertyStats is a property enriched with its call statistics
type PropertyStats struct {
	model.Property
	CallCount       int64 `json:"call_count"`
	LeadCount       int64 `json:"lead_count"`
	ConversionCount int64 `json:"conversion_count"`
}

// DebugCounts exposes raw call-record counts for admin diagnostics
type DebugCounts struct {
	TotalRecords        int64            `json:"total_records"`
	OrganizationRecords int64            `json:"organization_records"`
	DateRangeRecords    map[string]int64 `json:"date_range_records"`
}

// DashboardService reduces call records into the dashboard's derived views.
// Every method returns its zero-value shape for an empty organization id,
// and a failed sub-query degrades that sub-query to an empty result instead
// of failing the whole view.
type DashboardService struct {
	calls      repository.CallRecordRepository
	properties repository.PropertyRepository
	log        *zap.Logger
}

// NewDashboardService creates a DashboardService
func NewDashboardService(calls repository.CallRecordRepository, properties repository.PropertyRepository, log *zap.Logger) *DashboardService {
	return &DashboardService{calls: calls, properties: properties, log: log}
}

func zeroStats() DashboardStats {
	return DashboardStats{
		TotalCalls:       0,
		TourRate:         0,
		AvgCallDuration:  "0m 0s",
		ActiveProperties: 0,
	}
}

// Stats computes the summary statistics for one organization
func (s *DashboardService) Stats(orgID string) DashboardStats {
	if orgID == "" {
		return zeroStats()
	}

	// Exact count query, not the length of a fetched page
	totalCalls, err := s.calls.CountByOrganization(orgID)
	if err != nil {
		s.log.Error("Failed to count call records", zap.String("organization_id", orgID), zap.Error(err))
		totalCalls = 0
	}

	calls, err := s.calls.ListByOrganization(orgID)
	if err != nil {
		s.log.Error("Failed to fetch calls for stats", zap.String("organization_id", orgID), zap.Error(err))
		calls = nil
	}

	var tours int64
	for _, c := range calls {
		if c.IsLead() {
			tours++
		}
	}

	tourRate := 0.0
	if totalCalls > 0 {
		tourRate = float64(tours) / float64(totalCalls) * 100
	}

	activeProperties, err := s.properties.CountActive(orgID)
	if err != nil {
		s.log.Error("Failed to count active properties", zap.String("organization_id", orgID), zap.Error(err))
		activeProperties = 0
	}

	return DashboardStats{
		TotalCalls:       totalCalls,
		TourRate:         math.Round(tourRate*10) / 10,
		AvgCallDuration:  averageDuration(calls),
		ActiveProperties: activeProperties,
	}
}

// averageDuration averages duration_ms over records with a strictly
// positive duration and formats the result as minutes and seconds,
// truncated. Records without a duration contribute to neither the sum nor
// the count.
func averageDuration(calls []model.CallRecord) string {
	var total int64
	var n int64
	for _, c := range calls {
		if c.DurationMs != nil && *c.DurationMs > 0 {
			total += *c.DurationMs
			n++
		}
	}

	avgMs := 0.0
	if n > 0 {
		avgMs = float64(total) / float64(n)
	}

	minutes := int(avgMs / 60000)
	seconds := int(math.Mod(avgMs, 60000) / 1000)
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// RecentCalls returns the most recent call records, newest first, with
// property names resolved for display
func (s *DashboardService) RecentCalls(orgID string, limit int) []model.CallRecord {
	if orgID == "" {
		return []model.CallRecord{}
	}

	calls, err := s.calls.ListRecent(orgID, limit)
	if err != nil {
		s.log.Error("Failed to fetch recent call records", zap.String("organization_id", orgID), zap.Error(err))
		return []model.CallRecord{}
	}
	if len(calls) == 0 {
		return calls
	}

	seen := make(map[string]struct{}, len(calls))
	ids := make([]string, 0, len(calls))
	for _, c := range calls {
		if _, ok := seen[c.PropertyID]; !ok {
			seen[c.PropertyID] = struct{}{}
			ids = append(ids, c.PropertyID)
		}
	}

	names, err := s.properties.NamesByIDs(ids)
	if err != nil {
		// Calls are still useful without names resolved
		s.log.Error("Failed to fetch property names", zap.Error(err))
		return calls
	}

	for i := range calls {
		if name, ok := names[calls[i].PropertyID]; ok {
			calls[i].PropertyName = name
		} else {
			calls[i].PropertyName = unknownPropertyName
		}
	}
	return calls
}

// Activity converts the most recent calls into activity-feed items.
// Classification precedence: a scheduled tour makes the call a lead even
// when the call is also marked successful.
func (s *DashboardService) Activity(orgID string, limit int) []ActivityItem {
	calls := s.RecentCalls(orgID, limit)

	items := make([]ActivityItem, 0, len(calls))
	for _, call := range calls {
		name := call.PropertyName
		if name == "" || name == unknownPropertyName {
			name = "property"
		}

		item := ActivityItem{
			ID:           call.ID,
			Type:         "call",
			Timestamp:    call.StartTimestamp,
			PropertyName: call.PropertyName,
		}
		switch {
		case call.IsLead():
			item.Type = "lead"
			item.Message = fmt.Sprintf("Lead generated for %s", name)
		case call.CallSuccessful != nil && *call.CallSuccessful:
			item.Message = fmt.Sprintf("Successful call completed for %s", name)
		default:
			item.Message = fmt.Sprintf("Call completed for %s", name)
		}
		items = append(items, item)
	}
	return items
}

// VolumeSeries buckets the trailing window of `days` days into per-day call
// and tour counts. The series always holds exactly days+1 entries covering
// [today-days, today] inclusive, zero-initialized, so chart callers never
// have to backfill gaps.
func (s *DashboardService) VolumeSeries(orgID string, days int) []CallVolumePoint {
	if days < 0 {
		days = 0
	}
	if days > maxVolumeWindowDays {
		days = maxVolumeWindowDays
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	series := make([]CallVolumePoint, days+1)
	index := make(map[string]int, days+1)
	for i := 0; i <= days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		series[i] = CallVolumePoint{Date: date}
		index[date] = i
	}

	if orgID == "" {
		return series
	}

	// Widen the lower bound to midnight so calls earlier on the first day
	// still land in its bucket.
	rangeStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	calls, err := s.calls.ListInRange(orgID, rangeStart, end)
	if err != nil {
		s.log.Error("Failed to fetch call volume data", zap.String("organization_id", orgID), zap.Error(err))
		return series
	}

	for _, c := range calls {
		date := c.StartTimestamp.UTC().Format("2006-01-02")
		i, ok := index[date]
		if !ok {
			continue
		}
		series[i].Calls++
		if c.IsLead() {
			series[i].Tours++
		}
	}
	return series
}

// PropertiesWithStats returns the organization's properties enriched with
// call, lead and conversion counts. The per-property queries are
// independent and fan out concurrently; each property degrades to zero
// counts when its queries fail.
func (s *DashboardService) PropertiesWithStats(orgID string) []PropertyStats {
	if orgID == "" {
		return []PropertyStats{}
	}

	properties, err := s.properties.ListByOrganization(orgID)
	if err != nil {
		s.log.Error("Failed to fetch properties", zap.String("organization_id", orgID), zap.Error(err))
		return []PropertyStats{}
	}

	stats := make([]PropertyStats, len(properties))
	var wg sync.WaitGroup
	for i, property := range properties {
		wg.Add(1)
		go func(i int, property model.Property) {
			defer wg.Done()
			stats[i] = s.propertyStats(property)
		}(i, property)
	}
	wg.Wait()
	return stats
}

func (s *DashboardService) propertyStats(property model.Property) PropertyStats {
	ps := PropertyStats{Property: property}

	count, err := s.calls.CountByProperty(property.ID)
	if err != nil {
		s.log.Error("Failed to count calls for property", zap.String("property_id", property.ID), zap.Error(err))
	} else {
		ps.CallCount = count
	}

	calls, err := s.calls.ListByProperty(property.ID)
	if err != nil {
		s.log.Error("Failed to fetch call stats for property", zap.String("property_id", property.ID), zap.Error(err))
		return ps
	}
	for _, c := range calls {
		if c.IsLead() {
			ps.LeadCount++
		}
		if c.CallSuccessful != nil && *c.CallSuccessful {
			ps.ConversionCount++
		}
	}
	return ps
}

// Counts gathers raw record counts over standard date ranges for the admin
// diagnostics endpoint
func (s *DashboardService) Counts(orgID string) DebugCounts {
	counts := DebugCounts{DateRangeRecords: map[string]int64{}}

	total, err := s.calls.CountAll()
	if err != nil {
		s.log.Error("Failed to count all call records", zap.Error(err))
	} else {
		counts.TotalRecords = total
	}

	if orgID == "" {
		return counts
	}

	orgTotal, err := s.calls.CountByOrganization(orgID)
	if err != nil {
		s.log.Error("Failed to count organization call records", zap.Error(err))
	} else {
		counts.OrganizationRecords = orgTotal
	}

	now := time.Now()
	ranges := map[string]time.Time{
		"7days":   now.AddDate(0, 0, -7),
		"30days":  now.AddDate(0, 0, -30),
		"90days":  now.AddDate(0, 0, -90),
		"allTime": time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for name, from := range ranges {
		count, err := s.calls.CountInRange(orgID, from, now)
		if err != nil {
			s.log.Error("Failed to count ranged call records", zap.String("range", name), zap.Error(err))
			continue
		}
		counts.DateRangeRecords[name] = count
	}
	return counts
}
