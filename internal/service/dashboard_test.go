package service

import (
	"errors"
	"testing"
	"time"

	"leasing-portal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockCallRecordRepo struct {
	mock.Mock
}

func (m *mockCallRecordRepo) CountAll() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCallRecordRepo) CountByOrganization(orgID string) (int64, error) {
	args := m.Called(orgID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCallRecordRepo) CountByProperty(propertyID string) (int64, error) {
	args := m.Called(propertyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCallRecordRepo) CountInRange(orgID string, from, to time.Time) (int64, error) {
	args := m.Called(orgID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCallRecordRepo) ListByOrganization(orgID string) ([]model.CallRecord, error) {
	args := m.Called(orgID)
	return args.Get(0).([]model.CallRecord), args.Error(1)
}

func (m *mockCallRecordRepo) ListByProperty(propertyID string) ([]model.CallRecord, error) {
	args := m.Called(propertyID)
	return args.Get(0).([]model.CallRecord), args.Error(1)
}

func (m *mockCallRecordRepo) ListRecent(orgID string, limit int) ([]model.CallRecord, error) {
	args := m.Called(orgID, limit)
	return args.Get(0).([]model.CallRecord), args.Error(1)
}

func (m *mockCallRecordRepo) ListInRange(orgID string, from, to time.Time) ([]model.CallRecord, error) {
	args := m.Called(orgID, from, to)
	return args.Get(0).([]model.CallRecord), args.Error(1)
}

type mockPropertyRepo struct {
	mock.Mock
}

func (m *mockPropertyRepo) ListByOrganization(orgID string) ([]model.Property, error) {
	args := m.Called(orgID)
	return args.Get(0).([]model.Property), args.Error(1)
}

func (m *mockPropertyRepo) CountActive(orgID string) (int64, error) {
	args := m.Called(orgID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPropertyRepo) NamesByIDs(ids []string) (map[string]string, error) {
	args := m.Called(ids)
	return args.Get(0).(map[string]string), args.Error(1)
}

func newTestService(calls *mockCallRecordRepo, properties *mockPropertyRepo) *DashboardService {
	return NewDashboardService(calls, properties, zap.NewNop())
}

func ptrInt64(v int64) *int64    { return &v }
func ptrBool(v bool) *bool       { return &v }
func ptrTime(t time.Time) *time.Time { return &t }

func TestStats_EmptyOrganizationID(t *testing.T) {
	svc := newTestService(&mockCallRecordRepo{}, &mockPropertyRepo{})

	stats := svc.Stats("")

	assert.Equal(t, int64(0), stats.TotalCalls)
	assert.Equal(t, 0.0, stats.TourRate)
	assert.Equal(t, "0m 0s", stats.AvgCallDuration)
	assert.Equal(t, int64(0), stats.ActiveProperties)
}

func TestStats_ComputesRateAndDuration(t *testing.T) {
	calls := &mockCallRecordRepo{}
	properties := &mockPropertyRepo{}

	tour := time.Now().Add(24 * time.Hour)
	records := make([]model.CallRecord, 0, 40)
	for i := 0; i < 40; i++ {
		r := model.CallRecord{ID: "call", DurationMs: ptrInt64(120000)}
		if i < 10 {
			r.TourScheduledFor = ptrTime(tour)
		}
		records = append(records, r)
	}

	calls.On("CountByOrganization", "org-1").Return(int64(40), nil)
	calls.On("ListByOrganization", "org-1").Return(records, nil)
	properties.On("CountActive", "org-1").Return(int64(3), nil)

	stats := newTestService(calls, properties).Stats("org-1")

	assert.Equal(t, int64(40), stats.TotalCalls)
	assert.Equal(t, 25.0, stats.TourRate)
	assert.Equal(t, "2m 0s", stats.AvgCallDuration)
	assert.Equal(t, int64(3), stats.ActiveProperties)
	calls.AssertExpectations(t)
	properties.AssertExpectations(t)
}

func TestStats_RoundsTourRateToOneDecimal(t *testing.T) {
	calls := &mockCallRecordRepo{}
	properties := &mockPropertyRepo{}

	tour := time.Now()
	records := []model.CallRecord{
		{ID: "a", TourScheduledFor: ptrTime(tour)},
		{ID: "b"},
		{ID: "c"},
	}

	calls.On("CountByOrganization", "org-1").Return(int64(3), nil)
	calls.On("ListByOrganization", "org-1").Return(records, nil)
	properties.On("CountActive", "org-1").Return(int64(1), nil)

	stats := newTestService(calls, properties).Stats("org-1")

	// 1/3 = 33.333...%, rounded to one decimal
	assert.Equal(t, 33.3, stats.TourRate)
}

func TestStats_TotalUsesCountNotPageLength(t *testing.T) {
	calls := &mockCallRecordRepo{}
	properties := &mockPropertyRepo{}

	// The count query is canonical even when the list returns fewer rows
	calls.On("CountByOrganization", "org-1").Return(int64(1500), nil)
	calls.On("ListByOrganization", "org-1").Return([]model.CallRecord{{ID: "a"}}, nil)
	properties.On("CountActive", "org-1").Return(int64(0), nil)

	stats := newTestService(calls, properties).Stats("org-1")

	assert.Equal(t, int64(1500), stats.TotalCalls)
}

func TestStats_QueryFailuresDegradeToZero(t *testing.T) {
	calls := &mockCallRecordRepo{}
	properties := &mockPropertyRepo{}

	calls.On("CountByOrganization", "org-1").Return(int64(0), errors.New("connection refused"))
	calls.On("ListByOrganization", "org-1").Return([]model.CallRecord{}, errors.New("connection refused"))
	properties.On("CountActive", "org-1").Return(int64(0), errors.New("connection refused"))

	stats := newTestService(calls, properties).Stats("org-1")

	assert.Equal(t, zeroStats(), stats)
}

func TestAverageDuration_IgnoresMissingAndZeroDurations(t *testing.T) {
	calls := []model.CallRecord{
		{DurationMs: ptrInt64(90000)},
		{DurationMs: ptrInt64(0)},
		{DurationMs: nil},
		{DurationMs: ptrInt64(30000)},
	}

	// (90000+30000)/2 = 60000ms = 1m 0s; zero and nil rows excluded
	assert.Equal(t, "1m 0s", averageDuration(calls))
}

func TestAverageDuration_TruncatesSeconds(t *testing.T) {
	calls := []model.CallRecord{
		{DurationMs: ptrInt64(95500)},
		{DurationMs: ptrInt64(95500)},
	}

	// 95500ms averages to 1m 35.5s, displayed truncated
	assert.Equal(t, "1m 35s", averageDuration(calls))
}

func TestRecentCalls_ResolvesPropertyNames(t *testing.T) {
	calls := &mockCallRecordRepo{}
	properties := &mockPropertyRepo{}

	calls.On("ListRecent", "org-1", 10).Return([]model.CallRecord{
		{ID: "c1", PropertyID: "p1"},
		{ID: "c2", PropertyID: "p2"},
		{ID: "c3", PropertyID: "p1"},
	}, nil)
	properties.On("NamesByIDs", []string{"p1", "p2"}).Return(map[string]string{
		"p1": "Maple Court",
	}, nil)

	result := newTestService(calls, properties).RecentCalls("org-1", 10)

	assert.Len(t, result, 3)
	assert.Equal(t, "Maple Court", result[0].PropertyName)
	assert.Equal(t, "Unknown Property", result[1].PropertyName)
	assert.Equal(t, "Maple Court", result[2].PropertyName)
	properties.AssertExpectations(t)
}

func TestRecentCalls_NameLookupFailureStillReturnsCalls(t *testing.T) {
	calls := &mockCallRecordRepo{}
	properties := &mockPropertyRepo{}

	calls.On("ListRecent", "org-1", 5).Return([]model.CallRecord{
		{ID: "c1", PropertyID: "p1"},
	}, nil)
	properties.On("NamesByIDs", []string{"p1"}).Return(map[string]string{}, errors.New("timeout"))

	result := newTestService(calls, properties).RecentCalls("org-1", 5)

	assert.Len(t, result, 1)
	assert.Empty(t, result[0].PropertyName)
}

func TestRecentCalls_EmptyOrganizationID(t *testing.T) {
	svc := newTestService(&mockCallRecordRepo{}, &mockPropertyRepo{})

	result := svc.RecentCalls("", 10)

	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestActivity_LeadTakesPrecedenceOverSuccessful(t *testing.T) {
	calls := &mockCallRecordRepo{}
	properties := &mockPropertyRepo{}

	tour := time.Now().Add(48 * time.Hour)
	calls.On("ListRecent", "org-1", 10).Return([]model.CallRecord{
		{ID: "c1", PropertyID: "p1", TourScheduledFor: ptrTime(tour), CallSuccessful: ptrBool(true)},
		{ID: "c2", PropertyID: "p1", CallSuccessful: ptrBool(true)},
		{ID: "c3", PropertyID: "p1"},
	}, nil)
	properties.On("NamesByIDs", []string{"p1"}).Return(map[string]string{
		"p1": "Maple Court",
	}, nil)

	items := newTestService(calls, properties).Activity("org-1", 10)

	assert.Len(t, items, 3)
	assert.Equal(t, "lead", items[0].Type)
	assert.Equal(t, "Lead generated for Maple Court", items[0].Message)
	assert.Equal(t, "call", items[1].Type)
	assert.Equal(t, "Successful call completed for Maple Court", items[1].Message)
	assert.Equal(t, "call", items[2].Type)
	assert.Equal(t, "Call completed for Maple Court", items[2].Message)
}

func TestActivity_UnknownPropertyUsesPlaceholder(t *testing.T) {
	calls := &mockCallRecordRepo{}
	properties := &mockPropertyRepo{}

	calls.On("ListRecent", "org-1", 10).Return([]model.CallRecord{
		{ID: "c1", PropertyID: "p-gone"},
	}, nil)
	properties.On("NamesByIDs", []string{"p-gone"}).Return(map[string]string{}, nil)

	items := newTestService(calls, properties).Activity("org-1", 10)

	assert.Len(t, items, 1)
	assert.Equal(t, "Call completed for property", items[0].Message)
}

func TestVolumeSeries_AlwaysCoversFullWindow(t *testing.T) {
	calls := &mockCallRecordRepo{}
	properties := &mockPropertyRepo{}

	now := time.Now().UTC()
	yesterday := now.AddDate(0, 0, -1)
	calls.On("ListInRange", "org-1", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return([]model.CallRecord{
			{ID: "c1", StartTimestamp: now},
			{ID: "c2", StartTimestamp: now, TourScheduledFor: ptrTime(now)},
			{ID: "c3", StartTimestamp: yesterday},
		}, nil)

	series := newTestService(calls, properties).VolumeSeries("org-1", 7)

	assert.Len(t, series, 8)
	for i := 1; i < len(series); i++ {
		assert.Greater(t, series[i].Date, series[i-1].Date, "dates must be increasing")
	}
	assert.Equal(t, now.Format("2006-01-02"), series[7].Date)
	assert.Equal(t, 2, series[7].Calls)
	assert.Equal(t, 1, series[7].Tours)
	assert.Equal(t, 1, series[6].Calls)
	assert.Equal(t, 0, series[6].Tours)
}

func TestVolumeSeries_EmptyOrganizationReturnsZeroedSeries(t *testing.T) {
	svc := newTestService(&mockCallRecordRepo{}, &mockPropertyRepo{})

	series := svc.VolumeSeries("", 30)

	assert.Len(t, series, 31)
	for _, point := range series {
		assert.Zero(t, point.Calls)
		assert.Zero(t, point.Tours)
		assert.NotEmpty(t, point.Date)
	}
}

func TestVolumeSeries_ClampsOversizedWindow(t *testing.T) {
	svc := newTestService(&mockCallRecordRepo{}, &mockPropertyRepo{})

	series := svc.VolumeSeries("", 2000000000)

	assert.Len(t, series, 366)
}

func TestVolumeSeries_QueryFailureReturnsZeroedSeries(t *testing.T) {
	calls := &mockCallRecordRepo{}
	properties := &mockPropertyRepo{}

	calls.On("ListInRange", "org-1", mock.Anything, mock.Anything).
		Return([]model.CallRecord{}, errors.New("timeout"))

	series := newTestService(calls, properties).VolumeSeries("org-1", 5)

	assert.Len(t, series, 6)
	for _, point := range series {
		assert.Zero(t, point.Calls)
	}
}

func TestPropertiesWithStats_EnrichesEachProperty(t *testing.T) {
	calls := &mockCallRecordRepo{}
	properties := &mockPropertyRepo{}

	tour := time.Now()
	properties.On("ListByOrganization", "org-1").Return([]model.Property{
		{ID: "p1", Name: "Maple Court"},
		{ID: "p2", Name: "Oak Ridge"},
	}, nil)
	calls.On("CountByProperty", "p1").Return(int64(5), nil)
	calls.On("ListByProperty", "p1").Return([]model.CallRecord{
		{ID: "c1", TourScheduledFor: ptrTime(tour), CallSuccessful: ptrBool(true)},
		{ID: "c2", CallSuccessful: ptrBool(true)},
	}, nil)
	calls.On("CountByProperty", "p2").Return(int64(0), nil)
	calls.On("ListByProperty", "p2").Return([]model.CallRecord{}, nil)

	stats := newTestService(calls, properties).PropertiesWithStats("org-1")

	assert.Len(t, stats, 2)
	byID := map[string]PropertyStats{}
	for _, s := range stats {
		byID[s.ID] = s
	}
	assert.Equal(t, int64(5), byID["p1"].CallCount)
	assert.Equal(t, int64(1), byID["p1"].LeadCount)
	assert.Equal(t, int64(2), byID["p1"].ConversionCount)
	assert.Equal(t, int64(0), byID["p2"].CallCount)
}

func TestPropertiesWithStats_PerPropertyFailureDegradesToZero(t *testing.T) {
	calls := &mockCallRecordRepo{}
	properties := &mockPropertyRepo{}

	properties.On("ListByOrganization", "org-1").Return([]model.Property{
		{ID: "p1", Name: "Maple Court"},
	}, nil)
	calls.On("CountByProperty", "p1").Return(int64(0), errors.New("timeout"))
	calls.On("ListByProperty", "p1").Return([]model.CallRecord{}, errors.New("timeout"))

	stats := newTestService(calls, properties).PropertiesWithStats("org-1")

	assert.Len(t, stats, 1)
	assert.Equal(t, "Maple Court", stats[0].Name)
	assert.Zero(t, stats[0].CallCount)
	assert.Zero(t, stats[0].LeadCount)
}

func TestCounts_GathersAllRanges(t *testing.T) {
	calls := &mockCallRecordRepo{}
	properties := &mockPropertyRepo{}

	calls.On("CountAll").Return(int64(100), nil)
	calls.On("CountByOrganization", "org-1").Return(int64(40), nil)
	calls.On("CountInRange", "org-1", mock.Anything, mock.Anything).Return(int64(7), nil)

	counts := newTestService(calls, properties).Counts("org-1")

	assert.Equal(t, int64(100), counts.TotalRecords)
	assert.Equal(t, int64(40), counts.OrganizationRecords)
	for _, key := range []string{"7days", "30days", "90days", "allTime"} {
		assert.Contains(t, counts.DateRangeRecords, key)
	}
}

func TestCounts_EmptyOrganizationOnlyCountsTotal(t *testing.T) {
	calls := &mockCallRecordRepo{}
	properties := &mockPropertyRepo{}

	calls.On("CountAll").Return(int64(100), nil)

	counts := newTestService(calls, properties).Counts("")

	assert.Equal(t, int64(100), counts.TotalRecords)
	assert.Zero(t, counts.OrganizationRecords)
	assert.Empty(t, counts.DateRangeRecords)
	calls.AssertNotCalled(t, "CountByOrganization", mock.Anything)
}
