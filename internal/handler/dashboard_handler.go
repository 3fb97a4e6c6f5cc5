package handler

import (
	"net/http"
	"strconv"

	"leasing-portal/internal/repository"
	"leasing-portal/internal/service"
	"leasing-portal/pkg/logger"
	"leasing-portal/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	defaultActivityLimit = 10
	defaultVolumeDays    = 30
)

// DashboardHandler serves the customer dashboard's aggregated views. Every
// endpoint resolves the caller's organization from their profile; a user
// without a profile sees zeroed/empty data, never an error.
type DashboardHandler struct {
	svc      *service.DashboardService
	profiles repository.ProfileRepository
}

// NewDashboardHandler creates a DashboardHandler
func NewDashboardHandler(svc *service.DashboardService, profiles repository.ProfileRepository) *DashboardHandler {
	return &DashboardHandler{svc: svc, profiles: profiles}
}

// organizationID resolves the caller to their organization id, degrading
// to "" on any failure
func (h *DashboardHandler) organizationID(c echo.Context) string {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return ""
	}

	orgID, err := h.profiles.OrganizationIDForUser(userID)
	if err != nil {
		log.Error("Failed to resolve organization for user", zap.String("user_id", userID), zap.Error(err))
		return ""
	}
	return orgID
}

// GetStats returns the summary statistics cards
func (h *DashboardHandler) GetStats(c echo.Context) error {
	prometheus.RecordDashboardQuery("stats")
	return c.JSON(http.StatusOK, h.svc.Stats(h.organizationID(c)))
}

// GetActivity returns the recent-activity feed
func (h *DashboardHandler) GetActivity(c echo.Context) error {
	prometheus.RecordDashboardQuery("activity")
	limit := queryInt(c, "limit", defaultActivityLimit)
	return c.JSON(http.StatusOK, h.svc.Activity(h.organizationID(c), limit))
}

// GetRecentCalls returns the most recent call records with property names
func (h *DashboardHandler) GetRecentCalls(c echo.Context) error {
	prometheus.RecordDashboardQuery("recent_calls")
	limit := queryInt(c, "limit", defaultActivityLimit)
	return c.JSON(http.StatusOK, h.svc.RecentCalls(h.organizationID(c), limit))
}

// GetProperties returns the organization's properties with call statistics
func (h *DashboardHandler) GetProperties(c echo.Context) error {
	prometheus.RecordDashboardQuery("properties")
	return c.JSON(http.StatusOK, h.svc.PropertiesWithStats(h.organizationID(c)))
}

// GetCallVolume returns per-day call and tour counts for the chart
func (h *DashboardHandler) GetCallVolume(c echo.Context) error {
	prometheus.RecordDashboardQuery("volume")
	days := queryInt(c, "days", defaultVolumeDays)
	return c.JSON(http.StatusOK, h.svc.VolumeSeries(h.organizationID(c), days))
}

func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return def
	}
	return value
}
