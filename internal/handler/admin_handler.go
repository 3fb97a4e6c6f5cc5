package handler

import (
	"errors"
	"net/http"

	"leasing-portal/internal/middleware"
	"leasing-portal/internal/service"
	"leasing-portal/pkg/logger"
	"leasing-portal/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminHandler serves the admin panel's CRUD endpoints. Routes are mounted
// behind middleware.RequireAdmin; individual screens are additionally
// gated by the caller's capability flags.
type AdminHandler struct {
	svc        *service.AdminService
	dashboards *service.DashboardService
}

// NewAdminHandler creates an AdminHandler
func NewAdminHandler(svc *service.AdminService, dashboards *service.DashboardService) *AdminHandler {
	return &AdminHandler{svc: svc, dashboards: dashboards}
}

// adminError maps service failures to the success/error envelope.
// Validation failures were rejected before any write and get a 400.
func adminError(c echo.Context, err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"error":   verr.Message,
			"field":   verr.Field,
		})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func forbidden(c echo.Context, capability string) error {
	logger.FromContext(c).Warn("Admin capability denied", zap.String("capability", capability))
	prometheus.RecordAuthError("capability_denied")
	return c.JSON(http.StatusForbidden, echo.Map{
		"success": false,
		"error":   "permission denied",
	})
}

// ORGANIZATIONS

func (h *AdminHandler) ListOrganizations(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("organization", "list")

	orgs, err := h.svc.ListOrganizations()
	if err != nil {
		log.Error("Failed to list organizations", zap.Error(err))
		return adminError(c, err)
	}

	orgs = service.FilterOrganizations(orgs, c.QueryParam("q"))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": orgs})
}

func (h *AdminHandler) CreateOrganization(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("organization", "create")

	if !middleware.AdminPermissions(c).CanManageOrganizations {
		return forbidden(c, "can_manage_organizations")
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}

	org, err := h.svc.CreateOrganization(req.Name)
	if err != nil {
		log.Error("Failed to create organization", zap.Error(err))
		return adminError(c, err)
	}

	log.Info("Organization created", zap.String("id", org.ID), zap.String("name", org.Name))
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": org})
}

func (h *AdminHandler) UpdateOrganization(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("organization", "update")

	if !middleware.AdminPermissions(c).CanManageOrganizations {
		return forbidden(c, "can_manage_organizations")
	}

	var req struct {
		Name     string `json:"name"`
		IsActive *bool  `json:"is_active,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}

	if err := h.svc.UpdateOrganization(c.Param("id"), req.Name, req.IsActive); err != nil {
		log.Error("Failed to update organization", zap.String("id", c.Param("id")), zap.Error(err))
		return adminError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *AdminHandler) DeleteOrganization(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("organization", "delete")

	if !middleware.AdminPermissions(c).CanManageOrganizations {
		return forbidden(c, "can_manage_organizations")
	}

	if err := h.svc.DeleteOrganization(c.Param("id")); err != nil {
		log.Error("Failed to delete organization", zap.String("id", c.Param("id")), zap.Error(err))
		return adminError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// PROPERTIES

func (h *AdminHandler) ListProperties(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("property", "list")

	properties, err := h.svc.ListProperties(c.QueryParam("organization_id"))
	if err != nil {
		log.Error("Failed to list properties", zap.Error(err))
		return adminError(c, err)
	}

	// Search runs over the fetched rows; the organization filter already
	// applied server-side is a no-op here
	properties = service.FilterProperties(properties, c.QueryParam("q"), c.QueryParam("organization_id"))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": properties})
}

func (h *AdminHandler) CreateProperty(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("property", "create")

	if !middleware.AdminPermissions(c).CanManageProperties {
		return forbidden(c, "can_manage_properties")
	}

	var req struct {
		OrganizationID string  `json:"organization_id"`
		Name           string  `json:"name"`
		RetellAgentID  *string `json:"retell_agent_id,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}

	property, err := h.svc.CreateProperty(req.OrganizationID, req.Name, req.RetellAgentID)
	if err != nil {
		log.Error("Failed to create property", zap.Error(err))
		return adminError(c, err)
	}

	log.Info("Property created", zap.String("id", property.ID), zap.String("name", property.Name))
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": property})
}

func (h *AdminHandler) UpdateProperty(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("property", "update")

	if !middleware.AdminPermissions(c).CanManageProperties {
		return forbidden(c, "can_manage_properties")
	}

	var req struct {
		Name          string  `json:"name"`
		RetellAgentID *string `json:"retell_agent_id,omitempty"`
		IsActive      *bool   `json:"is_active,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}

	if err := h.svc.UpdateProperty(c.Param("id"), req.Name, req.RetellAgentID, req.IsActive); err != nil {
		log.Error("Failed to update property", zap.String("id", c.Param("id")), zap.Error(err))
		return adminError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *AdminHandler) DeleteProperty(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("property", "delete")

	if !middleware.AdminPermissions(c).CanManageProperties {
		return forbidden(c, "can_manage_properties")
	}

	if err := h.svc.DeleteProperty(c.Param("id")); err != nil {
		log.Error("Failed to delete property", zap.String("id", c.Param("id")), zap.Error(err))
		return adminError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// USER PROFILES

func (h *AdminHandler) ListUserProfiles(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("user_profile", "list")

	profiles, err := h.svc.ListUserProfiles(c.QueryParam("organization_id"))
	if err != nil {
		log.Error("Failed to list user profiles", zap.Error(err))
		return adminError(c, err)
	}

	profiles = service.FilterUserProfiles(profiles, c.QueryParam("q"), c.QueryParam("organization_id"))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profiles})
}

func (h *AdminHandler) CreateUserProfile(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("user_profile", "create")

	if !middleware.AdminPermissions(c).CanManageUsers {
		return forbidden(c, "can_manage_users")
	}

	var req struct {
		UserID         string `json:"user_id"`
		OrganizationID string `json:"organization_id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}

	profile, err := h.svc.CreateUserProfile(req.UserID, req.OrganizationID, req.FirstName, req.LastName)
	if err != nil {
		log.Error("Failed to create user profile", zap.Error(err))
		return adminError(c, err)
	}

	log.Info("User profile created", zap.String("id", profile.ID), zap.String("user_id", profile.UserID))
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": profile})
}

func (h *AdminHandler) UpdateUserProfile(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("user_profile", "update")

	if !middleware.AdminPermissions(c).CanManageUsers {
		return forbidden(c, "can_manage_users")
	}

	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		IsActive  *bool  `json:"is_active,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}

	if err := h.svc.UpdateUserProfile(c.Param("id"), req.FirstName, req.LastName, req.IsActive); err != nil {
		log.Error("Failed to update user profile", zap.String("id", c.Param("id")), zap.Error(err))
		return adminError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *AdminHandler) DeleteUserProfile(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("user_profile", "delete")

	if !middleware.AdminPermissions(c).CanManageUsers {
		return forbidden(c, "can_manage_users")
	}

	if err := h.svc.DeleteUserProfile(c.Param("id")); err != nil {
		log.Error("Failed to delete user profile", zap.String("id", c.Param("id")), zap.Error(err))
		return adminError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ADMIN USERS

func (h *AdminHandler) ListAdminUsers(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("admin_user", "list")

	admins, err := h.svc.ListAdminUsers()
	if err != nil {
		log.Error("Failed to list admin users", zap.Error(err))
		return adminError(c, err)
	}

	admins = service.FilterAdminUsers(admins, c.QueryParam("q"), c.QueryParam("organization_id"))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": admins})
}

func (h *AdminHandler) CreateAdminUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("admin_user", "create")

	if !middleware.AdminPermissions(c).CanManageUsers {
		return forbidden(c, "can_manage_users")
	}

	var req struct {
		UserID         string                    `json:"user_id"`
		OrganizationID string                    `json:"organization_id"`
		AdminLevel     string                    `json:"admin_level"`
		Capabilities   service.AdminCapabilities `json:"capabilities"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}

	grantedBy, _ := c.Get("user_id").(string)
	admin, err := h.svc.CreateAdminUser(req.UserID, req.OrganizationID, req.AdminLevel, req.Capabilities, grantedBy)
	if err != nil {
		log.Error("Failed to create admin user", zap.Error(err))
		return adminError(c, err)
	}

	log.Info("Admin user created", zap.String("id", admin.ID), zap.String("user_id", admin.UserID))
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": admin})
}

func (h *AdminHandler) UpdateAdminUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("admin_user", "update")

	if !middleware.AdminPermissions(c).CanManageUsers {
		return forbidden(c, "can_manage_users")
	}

	var req struct {
		AdminLevel   string                    `json:"admin_level"`
		Capabilities service.AdminCapabilities `json:"capabilities"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}

	if err := h.svc.UpdateAdminUser(c.Param("id"), req.AdminLevel, req.Capabilities); err != nil {
		log.Error("Failed to update admin user", zap.String("id", c.Param("id")), zap.Error(err))
		return adminError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *AdminHandler) DeleteAdminUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("admin_user", "delete")

	if !middleware.AdminPermissions(c).CanManageUsers {
		return forbidden(c, "can_manage_users")
	}

	if err := h.svc.DeleteAdminUser(c.Param("id")); err != nil {
		log.Error("Failed to delete admin user", zap.String("id", c.Param("id")), zap.Error(err))
		return adminError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DIAGNOSTICS

// CallCounts exposes raw call-record counts over stock date ranges.
// Requires the view-all capability.
func (h *AdminHandler) CallCounts(c echo.Context) error {
	prometheus.RecordAdminOperation("call_record", "counts")

	if !middleware.AdminPermissions(c).CanViewAllData {
		return forbidden(c, "can_view_all_data")
	}

	orgID := c.QueryParam("organization_id")
	if orgID == "" {
		orgID = middleware.AdminPermissions(c).OrganizationID
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": h.dashboards.Counts(orgID)})
}
