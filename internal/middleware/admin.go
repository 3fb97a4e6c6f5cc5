package middleware

import (
	"net/http"

	"leasing-portal/internal/service"
	"leasing-portal/pkg/logger"
	"leasing-portal/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequireAdmin gates admin panel routes behind an active admin grant and
// stores the resolved permissions for handlers to consult
func RequireAdmin(admins *service.AdminService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			userID, ok := c.Get("user_id").(string)
			if !ok || userID == "" {
				log.Error("Missing user id in context for admin route")
				prometheus.RecordAuthError("missing_user_context")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			perms, err := admins.GetAdminPermissions(userID)
			if err != nil {
				log.Error("Failed to resolve admin permissions", zap.String("user_id", userID), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check admin permissions"})
			}
			if perms == nil {
				log.Warn("Non-admin user attempted admin route", zap.String("user_id", userID))
				prometheus.RecordAuthError("admin_access_denied")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
			}

			c.Set("admin_permissions", perms)
			return next(c)
		}
	}
}

// AdminPermissions retrieves the permissions stored by RequireAdmin
func AdminPermissions(c echo.Context) *service.AdminPermissions {
	perms, _ := c.Get("admin_permissions").(*service.AdminPermissions)
	return perms
}
