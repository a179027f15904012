package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civdef/volunteer-portal/internal/access"
)

// CapabilityCheck selects one capability from a resolved set.
type CapabilityCheck func(access.Capabilities) bool

var (
	CanApproveVolunteers CapabilityCheck = func(c access.Capabilities) bool { return c.CanApproveVolunteers }
	CanManageIncidents   CapabilityCheck = func(c access.Capabilities) bool { return c.CanManageIncidents }
	CanManageInventory   CapabilityCheck = func(c access.Capabilities) bool { return c.CanManageInventory }
	CanManageUsers       CapabilityCheck = func(c access.Capabilities) bool { return c.CanManageUsers }
	CanManageCMS         CapabilityCheck = func(c access.Capabilities) bool { return c.CanManageCMS }
)

// RequireCapability aborts with 403 unless the caller's role grants the
// capability selected by check.  It must run after JWTAuth.
func RequireCapability(check CapabilityCheck) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := CurrentPrincipal(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			if !check(p.Caps()) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
