package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/civdef/volunteer-portal/internal/access"
)

const principalKey = "principal"

func setPrincipal(c echo.Context, p access.Principal) { c.Set(principalKey, p) }

// WithPrincipal stores p on c.  Tests use it to stand in for JWTAuth.
func WithPrincipal(c echo.Context, p access.Principal) { setPrincipal(c, p) }

// CurrentPrincipal returns the authenticated caller stored by JWTAuth.
func CurrentPrincipal(c echo.Context) (access.Principal, bool) {
	p, ok := c.Get(principalKey).(access.Principal)
	return p, ok && p.UserID != ""
}

// userID returns the caller's id, or "anon" for unauthenticated requests.
func userID(c echo.Context) string {
	if p, ok := CurrentPrincipal(c); ok {
		return p.UserID
	}
	return "anon"
}
