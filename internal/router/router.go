// Package router wires handlers and middleware onto Echo.  Routes live
// under /api; the liveness probe is /healthz.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civdef/volunteer-portal/internal/config"
	"github.com/civdef/volunteer-portal/internal/handler"
	"github.com/civdef/volunteer-portal/internal/middleware"
	"github.com/civdef/volunteer-portal/internal/validation"
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Auth        *handler.AuthHandler
	Volunteers  *handler.VolunteerHandler
	Incidents   *handler.IncidentHandler
	Inventory   *handler.InventoryHandler
	Training    *handler.TrainingHandler
	Assignments *handler.AssignmentHandler
	Dashboard   *handler.DashboardHandler
	Users       *handler.UserHandler
	Reference   *handler.ReferenceHandler
	CMS         *handler.CMSHandler
}

// Options carries the middleware settings.  A nil Redis client disables
// the response cache and the rate limiter.
type Options struct {
	JWTSecret string
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Log       *zap.Logger
}

// New builds the Echo instance with every route registered.
func New(h Handlers, o Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(o.Log))

	RegisterRoutes(e)
	api := e.Group("/api")
	RegisterAuth(api, h.Auth, o)
	RegisterPublic(api, h, o)
	RegisterOperations(api.Group("", middleware.JWTAuth(o.JWTSecret)), h)
	RegisterAdmin(api.Group("", middleware.JWTAuth(o.JWTSecret)), h, o)
	return e
}

// RegisterRoutes registers the routes that sit outside /api.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers signup, login and session routes.  Signup and
// login share one token bucket per client.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, o Options) {
	limit := middleware.NewTokenBucket(o.RateLimit, o.Redis, o.Log)
	g := api.Group("/auth")
	g.POST("/signup", a.Signup, limit)
	g.POST("/login", a.Login, limit)
	g.POST("/refresh", a.Refresh)
	g.GET("/capabilities", a.Capabilities)

	authed := g.Group("", middleware.JWTAuth(o.JWTSecret))
	authed.POST("/logout", a.Logout)
	authed.GET("/me", a.Me)
}
