package router

import (
	"github.com/labstack/echo/v4"

	"github.com/civdef/volunteer-portal/internal/middleware"
)

// RegisterPublic registers the unauthenticated reads.  They are served
// through the Redis response cache; nothing user-specific is cached.
func RegisterPublic(api *echo.Group, h Handlers, o Options) {
	cached := api.Group("", middleware.NewRedisCache(o.Cache, o.Redis))

	cached.GET("/districts", h.Reference.Districts)
	cached.GET("/departments", h.Reference.Departments)

	cached.GET("/cms/content", h.CMS.ListBlocks)
	cached.GET("/cms/content/:key", h.CMS.GetBlock)
	cached.GET("/cms/banners", h.CMS.ActiveBanners)
}
