package router

import (
	"github.com/labstack/echo/v4"

	"github.com/civdef/volunteer-portal/internal/middleware"
)

// RegisterAdmin registers user management and CMS editing.  Successful
// CMS writes purge the response cache so public reads see them at once.
func RegisterAdmin(g *echo.Group, h Handlers, o Options) {
	users := g.Group("/users", middleware.RequireCapability(middleware.CanManageUsers))
	users.GET("", h.Users.List)
	users.PATCH("/:id/role", h.Users.SetRole)

	cms := g.Group("/cms",
		middleware.RequireCapability(middleware.CanManageCMS),
		middleware.PurgeOnWrite(o.Cache, o.Redis, o.Log))
	cms.PUT("/content/:key", h.CMS.PutBlock)
	cms.GET("/banners/all", h.CMS.AllBanners)
	cms.POST("/banners", h.CMS.CreateBanner)
	cms.PATCH("/banners/:id", h.CMS.UpdateBanner)
}
