package router

import (
	"github.com/labstack/echo/v4"

	"github.com/civdef/volunteer-portal/internal/middleware"
)

// RegisterOperations registers the authenticated operational routes.  The
// group must already run JWTAuth.  Capability middleware rejects callers
// whose role lacks the capability; record scope is checked by handlers.
func RegisterOperations(g *echo.Group, h Handlers) {
	approve := middleware.RequireCapability(middleware.CanApproveVolunteers)
	incidents := middleware.RequireCapability(middleware.CanManageIncidents)
	inventory := middleware.RequireCapability(middleware.CanManageInventory)

	g.GET("/dashboard", h.Dashboard.Get)

	v := h.Volunteers
	g.POST("/volunteers", v.Register)
	g.GET("/volunteers/me", v.Me)
	g.PATCH("/volunteers/me", v.UpdateMe)
	g.GET("/volunteers", v.List, approve)
	g.GET("/volunteers/:id", v.Get)
	g.PATCH("/volunteers/:id/status", v.SetStatus, approve)

	i := h.Incidents
	g.GET("/incidents", i.List)
	g.GET("/incidents/mine", i.Mine)
	g.GET("/incidents/:id", i.Get)
	g.POST("/incidents", i.Create)
	g.PATCH("/incidents/:id", i.Update, incidents)

	inv := h.Inventory
	g.GET("/inventory", inv.List, inventory)
	g.GET("/inventory/:id", inv.Get, inventory)
	g.POST("/inventory", inv.Create, inventory)
	g.PATCH("/inventory/:id", inv.Update, inventory)

	t := h.Training
	g.GET("/training", t.List)
	g.GET("/training/:id", t.Get)
	g.POST("/training", t.Create, incidents)
	g.POST("/training/series", t.CreateSeries, incidents)
	g.PATCH("/training/:id/status", t.SetStatus, incidents)

	a := h.Assignments
	g.POST("/assignments", a.Create, incidents)
	g.GET("/my-assignments", a.Mine)
	g.PATCH("/assignments/:id/status", a.SetStatus)
}
