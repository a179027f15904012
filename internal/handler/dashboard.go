package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civdef/volunteer-portal/internal/access"
	"github.com/civdef/volunteer-portal/internal/dashboard"
	"github.com/civdef/volunteer-portal/internal/model"
	"github.com/civdef/volunteer-portal/internal/repository"
)

// DashboardHandler builds the role-specific dashboard payload.  Figures
// are computed from scoped snapshots on every request.
type DashboardHandler struct {
	Base
	Volunteers  VolunteerStore
	Incidents   IncidentStore
	Items       InventoryStore
	Assignments AssignmentStore
}

func NewDashboardHandler(b Base, v VolunteerStore, i IncidentStore, it InventoryStore, a AssignmentStore) *DashboardHandler {
	return &DashboardHandler{Base: b, Volunteers: v, Incidents: i, Items: it, Assignments: a}
}

type dashboardResp struct {
	Role         model.Role                 `json:"role"`
	District     string                     `json:"district,omitempty"`
	Capabilities access.Capabilities        `json:"capabilities"`
	Views        []access.View              `json:"views"`
	Profile      *model.Volunteer           `json:"profile,omitempty"`
	Assignments  *dashboard.AssignmentStats `json:"assignments,omitempty"`
	Volunteers   *dashboard.VolunteerStats  `json:"volunteers,omitempty"`
	Incidents    *dashboard.IncidentStats   `json:"incidents,omitempty"`
	Inventory    *dashboard.InventoryStats  `json:"inventory,omitempty"`
}

// Get returns the views enabled for the caller's role and the summaries
// those views need.  Volunteer-scope callers get their own profile and
// assignments; admins get figures over their district scope.
func (h *DashboardHandler) Get(c echo.Context) error {
	p := caller(c)
	caps := p.Caps()
	resp := dashboardResp{Role: p.Role, District: p.District, Capabilities: caps, Views: access.Views(caps)}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if caps.Scope == access.ScopeVolunteer {
		v, err := h.Volunteers.GetByUserID(ctx, p.UserID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			st := dashboard.Assignments(nil)
			resp.Assignments = &st
		case err != nil:
			return h.fail(c, err)
		default:
			as, err := h.Assignments.ListByVolunteer(ctx, v.ID)
			if err != nil {
				return h.fail(c, err)
			}
			st := dashboard.Assignments(as)
			resp.Profile, resp.Assignments = &v, &st
		}
		return c.JSON(http.StatusOK, resp)
	}

	scope := repository.ScopeFor(p)
	if caps.CanApproveVolunteers || caps.CanViewReports {
		vs, err := h.Volunteers.List(ctx, repository.VolunteerQuery{Scope: scope})
		if err != nil {
			return h.fail(c, err)
		}
		st := dashboard.Volunteers(vs)
		resp.Volunteers = &st
	}
	if caps.CanManageIncidents || caps.CanViewReports {
		incs, err := h.Incidents.List(ctx, repository.IncidentQuery{Scope: scope})
		if err != nil {
			return h.fail(c, err)
		}
		st := dashboard.Incidents(incs, h.now())
		resp.Incidents = &st
	}
	if caps.CanManageInventory {
		items, err := h.Items.List(ctx, repository.InventoryQuery{Scope: scope})
		if err != nil {
			return h.fail(c, err)
		}
		st := dashboard.Inventory(items)
		resp.Inventory = &st
	}
	return c.JSON(http.StatusOK, resp)
}
