package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/civdef/volunteer-portal/internal/model"
	"github.com/civdef/volunteer-portal/internal/queue"
	"github.com/civdef/volunteer-portal/internal/repository"
	"github.com/civdef/volunteer-portal/internal/workflow"
)

// AssignmentHandler links approved volunteers to incidents and training
// sessions and lets volunteers work through their assignments.
type AssignmentHandler struct {
	Base
	Assignments AssignmentStore
	Volunteers  VolunteerStore
	Incidents   IncidentStore
	Sessions    TrainingStore
}

func NewAssignmentHandler(b Base, a AssignmentStore, v VolunteerStore, i IncidentStore, t TrainingStore) *AssignmentHandler {
	return &AssignmentHandler{Base: b, Assignments: a, Volunteers: v, Incidents: i, Sessions: t}
}

type assignReq struct {
	VolunteerID       string  `json:"volunteerId" validate:"required"`
	IncidentID        *string `json:"incidentId"`
	TrainingSessionID *string `json:"trainingSessionId"`
	Notes             string  `json:"notes" validate:"max=2000"`
}

type assignmentStatusReq struct {
	Status model.AssignmentStatus `json:"status" validate:"required,assignment_status"`
}

// Create assigns a volunteer.  The volunteer and incident must be inside
// the caller's scope; a training target must have a free place.
func (h *AssignmentHandler) Create(c echo.Context) error {
	p := caller(c)
	var req assignReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	v, err := h.Volunteers.GetByID(ctx, req.VolunteerID)
	if err != nil {
		return h.fail(c, err)
	}
	if !p.Sees(v) {
		return h.fail(c, errHidden)
	}
	a := model.Assignment{
		IncidentID:        trimmed(req.IncidentID),
		TrainingSessionID: trimmed(req.TrainingSessionID),
		Notes:             strings.TrimSpace(req.Notes),
	}
	if a.IncidentID != nil {
		inc, err := h.Incidents.GetByID(ctx, *a.IncidentID)
		if err != nil {
			return h.fail(c, err)
		}
		if !p.Sees(inc) {
			return h.fail(c, errHidden)
		}
		if !inc.IsActive() {
			return h.fail(c, fmt.Errorf("%w: incident is %s", workflow.ErrStateConflict, inc.Status))
		}
	}
	if a.TrainingSessionID != nil {
		if _, err := h.Sessions.GetByID(ctx, *a.TrainingSessionID); err != nil {
			return h.fail(c, err)
		}
	}
	if err := workflow.NewAssignment(&a, v, p, h.now()); err != nil {
		return h.fail(c, err)
	}
	if err := h.Assignments.Create(ctx, &a, workflow.CheckCapacity); err != nil {
		return h.fail(c, err)
	}
	h.emit(c, queue.Event{Type: queue.AssignmentCreated, EntityID: a.ID, To: string(a.Status),
		ActorID: p.UserID, District: v.District, OccurredAt: a.AssignedAt})
	return c.JSON(http.StatusCreated, a)
}

// Mine returns the caller's assignments.  Users without a volunteer
// profile have none.
func (h *AssignmentHandler) Mine(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	v, err := h.Volunteers.GetByUserID(ctx, caller(c).UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusOK, []model.Assignment{})
	}
	if err != nil {
		return h.fail(c, err)
	}
	as, err := h.Assignments.ListByVolunteer(ctx, v.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, as)
}

// SetStatus moves an assignment along its lifecycle.  Only the assigned
// volunteer may do so.
func (h *AssignmentHandler) SetStatus(c echo.Context) error {
	p := caller(c)
	var req assignmentStatusReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	a, err := h.Assignments.GetByID(ctx, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	assignee, err := h.Volunteers.GetByID(ctx, a.VolunteerID)
	if err != nil {
		return h.fail(c, err)
	}
	from := a.Status
	if err := workflow.AdvanceAssignment(&a, assignee, p, req.Status, h.now()); err != nil {
		return h.fail(c, err)
	}
	if err := h.Assignments.SaveStatus(ctx, a, from); err != nil {
		return h.fail(c, err)
	}
	h.emit(c, queue.Event{Type: queue.AssignmentStatusChanged, EntityID: a.ID, From: string(from),
		To: string(a.Status), ActorID: p.UserID, District: assignee.District, OccurredAt: a.UpdatedAt})
	return c.JSON(http.StatusOK, a)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
