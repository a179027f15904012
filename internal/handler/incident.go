package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/civdef/volunteer-portal/internal/access"
	"github.com/civdef/volunteer-portal/internal/model"
	"github.com/civdef/volunteer-portal/internal/queue"
	"github.com/civdef/volunteer-portal/internal/repository"
	"github.com/civdef/volunteer-portal/internal/workflow"
)

// IncidentHandler serves incident reporting and the incident lifecycle.
type IncidentHandler struct {
	Base
	Incidents  IncidentStore
	Volunteers VolunteerStore
	Refs       ReferenceStore
}

func NewIncidentHandler(b Base, s IncidentStore, v VolunteerStore, refs ReferenceStore) *IncidentHandler {
	return &IncidentHandler{Base: b, Incidents: s, Volunteers: v, Refs: refs}
}

type reportReq struct {
	Title       string         `json:"title" validate:"required,max=200"`
	Description string         `json:"description" validate:"max=5000"`
	Type        string         `json:"type" validate:"max=50"`
	Severity    model.Severity `json:"severity" validate:"required,severity"`
	District    string         `json:"district" validate:"required,max=100"`
	Location    string         `json:"location" validate:"max=255"`
	Latitude    *float64       `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64       `json:"longitude" validate:"omitempty,longitude"`
}

type incidentPatchReq struct {
	Status     *model.IncidentStatus `json:"status" validate:"omitempty,incident_status"`
	Severity   *model.Severity       `json:"severity" validate:"omitempty,severity"`
	AssignedTo []string              `json:"assignedTo" validate:"omitempty,max=100"`
}

func (h *IncidentHandler) list(c echo.Context, q repository.IncidentQuery) error {
	q.Status = model.IncidentStatus(c.QueryParam("status"))
	if q.Status != "" && !q.Status.Valid() {
		return h.fail(c, invalid("unknown status"))
	}
	q.Severity = model.Severity(c.QueryParam("severity"))
	if q.Severity != "" && !q.Severity.Valid() {
		return h.fail(c, invalid("unknown severity"))
	}
	q.ActiveOnly = c.QueryParam("active") == "true"
	if s := c.QueryParam("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return h.fail(c, invalid("since must be an RFC 3339 time"))
		}
		q.Since = t
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	incs, err := h.Incidents.List(ctx, q)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, incs)
}

// List returns incidents in the caller's district scope.
func (h *IncidentHandler) List(c echo.Context) error {
	return h.list(c, repository.IncidentQuery{Scope: repository.ScopeFor(caller(c))})
}

// Mine returns the incidents the caller reported, whatever their district.
func (h *IncidentHandler) Mine(c echo.Context) error {
	return h.list(c, repository.IncidentQuery{ReportedBy: caller(c).UserID})
}

// Get returns one incident if it is in scope or was reported by the caller.
func (h *IncidentHandler) Get(c echo.Context) error {
	p := caller(c)
	ctx, cancel := dbCtx(c)
	defer cancel()

	inc, err := h.Incidents.GetByID(ctx, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if !p.Sees(inc) && inc.ReportedBy != p.UserID {
		return h.fail(c, errHidden)
	}
	return c.JSON(http.StatusOK, inc)
}

// Create files a new incident report.  Any authenticated user may report.
func (h *IncidentHandler) Create(c echo.Context) error {
	var req reportReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	inc := model.Incident{
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Type:        strings.ToLower(strings.TrimSpace(req.Type)),
		Severity:    req.Severity,
		District:    strings.TrimSpace(req.District),
		Location:    strings.TrimSpace(req.Location),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
	if err := workflow.ReportIncident(&inc, caller(c), h.now()); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := knownDistrict(ctx, h.Refs, inc.District); err != nil {
		return h.fail(c, err)
	}
	if err := h.Incidents.Create(ctx, &inc); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, inc)
}

// Update applies responder, severity and status changes in that order, so
// one request can attach responders and start work.
func (h *IncidentHandler) Update(c echo.Context) error {
	p := caller(c)
	var req incidentPatchReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	if req.Status == nil && req.Severity == nil && req.AssignedTo == nil {
		return h.fail(c, invalid("nothing to update"))
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	inc, err := h.Incidents.GetByID(ctx, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if !p.Sees(inc) {
		return h.fail(c, errHidden)
	}
	from, fromSeverity := inc.Status, inc.Severity
	now := h.now()
	if req.AssignedTo != nil {
		if err := workflow.AttachResponders(&inc, p, req.AssignedTo, now); err != nil {
			return h.fail(c, err)
		}
		if err := h.checkResponders(ctx, p, req.AssignedTo); err != nil {
			return h.fail(c, err)
		}
	}
	if req.Severity != nil {
		if err := workflow.SetSeverity(&inc, p, *req.Severity, now); err != nil {
			return h.fail(c, err)
		}
	}
	// Attaching responders may already have moved the incident to the
	// requested status.
	if req.Status != nil && !(*req.Status == inc.Status && inc.Status != from) {
		if err := workflow.AdvanceIncident(&inc, p, *req.Status, now); err != nil {
			return h.fail(c, err)
		}
	}
	if err := h.Incidents.Save(ctx, inc, from); err != nil {
		return h.fail(c, err)
	}

	if inc.Status != from {
		h.emit(c, queue.Event{Type: queue.IncidentStatusChanged, EntityID: inc.ID, From: string(from),
			To: string(inc.Status), ActorID: p.UserID, District: inc.District, OccurredAt: now})
	}
	if inc.Severity != fromSeverity {
		h.emit(c, queue.Event{Type: queue.IncidentSeverityChanged, EntityID: inc.ID, From: string(fromSeverity),
			To: string(inc.Severity), ActorID: p.UserID, District: inc.District, OccurredAt: now})
	}
	return c.JSON(http.StatusOK, inc)
}

// checkResponders requires every responder to be an approved volunteer
// the caller can see.  Unknown and out-of-scope ids are reported alike.
func (h *IncidentHandler) checkResponders(ctx context.Context, p access.Principal, ids []string) error {
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		v, err := h.Volunteers.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && !p.Sees(v)) {
			return invalid(fmt.Sprintf("unknown responder %q", id))
		}
		if err != nil {
			return err
		}
		if v.Status != model.VolunteerApproved {
			return fmt.Errorf("%w: responder %s is %s", workflow.ErrStateConflict, id, v.Status)
		}
	}
	return nil
}
