package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/civdef/volunteer-portal/internal/model"
	"github.com/civdef/volunteer-portal/internal/queue"
	"github.com/civdef/volunteer-portal/internal/repository"
	"github.com/civdef/volunteer-portal/internal/workflow"
)

// VolunteerHandler serves volunteer registration, profiles and the
// approval workflow.
type VolunteerHandler struct {
	Base
	Volunteers VolunteerStore
	Refs       ReferenceStore
}

func NewVolunteerHandler(b Base, v VolunteerStore, refs ReferenceStore) *VolunteerHandler {
	return &VolunteerHandler{Base: b, Volunteers: v, Refs: refs}
}

type registerReq struct {
	Name      string   `json:"name" validate:"required,max=120"`
	Phone     string   `json:"phone" validate:"required,max=32"`
	Email     string   `json:"email" validate:"required,email,max=190"`
	District  string   `json:"district" validate:"required,max=100"`
	Address   string   `json:"address" validate:"max=500"`
	Skills    []string `json:"skills" validate:"max=50,dive,max=100"`
	Documents []string `json:"documents" validate:"max=20,dive,max=500"`
}

type profileReq struct {
	Name      *string  `json:"name" validate:"omitempty,max=120"`
	Phone     *string  `json:"phone" validate:"omitempty,max=32"`
	Address   *string  `json:"address" validate:"omitempty,max=500"`
	Skills    []string `json:"skills" validate:"omitempty,max=50,dive,max=100"`
	Documents []string `json:"documents" validate:"omitempty,max=20,dive,max=500"`
}

type decisionReq struct {
	Status          model.VolunteerStatus `json:"status" validate:"required,volunteer_status"`
	RejectionReason string                `json:"rejectionReason" validate:"max=1000"`
}

// List returns the volunteers visible to the caller, optionally filtered
// by status and a free-text search.
func (h *VolunteerHandler) List(c echo.Context) error {
	p := caller(c)
	status := model.VolunteerStatus(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return h.fail(c, invalid("unknown status"))
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	vs, err := h.Volunteers.List(ctx, repository.VolunteerQuery{
		Scope:  repository.ScopeFor(p),
		Status: status,
		Search: c.QueryParam("search"),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, vs)
}

// Get returns one profile.  Profiles outside the caller's scope are 404
// unless they belong to the caller.
func (h *VolunteerHandler) Get(c echo.Context) error {
	p := caller(c)
	ctx, cancel := dbCtx(c)
	defer cancel()

	v, err := h.Volunteers.GetByID(ctx, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if !p.Sees(v) && v.UserID != p.UserID {
		return h.fail(c, errHidden)
	}
	return c.JSON(http.StatusOK, v)
}

// Register creates the caller's own profile in the pending state.
func (h *VolunteerHandler) Register(c echo.Context) error {
	p := caller(c)
	var req registerReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	district := strings.TrimSpace(req.District)
	if err := knownDistrict(ctx, h.Refs, district); err != nil {
		return h.fail(c, err)
	}
	now := h.now()
	v := model.Volunteer{
		UserID:    p.UserID,
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     normEmail(req.Email),
		District:  district,
		Address:   strings.TrimSpace(req.Address),
		Skills:    cleanList(req.Skills),
		Documents: cleanList(req.Documents),
		Status:    model.VolunteerPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Volunteers.Create(ctx, &v); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "volunteer profile already exists"})
		}
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// Me returns the caller's own profile.
func (h *VolunteerHandler) Me(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	v, err := h.Volunteers.GetByUserID(ctx, caller(c).UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// UpdateMe edits the caller's own profile.  District and status are not
// editable here.
func (h *VolunteerHandler) UpdateMe(c echo.Context) error {
	var req profileReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	v, err := h.Volunteers.GetByUserID(ctx, caller(c).UserID)
	if err != nil {
		return h.fail(c, err)
	}
	if req.Name != nil {
		if v.Name = strings.TrimSpace(*req.Name); v.Name == "" {
			return h.fail(c, invalid("name cannot be blank"))
		}
	}
	if req.Phone != nil {
		if v.Phone = strings.TrimSpace(*req.Phone); v.Phone == "" {
			return h.fail(c, invalid("phone cannot be blank"))
		}
	}
	if req.Address != nil {
		v.Address = strings.TrimSpace(*req.Address)
	}
	if req.Skills != nil {
		v.Skills = cleanList(req.Skills)
	}
	if req.Documents != nil {
		v.Documents = cleanList(req.Documents)
	}
	if err := h.Volunteers.UpdateProfile(ctx, &v); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// SetStatus approves or rejects a pending volunteer.
func (h *VolunteerHandler) SetStatus(c echo.Context) error {
	p := caller(c)
	var req decisionReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	v, err := h.Volunteers.GetByID(ctx, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if !p.Sees(v) {
		return h.fail(c, errHidden)
	}
	from := v.Status
	if err := workflow.DecideVolunteer(&v, p, req.Status, req.RejectionReason, h.now()); err != nil {
		return h.fail(c, err)
	}
	if err := h.Volunteers.SaveDecision(ctx, v, from); err != nil {
		return h.fail(c, err)
	}
	h.emit(c, queue.Event{
		Type:       queue.VolunteerStatusChanged,
		EntityID:   v.ID,
		From:       string(from),
		To:         string(v.Status),
		ActorID:    p.UserID,
		District:   v.District,
		Reason:     req.RejectionReason,
		OccurredAt: v.UpdatedAt,
	})
	return c.JSON(http.StatusOK, v)
}

// cleanList trims entries and drops blanks and duplicates, keeping order.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
