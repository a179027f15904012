package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/civdef/volunteer-portal/internal/model"
	"github.com/civdef/volunteer-portal/internal/queue"
	"github.com/civdef/volunteer-portal/internal/repository"
	"github.com/civdef/volunteer-portal/internal/workflow"
)

// TrainingHandler serves the training calendar.  Every authenticated user
// can read it; incident managers schedule sessions.
type TrainingHandler struct {
	Base
	Sessions TrainingStore
}

func NewTrainingHandler(b Base, s TrainingStore) *TrainingHandler {
	return &TrainingHandler{Base: b, Sessions: s}
}

type sessionFields struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Instructor  string `json:"instructor" validate:"required,max=120"`
	Location    string `json:"location" validate:"max=255"`
	District    string `json:"district" validate:"max=100"`
	Capacity    int    `json:"capacity" validate:"required,min=1,max=10000"`
}

type sessionReq struct {
	sessionFields
	StartsAt time.Time `json:"startsAt" validate:"required"`
	EndsAt   time.Time `json:"endsAt" validate:"required,gtfield=StartsAt"`
}

type seriesReq struct {
	sessionFields
	StartsAt        time.Time `json:"startsAt" validate:"required"`
	RRule           string    `json:"rrule" validate:"required,rrule"`
	DurationMinutes int       `json:"durationMinutes" validate:"required,min=1,max=1440"`
}

type trainingStatusReq struct {
	Status model.TrainingStatus `json:"status" validate:"required,training_status"`
}

func (f sessionFields) session(start, end time.Time) model.TrainingSession {
	return model.TrainingSession{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Instructor:  strings.TrimSpace(f.Instructor),
		Location:    strings.TrimSpace(f.Location),
		District:    strings.TrimSpace(f.District),
		Capacity:    f.Capacity,
		StartsAt:    start.UTC(),
		EndsAt:      end.UTC(),
	}
}

// List returns sessions filtered by status, district and a start window.
func (h *TrainingHandler) List(c echo.Context) error {
	q := repository.TrainingQuery{
		Status:   model.TrainingStatus(c.QueryParam("status")),
		District: c.QueryParam("district"),
	}
	if q.Status != "" && !q.Status.Valid() {
		return h.fail(c, invalid("unknown status"))
	}
	for name, dst := range map[string]*time.Time{"from": &q.From, "to": &q.To} {
		if s := c.QueryParam(name); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return h.fail(c, invalid(name+" must be an RFC 3339 time"))
			}
			*dst = t
		}
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	ss, err := h.Sessions.List(ctx, q)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, ss)
}

func (h *TrainingHandler) Get(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Sessions.GetByID(ctx, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Create schedules one session.
func (h *TrainingHandler) Create(c echo.Context) error {
	var req sessionReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	s := req.session(req.StartsAt, req.EndsAt)
	if err := workflow.ScheduleTraining(&s, caller(c), h.now()); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Sessions.Create(ctx, &s); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

// CreateSeries expands a recurrence rule into sessions sharing a series id
// and stores them all or none.
func (h *TrainingHandler) CreateSeries(c echo.Context) error {
	var req seriesReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	dur := time.Duration(req.DurationMinutes) * time.Minute
	tpl := req.session(req.StartsAt, req.StartsAt.Add(dur))
	sessions, err := workflow.ExpandSeries(tpl, req.RRule, dur, caller(c), h.now())
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Sessions.CreateSeries(ctx, sessions); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, sessions)
}

// SetStatus completes or cancels a scheduled session.
func (h *TrainingHandler) SetStatus(c echo.Context) error {
	p := caller(c)
	var req trainingStatusReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Sessions.GetByID(ctx, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	from := s.Status
	if err := workflow.SetTrainingStatus(&s, p, req.Status, h.now()); err != nil {
		return h.fail(c, err)
	}
	if err := h.Sessions.SaveStatus(ctx, s, from); err != nil {
		return h.fail(c, err)
	}
	h.emit(c, queue.Event{Type: queue.TrainingStatusChanged, EntityID: s.ID, From: string(from),
		To: string(s.Status), ActorID: p.UserID, District: s.District, OccurredAt: s.UpdatedAt})
	return c.JSON(http.StatusOK, s)
}
