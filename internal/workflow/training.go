package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/civdef/volunteer-portal/internal/access"
	"github.com/civdef/volunteer-portal/internal/model"
)

// MaxSeriesSessions caps how many sessions one recurrence rule may create.
const MaxSeriesSessions = 52

// ScheduleTraining validates and initialises a single session.
func ScheduleTraining(s *model.TrainingSession, actor access.Principal, now time.Time) error {
	if !actor.Caps().CanManageIncidents {
		return fmt.Errorf("%w: role %q cannot schedule training", ErrForbidden, actor.Role)
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if s.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", ErrInvalid)
	}
	if !s.EndsAt.After(s.StartsAt) {
		return fmt.Errorf("%w: session must end after it starts", ErrInvalid)
	}
	s.Status = model.TrainingScheduled
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

// ExpandSeries turns a recurrence rule (RFC 5545 RRULE syntax, e.g.
// "FREQ=WEEKLY;COUNT=6;BYDAY=SA") into scheduled sessions cloned from tpl.
// tpl.StartsAt is the series start unless the rule carries DTSTART; each
// session lasts duration.  At most MaxSeriesSessions are produced.
func ExpandSeries(tpl model.TrainingSession, rule string, duration time.Duration, actor access.Principal, now time.Time) ([]model.TrainingSession, error) {
	if !actor.Caps().CanManageIncidents {
		return nil, fmt.Errorf("%w: role %q cannot schedule training", ErrForbidden, actor.Role)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalid)
	}
	opt, err := rrule.StrToROption(strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:"))
	if err != nil {
		return nil, fmt.Errorf("%w: recurrence rule: %v", ErrInvalid, err)
	}
	if opt.Dtstart.IsZero() {
		if tpl.StartsAt.IsZero() {
			return nil, fmt.Errorf("%w: series start is required", ErrInvalid)
		}
		opt.Dtstart = tpl.StartsAt
	}
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("%w: recurrence rule: %v", ErrInvalid, err)
	}

	next := r.Iterator()
	out := make([]model.TrainingSession, 0, 8)
	for len(out) < MaxSeriesSessions {
		at, ok := next()
		if !ok {
			break
		}
		s := tpl
		s.StartsAt = at
		s.EndsAt = at.Add(duration)
		if err := ScheduleTraining(&s, actor, now); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: recurrence rule produces no sessions", ErrInvalid)
	}
	return out, nil
}

// SetTrainingStatus completes or cancels a scheduled session.
func SetTrainingStatus(s *model.TrainingSession, actor access.Principal, to model.TrainingStatus, now time.Time) error {
	if !actor.Caps().CanManageIncidents {
		return fmt.Errorf("%w: role %q cannot manage training", ErrForbidden, actor.Role)
	}
	if to != model.TrainingCompleted && to != model.TrainingCancelled {
		return fmt.Errorf("%w: status must be completed or cancelled", ErrInvalid)
	}
	if s.Status != model.TrainingScheduled {
		return fmt.Errorf("%w: session already %s", ErrStateConflict, s.Status)
	}
	s.Status = to
	s.UpdatedAt = now
	return nil
}

// CheckCapacity refuses a new enrolment when s is not scheduled or already
// holds capacity non-declined assignments.
func CheckCapacity(s model.TrainingSession, taken int) error {
	if s.Status != model.TrainingScheduled {
		return fmt.Errorf("%w: session is %s", ErrStateConflict, s.Status)
	}
	if taken >= s.Capacity {
		return fmt.Errorf("%w: session is full (%d/%d)", ErrStateConflict, taken, s.Capacity)
	}
	return nil
}
