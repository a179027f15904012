package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civdef/volunteer-portal/internal/model"
	"github.com/civdef/volunteer-portal/internal/workflow"
)

func TestScheduleTrainingSession(t *testing.T) {
	store := newFakeSessions()
	h := NewTrainingHandler(testBase(nil), store)
	start := testNow.Add(48 * time.Hour)
	body := map[string]any{
		"title": "Swift water rescue", "instructor": "Lt. Das", "capacity": 20,
		"startsAt": start, "endsAt": start.Add(3 * time.Hour),
	}

	rec := callAs(t, puriAdmin, http.MethodPost, "/training", "/training", body, h.Create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	s := decode[model.TrainingSession](t, rec)
	assert.Equal(t, model.TrainingScheduled, s.Status)

	rec = callAs(t, volunteerUser("u1"), http.MethodPost, "/training", "/training", body, h.Create)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body["endsAt"] = start.Add(-time.Hour)
	rec = callAs(t, puriAdmin, http.MethodPost, "/training", "/training", body, h.Create)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = callAs(t, volunteerUser("u1"), http.MethodGet, "/training", "/training", nil, h.List)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.TrainingSession](t, rec), 1)
}

func TestTrainingSeries(t *testing.T) {
	store := newFakeSessions()
	h := NewTrainingHandler(testBase(nil), store)
	start := time.Date(2025, 7, 5, 4, 30, 0, 0, time.UTC)

	rec := callAs(t, stateAdmin, http.MethodPost, "/training/series", "/training/series", map[string]any{
		"title": "Drill", "instructor": "Capt. Rao", "capacity": 15, "startsAt": start,
		"rrule": "FREQ=WEEKLY;COUNT=4", "durationMinutes": 90,
	}, h.CreateSeries)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ss := decode[[]model.TrainingSession](t, rec)
	require.Len(t, ss, 4)
	require.NotNil(t, ss[0].SeriesID)
	for i, s := range ss {
		assert.True(t, start.AddDate(0, 0, 7*i).Equal(s.StartsAt), s.StartsAt)
		assert.Equal(t, 90*time.Minute, s.EndsAt.Sub(s.StartsAt))
		assert.Equal(t, *ss[0].SeriesID, *s.SeriesID)
	}

	rec = callAs(t, stateAdmin, http.MethodPost, "/training/series", "/training/series", map[string]any{
		"title": "Drill", "instructor": "Capt. Rao", "capacity": 15, "startsAt": start,
		"rrule": "FREQ=DAILY", "durationMinutes": 60,
	}, h.CreateSeries)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, decode[[]model.TrainingSession](t, rec), workflow.MaxSeriesSessions)
}

func TestTrainingStatus(t *testing.T) {
	store := newFakeSessions(model.TrainingSession{ID: "t1", Status: model.TrainingScheduled, Capacity: 5})
	h := NewTrainingHandler(testBase(nil), store)
	set := func(status string) int {
		return callAs(t, puriAdmin, http.MethodPatch, "/training/:id/status", "/training/t1/status",
			map[string]string{"status": status}, h.SetStatus).Code
	}
	assert.Equal(t, http.StatusBadRequest, set("scheduled"))
	assert.Equal(t, http.StatusOK, set("cancelled"))
	assert.Equal(t, http.StatusConflict, set("completed"))
}
