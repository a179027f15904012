package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"min=8"`
}

type patch struct {
	Severity  *string   `json:"severity" validate:"omitempty,severity"`
	Status    string    `json:"status" validate:"omitempty,incident_status"`
	Role      string    `json:"role" validate:"omitempty,role"`
	Condition string    `json:"condition" validate:"omitempty,condition"`
	Rule      string    `json:"rrule" validate:"omitempty,rrule"`
	StartsAt  time.Time `json:"startsAt"`
	EndsAt    time.Time `json:"endsAt" validate:"omitempty,gtfield=StartsAt"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	require.NoError(t, v.Validate(signup{Email: "a@b.io", Name: "A", Password: "longenough"}))

	sev := "critical"
	now := time.Now()
	require.NoError(t, v.Validate(patch{
		Severity: &sev, Status: "in_progress", Role: "district_admin", Condition: "fair",
		Rule: "RRULE:FREQ=WEEKLY;COUNT=4", StartsAt: now, EndsAt: now.Add(time.Hour),
	}))
	require.NoError(t, v.Validate(patch{}))
}

func TestValidate_ReportsJSONNames(t *testing.T) {
	err := New().Validate(signup{Email: "nope", Password: "x"})
	var ve *Error
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, map[string]string{
		"email":    "must be a valid email",
		"name":     "is required",
		"password": "must be at least 8",
	}, ve.Fields)
	assert.Equal(t, "invalid request: email: must be a valid email; name: is required; password: must be at least 8", err.Error())
}

func TestValidate_EnumTags(t *testing.T) {
	sev := "apocalyptic"
	err := New().Validate(patch{Severity: &sev, Status: "done", Role: "root", Condition: "shiny", Rule: "FREQ=SOMETIMES"})
	var ve *Error
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "is not a valid severity", ve.Fields["severity"])
	assert.Equal(t, "is not a valid incident status", ve.Fields["status"])
	assert.Contains(t, ve.Fields, "role")
	assert.Contains(t, ve.Fields, "condition")
	assert.Contains(t, ve.Fields, "rrule")
}

func TestValidate_TimeOrder(t *testing.T) {
	now := time.Now()
	err := New().Validate(patch{StartsAt: now, EndsAt: now.Add(-time.Minute)})
	var ve *Error
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must be after StartsAt", ve.Fields["endsAt"])
}
