// Package validation adapts go-playground/validator to echo.Validator and
// registers tags for the portal's enum types.
package validation

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"

	"github.com/civdef/volunteer-portal/internal/model"
)

// Error lists the failed fields of one request body.  Handlers map it to
// HTTP 400.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// Validator implements echo.Validator.
type Validator struct {
	v *validator.Validate
}

// New builds a validator that reports JSON field names and knows the
// enum tags role, severity, incident_status, volunteer_status,
// assignment_status, training_status, condition and rrule.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	enums := map[string]func(string) bool{
		"role":              func(s string) bool { return model.Role(s).Valid() },
		"severity":          func(s string) bool { return model.Severity(s).Valid() },
		"incident_status":   func(s string) bool { return model.IncidentStatus(s).Valid() },
		"volunteer_status":  func(s string) bool { return model.VolunteerStatus(s).Valid() },
		"assignment_status": func(s string) bool { return model.AssignmentStatus(s).Valid() },
		"training_status":   func(s string) bool { return model.TrainingStatus(s).Valid() },
		"condition":         func(s string) bool { return model.ItemCondition(s).Valid() },
		"rrule": func(s string) bool {
			_, err := rrule.StrToROption(strings.TrimPrefix(s, "RRULE:"))
			return err == nil
		},
	}
	for tag, ok := range enums {
		ok := ok
		// Registration only fails for empty tags or nil funcs.
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return ok(fl.Field().String())
		})
	}
	return &Validator{v: v}
}

// Validate checks a bound request struct.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return "must be one of " + fe.Param()
	case "url":
		return "must be a URL"
	case "gtfield":
		return "must be after " + fe.Param()
	default:
		return "is not a valid " + strings.ReplaceAll(fe.Tag(), "_", " ")
	}
}
