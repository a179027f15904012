package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/civdef/volunteer-portal/internal/access"
	"github.com/civdef/volunteer-portal/internal/model"
)

// DecideVolunteer applies an approval decision requested through the
// status endpoint.  target must be approved or rejected.
func DecideVolunteer(v *model.Volunteer, actor access.Principal, target model.VolunteerStatus, reason string, now time.Time) error {
	switch target {
	case model.VolunteerApproved:
		return ApproveVolunteer(v, actor, now)
	case model.VolunteerRejected:
		return RejectVolunteer(v, actor, reason, now)
	default:
		return fmt.Errorf("%w: status must be approved or rejected", ErrInvalid)
	}
}

// ApproveVolunteer moves a pending profile to approved and records who
// approved it and when.
func ApproveVolunteer(v *model.Volunteer, actor access.Principal, now time.Time) error {
	if !actor.Caps().CanApproveVolunteers {
		return fmt.Errorf("%w: role %q cannot approve volunteers", ErrForbidden, actor.Role)
	}
	if v.Status != model.VolunteerPending {
		return fmt.Errorf("%w: volunteer already %s", ErrStateConflict, v.Status)
	}
	by := actor.UserID
	at := now
	v.Status = model.VolunteerApproved
	v.ApprovedBy = &by
	v.ApprovedAt = &at
	v.RejectionReason = nil
	v.UpdatedAt = now
	return nil
}

// RejectVolunteer moves a pending profile to rejected.  A reason is
// mandatory; blank or whitespace-only reasons are refused before any
// state check.
func RejectVolunteer(v *model.Volunteer, actor access.Principal, reason string, now time.Time) error {
	if !actor.Caps().CanApproveVolunteers {
		return fmt.Errorf("%w: role %q cannot reject volunteers", ErrForbidden, actor.Role)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: rejection reason is required", ErrInvalid)
	}
	if v.Status != model.VolunteerPending {
		return fmt.Errorf("%w: volunteer already %s", ErrStateConflict, v.Status)
	}
	v.Status = model.VolunteerRejected
	v.RejectionReason = &reason
	v.UpdatedAt = now
	return nil
}
