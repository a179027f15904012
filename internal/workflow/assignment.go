package workflow

import (
	"fmt"
	"time"

	"github.com/civdef/volunteer-portal/internal/access"
	"github.com/civdef/volunteer-portal/internal/model"
)

// assignmentMoves lists the statuses reachable from each non-terminal
// status.  Starting work straight from assigned implies acceptance.
var assignmentMoves = map[model.AssignmentStatus][]model.AssignmentStatus{
	model.AssignmentAssigned:   {model.AssignmentAccepted, model.AssignmentInProgress, model.AssignmentDeclined},
	model.AssignmentAccepted:   {model.AssignmentInProgress, model.AssignmentDeclined},
	model.AssignmentInProgress: {model.AssignmentCompleted},
}

// IsTerminalAssignment reports whether no transition leaves s.
func IsTerminalAssignment(s model.AssignmentStatus) bool {
	_, ok := assignmentMoves[s]
	return !ok
}

// NewAssignment prepares a fresh assignment of volunteer v.  The volunteer
// must be approved and the assignment must reference an incident or a
// training session.
func NewAssignment(a *model.Assignment, v model.Volunteer, actor access.Principal, now time.Time) error {
	if !actor.Caps().CanManageIncidents {
		return fmt.Errorf("%w: role %q cannot create assignments", ErrForbidden, actor.Role)
	}
	if !a.HasTarget() {
		return fmt.Errorf("%w: an incident or training session is required", ErrInvalid)
	}
	if v.Status != model.VolunteerApproved {
		return fmt.Errorf("%w: volunteer is %s, not approved", ErrStateConflict, v.Status)
	}
	a.VolunteerID = v.ID
	a.Status = model.AssignmentAssigned
	a.AssignedBy = actor.UserID
	a.AssignedAt = now
	a.CompletedAt = nil
	a.UpdatedAt = now
	return nil
}

// AdvanceAssignment moves a along its lifecycle on behalf of actor.  Only
// the user who owns assignee, the volunteer referenced by a, may do so.
// Completing stamps CompletedAt.
func AdvanceAssignment(a *model.Assignment, assignee model.Volunteer, actor access.Principal, to model.AssignmentStatus, now time.Time) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown assignment status %q", ErrInvalid, to)
	}
	if assignee.ID != a.VolunteerID || assignee.UserID == "" || assignee.UserID != actor.UserID {
		return fmt.Errorf("%w: assignment belongs to another volunteer", ErrForbidden)
	}
	allowed, ok := assignmentMoves[a.Status]
	if !ok {
		return fmt.Errorf("%w: assignment already %s", ErrStateConflict, a.Status)
	}
	permitted := false
	for _, s := range allowed {
		if s == to {
			permitted = true
			break
		}
	}
	if !permitted {
		return fmt.Errorf("%w: cannot move assignment from %s to %s", ErrStateConflict, a.Status, to)
	}
	if to == model.AssignmentCompleted {
		at := now
		a.CompletedAt = &at
	}
	a.Status = to
	a.UpdatedAt = now
	return nil
}
