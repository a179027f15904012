package model

import "time"

// AssignmentStatus is a step of the assignment lifecycle.
type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentAccepted   AssignmentStatus = "accepted"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentDeclined   AssignmentStatus = "declined"
)

// AssignmentStatuses lists every assignment status.
var AssignmentStatuses = []AssignmentStatus{AssignmentAssigned, AssignmentAccepted, AssignmentInProgress, AssignmentCompleted, AssignmentDeclined}

func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentAssigned, AssignmentAccepted, AssignmentInProgress, AssignmentCompleted, AssignmentDeclined:
		return true
	}
	return false
}

// Assignment links a volunteer to an incident, a training session, or
// both.  At least one of IncidentID and TrainingSessionID is set.
type Assignment struct {
	ID                string           `json:"id"`
	VolunteerID       string           `json:"volunteerId"`
	IncidentID        *string          `json:"incidentId,omitempty"`
	TrainingSessionID *string          `json:"trainingSessionId,omitempty"`
	Status            AssignmentStatus `json:"status"`
	Notes             string           `json:"notes,omitempty"`
	AssignedBy        string           `json:"assignedBy"`
	AssignedAt        time.Time        `json:"assignedAt"`
	CompletedAt       *time.Time       `json:"completedAt,omitempty"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// HasTarget reports whether the assignment references at least one
// incident or training session.
func (a Assignment) HasTarget() bool {
	return (a.IncidentID != nil && *a.IncidentID != "") ||
		(a.TrainingSessionID != nil && *a.TrainingSessionID != "")
}
