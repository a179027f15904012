package model

import "time"

// VolunteerStatus is the approval state of a volunteer profile.
type VolunteerStatus string

const (
	VolunteerPending  VolunteerStatus = "pending"
	VolunteerApproved VolunteerStatus = "approved"
	VolunteerRejected VolunteerStatus = "rejected"
)

// Valid reports whether s is a known volunteer status.
func (s VolunteerStatus) Valid() bool {
	switch s {
	case VolunteerPending, VolunteerApproved, VolunteerRejected:
		return true
	}
	return false
}

// Volunteer is a registered volunteer profile.  Profiles are created on
// registration in the pending state and are never deleted; only the
// approval workflow changes Status.
type Volunteer struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Name            string          `json:"name"`
	Phone           string          `json:"phone"`
	Email           string          `json:"email"`
	District        string          `json:"district"`
	Address         string          `json:"address,omitempty"`
	Skills          []string        `json:"skills"`
	Documents       []string        `json:"documents"`
	Status          VolunteerStatus `json:"status"`
	ApprovedBy      *string         `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	RejectionReason *string         `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// DistrictKey returns the scoping district of the profile.
func (v Volunteer) DistrictKey() string { return v.District }
