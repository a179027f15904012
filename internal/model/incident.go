package model

import "time"

// Severity is the reporter-asserted seriousness of an incident.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists severities from least to most serious.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// IncidentStatus is a step of the incident lifecycle.
type IncidentStatus string

const (
	IncidentReported   IncidentStatus = "reported"
	IncidentAssigned   IncidentStatus = "assigned"
	IncidentInProgress IncidentStatus = "in_progress"
	IncidentResolved   IncidentStatus = "resolved"
	IncidentClosed     IncidentStatus = "closed"
)

// IncidentStatuses lists lifecycle states in order.
var IncidentStatuses = []IncidentStatus{IncidentReported, IncidentAssigned, IncidentInProgress, IncidentResolved, IncidentClosed}

func (s IncidentStatus) Valid() bool {
	switch s {
	case IncidentReported, IncidentAssigned, IncidentInProgress, IncidentResolved, IncidentClosed:
		return true
	}
	return false
}

// IsActive reports whether an incident in status s still needs attention.
// Every count of "active incidents" goes through this predicate.
func (s IncidentStatus) IsActive() bool {
	return s == IncidentReported || s == IncidentAssigned || s == IncidentInProgress
}

// Incident is an emergency report.
type Incident struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        string         `json:"type,omitempty"`
	Severity    Severity       `json:"severity"`
	Status      IncidentStatus `json:"status"`
	District    string         `json:"district"`
	Location    string         `json:"location,omitempty"`
	Latitude    *float64       `json:"latitude,omitempty"`
	Longitude   *float64       `json:"longitude,omitempty"`
	AssignedTo  []string       `json:"assignedTo"`
	ReportedBy  string         `json:"reportedBy"`
	ResolvedBy  *string        `json:"resolvedBy,omitempty"`
	ResolvedAt  *time.Time     `json:"resolvedAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// DistrictKey returns the scoping district of the incident.
func (i Incident) DistrictKey() string { return i.District }

// IsActive reports whether the incident is still open.
func (i Incident) IsActive() bool { return i.Status.IsActive() }
