// Package queue carries workflow events over RabbitMQ: a publisher used by
// the HTTP handlers and a consumer that turns events into audit log lines.
package queue

import "time"

// QueueName is the durable queue that receives every workflow event.
const QueueName = "portal.events"

// Event types.
const (
	VolunteerStatusChanged  = "volunteer.status_changed"
	IncidentStatusChanged   = "incident.status_changed"
	IncidentSeverityChanged = "incident.severity_changed"
	AssignmentCreated       = "assignment.created"
	AssignmentStatusChanged = "assignment.status_changed"
	TrainingStatusChanged   = "training.status_changed"
)

// Event is published after a workflow transition has been stored.  It
// carries enough context for audit and notification consumers without a
// database lookup.
type Event struct {
	Type       string    `json:"type"`
	EntityID   string    `json:"entityId"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	ActorID    string    `json:"actorId"`
	District   string    `json:"district,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
