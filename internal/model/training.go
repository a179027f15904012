package model

import "time"

// TrainingStatus is the state of a scheduled training session.
type TrainingStatus string

const (
	TrainingScheduled TrainingStatus = "scheduled"
	TrainingCompleted TrainingStatus = "completed"
	TrainingCancelled TrainingStatus = "cancelled"
)

func (s TrainingStatus) Valid() bool {
	switch s {
	case TrainingScheduled, TrainingCompleted, TrainingCancelled:
		return true
	}
	return false
}

// TrainingSession is a scheduled training event.  Sessions generated from
// a recurrence rule share a SeriesID.
type TrainingSession struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Instructor  string         `json:"instructor"`
	Location    string         `json:"location,omitempty"`
	District    string         `json:"district,omitempty"`
	StartsAt    time.Time      `json:"startsAt"`
	EndsAt      time.Time      `json:"endsAt"`
	Capacity    int            `json:"capacity"`
	Status      TrainingStatus `json:"status"`
	SeriesID    *string        `json:"seriesId,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
