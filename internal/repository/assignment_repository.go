package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/civdef/volunteer-portal/internal/model"
)

type AssignmentRepo struct{ DB *sql.DB }

func NewAssignmentRepo(db *sql.DB) *AssignmentRepo { return &AssignmentRepo{DB: db} }

// CapacityCheck decides whether one more assignment fits in a session
// that already holds taken non-declined assignments.
type CapacityCheck func(s model.TrainingSession, taken int) error

const assignmentColumns = "id,volunteer_id,incident_id,training_session_id,status,notes,assigned_by,assigned_at,completed_at,updated_at"

func scanAssignment(s rowScanner) (model.Assignment, error) {
	var (
		a                  model.Assignment
		incident, training sql.NullString
		completed          sql.NullTime
	)
	if err := s.Scan(&a.ID, &a.VolunteerID, &incident, &training, &a.Status, &a.Notes,
		&a.AssignedBy, &a.AssignedAt, &completed, &a.UpdatedAt); err != nil {
		return model.Assignment{}, err
	}
	a.IncidentID = strPtr(incident)
	a.TrainingSessionID = strPtr(training)
	a.CompletedAt = timePtr(completed)
	return a, nil
}

// Create inserts a. When a references a training session, the session row
// is locked and check runs against its current enrolment inside the same
// transaction, so concurrent enrolments cannot overfill it.
func (r *AssignmentRepo) Create(ctx context.Context, a *model.Assignment, check CapacityCheck) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if a.TrainingSessionID != nil && *a.TrainingSessionID != "" {
		var s model.TrainingSession
		s, err = scanSession(tx.QueryRowContext(ctx,
			"SELECT "+trainingColumns+" FROM training_sessions WHERE id=? FOR UPDATE", *a.TrainingSessionID))
		if err != nil {
			return notFound(err)
		}
		var taken int
		if err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM assignments WHERE training_session_id=? AND status<>?",
			s.ID, model.AssignmentDeclined).Scan(&taken); err != nil {
			return err
		}
		if check != nil {
			if err = check(s, taken); err != nil {
				return err
			}
		}
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO assignments (id,volunteer_id,incident_id,training_session_id,status,notes,assigned_by,assigned_at,updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		a.ID, a.VolunteerID, nullString(a.IncidentID), nullString(a.TrainingSessionID), a.Status, a.Notes,
		a.AssignedBy, a.AssignedAt, a.UpdatedAt)
	return err
}

func (r *AssignmentRepo) GetByID(ctx context.Context, id string) (model.Assignment, error) {
	a, err := scanAssignment(r.DB.QueryRowContext(ctx,
		"SELECT "+assignmentColumns+" FROM assignments WHERE id=? LIMIT 1", id))
	return a, notFound(err)
}

// ListByVolunteer returns a volunteer's assignments, newest first.
func (r *AssignmentRepo) ListByVolunteer(ctx context.Context, volunteerID string) ([]model.Assignment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+assignmentColumns+" FROM assignments WHERE volunteer_id=? ORDER BY assigned_at DESC", volunteerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveStatus persists a status change conditional on the previous status.
func (r *AssignmentRepo) SaveStatus(ctx context.Context, a model.Assignment, from model.AssignmentStatus) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE assignments SET status=?, completed_at=?, updated_at=? WHERE id=? AND status=?",
		a.Status, nullTime(a.CompletedAt), a.UpdatedAt, a.ID, from)
	if err != nil {
		return err
	}
	return expectOne(res)
}
