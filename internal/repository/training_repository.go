package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/civdef/volunteer-portal/internal/model"
)

type TrainingRepo struct{ DB *sql.DB }

func NewTrainingRepo(db *sql.DB) *TrainingRepo { return &TrainingRepo{DB: db} }

// TrainingQuery filters sessions.  From and To bound StartsAt; zero values
// leave that side open.
type TrainingQuery struct {
	Status   model.TrainingStatus
	District string
	From     time.Time
	To       time.Time
}

const trainingColumns = "id,title,description,instructor,location,district,starts_at,ends_at,capacity,status,series_id,created_at,updated_at"

func scanSession(s rowScanner) (model.TrainingSession, error) {
	var (
		t      model.TrainingSession
		series sql.NullString
	)
	if err := s.Scan(&t.ID, &t.Title, &t.Description, &t.Instructor, &t.Location, &t.District,
		&t.StartsAt, &t.EndsAt, &t.Capacity, &t.Status, &series, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return model.TrainingSession{}, err
	}
	t.SeriesID = strPtr(series)
	return t, nil
}

const insertSession = `INSERT INTO training_sessions (id,title,description,instructor,location,district,starts_at,ends_at,capacity,status,series_id,created_at,updated_at)
	VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`

func sessionArgs(t *model.TrainingSession) []any {
	return []any{t.ID, t.Title, t.Description, t.Instructor, t.Location, t.District,
		t.StartsAt, t.EndsAt, t.Capacity, t.Status, nullString(t.SeriesID), t.CreatedAt, t.UpdatedAt}
}

func (r *TrainingRepo) Create(ctx context.Context, t *model.TrainingSession) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx, insertSession, sessionArgs(t)...)
	return err
}

// CreateSeries inserts all sessions of a recurring series in one
// transaction; either every session is stored or none is.  Sessions
// without a SeriesID share a freshly generated one.
func (r *TrainingRepo) CreateSeries(ctx context.Context, sessions []model.TrainingSession) (err error) {
	series := uuid.NewString()
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
	for i := range sessions {
		if sessions[i].ID == "" {
			sessions[i].ID = uuid.NewString()
		}
		if sessions[i].SeriesID == nil {
			sessions[i].SeriesID = &series
		}
		if _, err = tx.ExecContext(ctx, insertSession, sessionArgs(&sessions[i])...); err != nil {
			return err
		}
	}
	return nil
}

func (r *TrainingRepo) GetByID(ctx context.Context, id string) (model.TrainingSession, error) {
	t, err := scanSession(r.DB.QueryRowContext(ctx,
		"SELECT "+trainingColumns+" FROM training_sessions WHERE id=? LIMIT 1", id))
	return t, notFound(err)
}

// List returns sessions ordered by start time.
func (r *TrainingRepo) List(ctx context.Context, q TrainingQuery) ([]model.TrainingSession, error) {
	var (
		where []string
		args  []any
	)
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}
	if q.District != "" {
		where = append(where, "district = ?")
		args = append(args, q.District)
	}
	if !q.From.IsZero() {
		where = append(where, "starts_at >= ?")
		args = append(args, q.From)
	}
	if !q.To.IsZero() {
		where = append(where, "starts_at < ?")
		args = append(args, q.To)
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+trainingColumns+" FROM training_sessions WHERE "+joinWhere(where)+" ORDER BY starts_at", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.TrainingSession{}
	for rows.Next() {
		t, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveStatus persists a status change conditional on the previous status.
func (r *TrainingRepo) SaveStatus(ctx context.Context, t model.TrainingSession, from model.TrainingStatus) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE training_sessions SET status=?, updated_at=? WHERE id=? AND status=?",
		t.Status, t.UpdatedAt, t.ID, from)
	if err != nil {
		return err
	}
	return expectOne(res)
}
