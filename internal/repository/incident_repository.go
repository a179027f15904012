package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/civdef/volunteer-portal/internal/model"
)

type IncidentRepo struct{ DB *sql.DB }

func NewIncidentRepo(db *sql.DB) *IncidentRepo { return &IncidentRepo{DB: db} }

// IncidentQuery filters an incident listing.  ReportedBy, when set,
// replaces the district scope with an identity scope.
type IncidentQuery struct {
	Scope      DistrictScope
	ReportedBy string
	Status     model.IncidentStatus
	Severity   model.Severity
	ActiveOnly bool
	Since      time.Time
}

const incidentColumns = "id,title,description,type,severity,status,district,location,latitude,longitude,assigned_to,reported_by,resolved_by,resolved_at,created_at,updated_at"

func scanIncident(s rowScanner) (model.Incident, error) {
	var (
		i          model.Incident
		lat, lng   sql.NullFloat64
		assigned   []byte
		resolvedBy sql.NullString
		resolvedAt sql.NullTime
	)
	if err := s.Scan(&i.ID, &i.Title, &i.Description, &i.Type, &i.Severity, &i.Status, &i.District, &i.Location,
		&lat, &lng, &assigned, &i.ReportedBy, &resolvedBy, &resolvedAt, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return model.Incident{}, err
	}
	var err error
	if i.AssignedTo, err = decodeList(assigned); err != nil {
		return model.Incident{}, err
	}
	i.Latitude = floatPtr(lat)
	i.Longitude = floatPtr(lng)
	i.ResolvedBy = strPtr(resolvedBy)
	i.ResolvedAt = timePtr(resolvedAt)
	return i, nil
}

// Create inserts a reported incident.
func (r *IncidentRepo) Create(ctx context.Context, i *model.Incident) error {
	assigned, err := encodeList(i.AssignedTo)
	if err != nil {
		return err
	}
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO incidents (id,title,description,type,severity,status,district,location,latitude,longitude,assigned_to,reported_by,created_at,updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		i.ID, i.Title, i.Description, i.Type, i.Severity, i.Status, i.District, i.Location,
		nullFloat(i.Latitude), nullFloat(i.Longitude), assigned, i.ReportedBy, i.CreatedAt, i.UpdatedAt)
	return err
}

func (r *IncidentRepo) GetByID(ctx context.Context, id string) (model.Incident, error) {
	i, err := scanIncident(r.DB.QueryRowContext(ctx,
		"SELECT "+incidentColumns+" FROM incidents WHERE id=? LIMIT 1", id))
	return i, notFound(err)
}

// List returns incidents matching q, newest first.
func (r *IncidentRepo) List(ctx context.Context, q IncidentQuery) ([]model.Incident, error) {
	var (
		where []string
		args  []any
	)
	if q.ReportedBy != "" {
		where = append(where, "reported_by = ?")
		args = append(args, q.ReportedBy)
	} else {
		if q.Scope.None {
			return []model.Incident{}, nil
		}
		where, args = q.Scope.where("district", where, args)
	}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}
	if q.Severity != "" {
		where = append(where, "severity = ?")
		args = append(args, q.Severity)
	}
	if q.ActiveOnly {
		where = append(where, "status IN (?,?,?)")
		args = append(args, model.IncidentReported, model.IncidentAssigned, model.IncidentInProgress)
	}
	if !q.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, q.Since)
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+incidentColumns+" FROM incidents WHERE "+joinWhere(where)+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Incident{}
	for rows.Next() {
		i, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// Save persists status, severity, responders and resolution of i.  The
// update only applies while the row still has status from; otherwise
// ErrConflict.
func (r *IncidentRepo) Save(ctx context.Context, i model.Incident, from model.IncidentStatus) error {
	assigned, err := encodeList(i.AssignedTo)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE incidents SET status=?, severity=?, assigned_to=?, resolved_by=?, resolved_at=?, updated_at=?
		 WHERE id=? AND status=?`,
		i.Status, i.Severity, assigned, nullString(i.ResolvedBy), nullTime(i.ResolvedAt), i.UpdatedAt,
		i.ID, from)
	if err != nil {
		return err
	}
	return expectOne(res)
}
