package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/civdef/volunteer-portal/internal/model"
)

type VolunteerRepo struct{ DB *sql.DB }

func NewVolunteerRepo(db *sql.DB) *VolunteerRepo { return &VolunteerRepo{DB: db} }

// VolunteerQuery filters a volunteer listing.  Search matches name, email
// or phone case-insensitively.
type VolunteerQuery struct {
	Scope  DistrictScope
	Status model.VolunteerStatus
	Search string
}

const volunteerColumns = "id,user_id,name,phone,email,district,address,skills,documents,status,approved_by,approved_at,rejection_reason,created_at,updated_at"

func scanVolunteer(s rowScanner) (model.Volunteer, error) {
	var (
		v                  model.Volunteer
		skills, docs       []byte
		approvedBy, reason sql.NullString
		approvedAt         sql.NullTime
	)
	if err := s.Scan(&v.ID, &v.UserID, &v.Name, &v.Phone, &v.Email, &v.District, &v.Address,
		&skills, &docs, &v.Status, &approvedBy, &approvedAt, &reason, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return model.Volunteer{}, err
	}
	var err error
	if v.Skills, err = decodeList(skills); err != nil {
		return model.Volunteer{}, err
	}
	if v.Documents, err = decodeList(docs); err != nil {
		return model.Volunteer{}, err
	}
	v.ApprovedBy = strPtr(approvedBy)
	v.ApprovedAt = timePtr(approvedAt)
	v.RejectionReason = strPtr(reason)
	return v, nil
}

// Create inserts a pending profile.  A second profile for the same user is
// ErrConflict.
func (r *VolunteerRepo) Create(ctx context.Context, v *model.Volunteer) error {
	skills, err := encodeList(v.Skills)
	if err != nil {
		return err
	}
	docs, err := encodeList(v.Documents)
	if err != nil {
		return err
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	v.Status = model.VolunteerPending
	v.CreatedAt, v.UpdatedAt = now, now
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO volunteers (id,user_id,name,phone,email,district,address,skills,documents,status,created_at,updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		v.ID, v.UserID, v.Name, v.Phone, v.Email, v.District, v.Address, skills, docs, v.Status, v.CreatedAt, v.UpdatedAt)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

func (r *VolunteerRepo) GetByID(ctx context.Context, id string) (model.Volunteer, error) {
	v, err := scanVolunteer(r.DB.QueryRowContext(ctx,
		"SELECT "+volunteerColumns+" FROM volunteers WHERE id=? LIMIT 1", id))
	return v, notFound(err)
}

// GetByUserID returns the profile owned by a user.
func (r *VolunteerRepo) GetByUserID(ctx context.Context, userID string) (model.Volunteer, error) {
	v, err := scanVolunteer(r.DB.QueryRowContext(ctx,
		"SELECT "+volunteerColumns+" FROM volunteers WHERE user_id=? LIMIT 1", userID))
	return v, notFound(err)
}

// List returns profiles inside q.Scope, newest first.
func (r *VolunteerRepo) List(ctx context.Context, q VolunteerQuery) ([]model.Volunteer, error) {
	if q.Scope.None {
		return []model.Volunteer{}, nil
	}
	where, args := q.Scope.where("district", nil, nil)
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}
	if s := strings.ToLower(strings.TrimSpace(q.Search)); s != "" {
		like := "%" + s + "%"
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?)")
		args = append(args, like, like, like)
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+volunteerColumns+" FROM volunteers WHERE "+joinWhere(where)+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Volunteer{}
	for rows.Next() {
		v, err := scanVolunteer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UpdateProfile saves the editable profile fields.  Status is untouched.
func (r *VolunteerRepo) UpdateProfile(ctx context.Context, v *model.Volunteer) error {
	skills, err := encodeList(v.Skills)
	if err != nil {
		return err
	}
	docs, err := encodeList(v.Documents)
	if err != nil {
		return err
	}
	v.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE volunteers SET name=?, phone=?, address=?, skills=?, documents=?, updated_at=? WHERE id=?",
		v.Name, v.Phone, v.Address, skills, docs, v.UpdatedAt, v.ID)
	if err != nil {
		return err
	}
	if expectOne(res) != nil {
		return ErrNotFound
	}
	return nil
}

// SaveDecision persists an approval decision.  The update only applies
// while the row still has status from; otherwise ErrConflict.
func (r *VolunteerRepo) SaveDecision(ctx context.Context, v model.Volunteer, from model.VolunteerStatus) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE volunteers SET status=?, approved_by=?, approved_at=?, rejection_reason=?, updated_at=?
		 WHERE id=? AND status=?`,
		v.Status, nullString(v.ApprovedBy), nullTime(v.ApprovedAt), nullString(v.RejectionReason), v.UpdatedAt,
		v.ID, from)
	if err != nil {
		return err
	}
	return expectOne(res)
}
