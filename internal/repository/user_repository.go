package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/civdef/volunteer-portal/internal/model"
	"github.com/civdef/volunteer-portal/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,name,password_hash,role,district,is_active,created_at,updated_at"

func scanUser(s rowScanner) (model.User, error) {
	var (
		u        model.User
		district sql.NullString
	)
	err := s.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &district, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	u.District = strPtr(district)
	return u, err
}

// Create hashes password and inserts a user with a fresh id.
func (r *UserRepo) Create(ctx context.Context, email, name, password string, role model.Role, district *string, cost int) (model.User, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	now := time.Now().UTC().Truncate(time.Second)
	u := model.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         role,
		District:     district,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id,email,name,password_hash,role,district,is_active,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, nullString(u.District), u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	return u, notFound(err)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	return u, notFound(err)
}

// List returns users ordered by email, optionally narrowed to one role.
func (r *UserRepo) List(ctx context.Context, role model.Role) ([]model.User, error) {
	q := "SELECT " + userColumns + " FROM users"
	args := []any{}
	if role != "" {
		q += " WHERE role=?"
		args = append(args, role)
	}
	rows, err := r.DB.QueryContext(ctx, q+" ORDER BY email", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateRole changes a user's role and district.
func (r *UserRepo) UpdateRole(ctx context.Context, id string, role model.Role, district *string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=?, district=?, updated_at=? WHERE id=?",
		role, nullString(district), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if err := expectOne(res); err != nil {
		return ErrNotFound
	}
	return nil
}

// EnsureAdmin creates a user with role unless the email already exists.
// It reports whether a user was created.  Used by the seed command.
func (r *UserRepo) EnsureAdmin(ctx context.Context, email, name, password string, role model.Role, district *string, cost int) (bool, error) {
	if _, err := r.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if _, err := r.Create(ctx, email, name, password, role, district, cost); err != nil {
		return false, err
	}
	return true, nil
}
