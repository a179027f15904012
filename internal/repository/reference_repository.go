package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/civdef/volunteer-portal/internal/model"
)

// ReferenceRepo reads and seeds the district and department lookups.
type ReferenceRepo struct{ DB *sql.DB }

func NewReferenceRepo(db *sql.DB) *ReferenceRepo { return &ReferenceRepo{DB: db} }

func (r *ReferenceRepo) ListDistricts(ctx context.Context) ([]model.District, error) {
	return listRef(ctx, r.DB, "districts", func(id, name, code string) model.District {
		return model.District{ID: id, Name: name, Code: code}
	})
}

func (r *ReferenceRepo) ListDepartments(ctx context.Context) ([]model.Department, error) {
	return listRef(ctx, r.DB, "departments", func(id, name, code string) model.Department {
		return model.Department{ID: id, Name: name, Code: code}
	})
}

func listRef[T any](ctx context.Context, db *sql.DB, table string, build func(id, name, code string) T) ([]T, error) {
	rows, err := db.QueryContext(ctx, "SELECT id,name,code FROM "+table+" ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var id, name, code string
		if err := rows.Scan(&id, &name, &code); err != nil {
			return nil, err
		}
		out = append(out, build(id, name, code))
	}
	return out, rows.Err()
}

// UpsertDistrict inserts a district or renames the one with the same code.
func (r *ReferenceRepo) UpsertDistrict(ctx context.Context, d model.District) error {
	return upsertRef(ctx, r.DB, "districts", d.Name, d.Code)
}

// UpsertDepartment inserts a department or renames the one with the same
// code.
func (r *ReferenceRepo) UpsertDepartment(ctx context.Context, d model.Department) error {
	return upsertRef(ctx, r.DB, "departments", d.Name, d.Code)
}

func upsertRef(ctx context.Context, db *sql.DB, table, name, code string) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO "+table+" (id,name,code) VALUES (?,?,?) ON DUPLICATE KEY UPDATE name=VALUES(name)",
		uuid.NewString(), strings.TrimSpace(name), strings.ToUpper(strings.TrimSpace(code)))
	return err
}

// DistrictExists reports whether name is a known district.
func (r *ReferenceRepo) DistrictExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM districts WHERE name=?", name).Scan(&n)
	return n > 0, err
}
