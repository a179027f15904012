package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/civdef/volunteer-portal/internal/model"
)

type InventoryRepo struct{ DB *sql.DB }

func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{DB: db} }

type InventoryQuery struct {
	Scope    DistrictScope
	Category string
	LowStock bool
}

const inventoryColumns = "id,name,category,`condition`,quantity,unit,district,location,last_inspected_at,next_inspection_at,created_at,updated_at"

func scanItem(s rowScanner) (model.InventoryItem, error) {
	var (
		it             model.InventoryItem
		inspected, due sql.NullTime
	)
	if err := s.Scan(&it.ID, &it.Name, &it.Category, &it.Condition, &it.Quantity, &it.Unit, &it.District, &it.Location,
		&inspected, &due, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return model.InventoryItem{}, err
	}
	it.LastInspectedAt = timePtr(inspected)
	it.NextInspectionAt = timePtr(due)
	return it, nil
}

func (r *InventoryRepo) Create(ctx context.Context, it *model.InventoryItem) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	it.CreatedAt, it.UpdatedAt = now, now
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO inventory_items (id,name,category,`condition`,quantity,unit,district,location,last_inspected_at,next_inspection_at,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)",
		it.ID, it.Name, it.Category, it.Condition, it.Quantity, it.Unit, it.District, it.Location,
		nullTime(it.LastInspectedAt), nullTime(it.NextInspectionAt), it.CreatedAt, it.UpdatedAt)
	return err
}

func (r *InventoryRepo) GetByID(ctx context.Context, id string) (model.InventoryItem, error) {
	it, err := scanItem(r.DB.QueryRowContext(ctx,
		"SELECT "+inventoryColumns+" FROM inventory_items WHERE id=? LIMIT 1", id))
	return it, notFound(err)
}

// List returns items in q.Scope ordered by category and name.
func (r *InventoryRepo) List(ctx context.Context, q InventoryQuery) ([]model.InventoryItem, error) {
	if q.Scope.None {
		return []model.InventoryItem{}, nil
	}
	where, args := q.Scope.where("district", nil, nil)
	if c := strings.TrimSpace(q.Category); c != "" {
		where = append(where, "category = ?")
		args = append(args, c)
	}
	if q.LowStock {
		where = append(where, "quantity < ?")
		args = append(args, model.LowStockThreshold)
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+inventoryColumns+" FROM inventory_items WHERE "+joinWhere(where)+" ORDER BY category, name", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.InventoryItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Update saves the stock, condition and inspection fields of it.
func (r *InventoryRepo) Update(ctx context.Context, it *model.InventoryItem) error {
	it.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE inventory_items SET name=?, quantity=?, `condition`=?, location=?, last_inspected_at=?, next_inspection_at=?, updated_at=? WHERE id=?",
		it.Name, it.Quantity, it.Condition, it.Location, nullTime(it.LastInspectedAt), nullTime(it.NextInspectionAt), it.UpdatedAt, it.ID)
	if err != nil {
		return err
	}
	if expectOne(res) != nil {
		return ErrNotFound
	}
	return nil
}
