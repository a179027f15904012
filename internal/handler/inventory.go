package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/civdef/volunteer-portal/internal/access"
	"github.com/civdef/volunteer-portal/internal/model"
	"github.com/civdef/volunteer-portal/internal/repository"
	"github.com/civdef/volunteer-portal/internal/workflow"
)

// InventoryHandler serves district equipment stock.
type InventoryHandler struct {
	Base
	Items InventoryStore
	Refs  ReferenceStore
}

func NewInventoryHandler(b Base, s InventoryStore, refs ReferenceStore) *InventoryHandler {
	return &InventoryHandler{Base: b, Items: s, Refs: refs}
}

type itemReq struct {
	Name             string              `json:"name" validate:"required,max=150"`
	Category         string              `json:"category" validate:"required,max=60"`
	Condition        model.ItemCondition `json:"condition" validate:"omitempty,condition"`
	Quantity         int                 `json:"quantity" validate:"min=0"`
	Unit             string              `json:"unit" validate:"max=30"`
	District         string              `json:"district" validate:"max=100"`
	Location         string              `json:"location" validate:"max=255"`
	LastInspectedAt  *time.Time          `json:"lastInspectedAt"`
	NextInspectionAt *time.Time          `json:"nextInspectionAt"`
}

type itemPatchReq struct {
	Name             *string              `json:"name" validate:"omitempty,max=150"`
	Quantity         *int                 `json:"quantity" validate:"omitempty,min=0"`
	Condition        *model.ItemCondition `json:"condition" validate:"omitempty,condition"`
	Location         *string              `json:"location" validate:"omitempty,max=255"`
	LastInspectedAt  *time.Time           `json:"lastInspectedAt"`
	NextInspectionAt *time.Time           `json:"nextInspectionAt"`
}

// List returns the stock visible to the caller.
func (h *InventoryHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Items.List(ctx, repository.InventoryQuery{
		Scope:    repository.ScopeFor(caller(c)),
		Category: c.QueryParam("category"),
		LowStock: c.QueryParam("lowStock") == "true",
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *InventoryHandler) Get(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	it, err := h.Items.GetByID(ctx, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if !caller(c).Sees(it) {
		return h.fail(c, errHidden)
	}
	return c.JSON(http.StatusOK, it)
}

// Create adds a stock record.  District admins may only stock their own
// district and default to it when none is given.
func (h *InventoryHandler) Create(c echo.Context) error {
	p := caller(c)
	var req itemReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	district := strings.TrimSpace(req.District)
	if p.Caps().Scope == access.ScopeDistrict {
		if district == "" {
			district = p.District
		}
		if district != p.District {
			return h.fail(c, fmt.Errorf("%w: district admins can only stock their own district", workflow.ErrForbidden))
		}
	}
	if district == "" {
		return h.fail(c, invalid("district is required"))
	}
	cond := req.Condition
	if cond == "" {
		cond = model.ConditionGood
	}
	it := model.InventoryItem{
		Name:             strings.TrimSpace(req.Name),
		Category:         strings.ToLower(strings.TrimSpace(req.Category)),
		Condition:        cond,
		Quantity:         req.Quantity,
		Unit:             strings.TrimSpace(req.Unit),
		District:         district,
		Location:         strings.TrimSpace(req.Location),
		LastInspectedAt:  req.LastInspectedAt,
		NextInspectionAt: req.NextInspectionAt,
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := knownDistrict(ctx, h.Refs, it.District); err != nil {
		return h.fail(c, err)
	}
	if err := h.Items.Create(ctx, &it); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, it)
}

// Update edits stock level, condition and inspection dates.
func (h *InventoryHandler) Update(c echo.Context) error {
	var req itemPatchReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	it, err := h.Items.GetByID(ctx, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if !caller(c).Sees(it) {
		return h.fail(c, errHidden)
	}
	if req.Name != nil {
		if it.Name = strings.TrimSpace(*req.Name); it.Name == "" {
			return h.fail(c, invalid("name cannot be blank"))
		}
	}
	if req.Quantity != nil {
		it.Quantity = *req.Quantity
	}
	if req.Condition != nil {
		it.Condition = *req.Condition
	}
	if req.Location != nil {
		it.Location = strings.TrimSpace(*req.Location)
	}
	if req.LastInspectedAt != nil {
		it.LastInspectedAt = req.LastInspectedAt
	}
	if req.NextInspectionAt != nil {
		it.NextInspectionAt = req.NextInspectionAt
	}
	if err := h.Items.Update(ctx, &it); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, it)
}
