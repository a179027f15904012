package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ReferenceHandler serves the seeded district and department lists.
type ReferenceHandler struct {
	Base
	Refs ReferenceStore
}

func NewReferenceHandler(b Base, refs ReferenceStore) *ReferenceHandler {
	return &ReferenceHandler{Base: b, Refs: refs}
}

func (h *ReferenceHandler) Districts(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	ds, err := h.Refs.ListDistricts(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, ds)
}

func (h *ReferenceHandler) Departments(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	ds, err := h.Refs.ListDepartments(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, ds)
}
