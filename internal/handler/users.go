package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civdef/volunteer-portal/internal/model"
)

// UserHandler lets state admins review accounts and grant roles.
type UserHandler struct {
	Base
	Users UserStore
	Refs  ReferenceStore
}

func NewUserHandler(b Base, u UserStore, refs ReferenceStore) *UserHandler {
	return &UserHandler{Base: b, Users: u, Refs: refs}
}

type roleReq struct {
	Role     model.Role `json:"role" validate:"required,role"`
	District *string    `json:"district" validate:"omitempty,max=100"`
}

// List returns accounts, optionally filtered by role.
func (h *UserHandler) List(c echo.Context) error {
	role := model.Role(c.QueryParam("role"))
	if role != "" && !role.Valid() {
		return h.fail(c, invalid("unknown role"))
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	us, err := h.Users.List(ctx, role)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, us)
}

// SetRole changes a user's role and scoping district.  District admins
// need a known district; the caller cannot change their own role.
func (h *UserHandler) SetRole(c echo.Context) error {
	var req roleReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	id := c.Param("id")
	if id == caller(c).UserID {
		return h.fail(c, invalid("cannot change your own role"))
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	district := trimmed(req.District)
	if req.Role == model.RoleDistrictAdmin && district == nil {
		return h.fail(c, invalid("district_admin requires a district"))
	}
	if district != nil {
		if err := knownDistrict(ctx, h.Refs, *district); err != nil {
			return h.fail(c, err)
		}
	}
	if err := h.Users.UpdateRole(ctx, id, req.Role, district); err != nil {
		return h.fail(c, err)
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}
