package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/civdef/volunteer-portal/internal/access"
	"github.com/civdef/volunteer-portal/internal/config"
	"github.com/civdef/volunteer-portal/internal/model"
	"github.com/civdef/volunteer-portal/internal/repository"
	"github.com/civdef/volunteer-portal/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Base
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
}

func NewAuthHandler(b Base, cfg config.Config, u UserStore, t TokenStore) *AuthHandler {
	return &AuthHandler{Base: b, Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email" validate:"required,email,max=190"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *signupReq) normalize() {
	r.Email = normEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

func (r *loginReq) normalize() { r.Email = normEmail(r.Email) }

type refreshReq struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type logoutReq struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User         model.User          `json:"user"`
	Capabilities access.Capabilities `json:"capabilities"`
	Access       tokenPart           `json:"access"`
	Refresh      tokenPart           `json:"refresh"`
}

// Signup creates a volunteer-role account and returns a token pair.
// Privileged roles are granted through the users endpoints only.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Email, req.Name, req.Password,
		model.RoleVolunteer, nil, h.Cfg.BcryptCost)
	if err != nil {
		return h.fail(c, err)
	}
	resp, err := h.issue(c, u)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return h.fail(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
	}
	resp, err := h.issue(c, u)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued with the user's current role.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	hash := utils.HashRefreshRaw(req.RefreshToken)
	uid, err := h.Tokens.ValidateRefresh(ctx, hash, h.now())
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return h.fail(c, err)
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return h.fail(c, err)
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
	}
	resp, err := h.issue(c, u)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes the given refresh token, or every refresh token of the
// caller when none is given.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	if err := c.Bind(&req); err != nil {
		return h.fail(c, errBadBody)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	var err error
	if req.RefreshToken != "" {
		err = h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(req.RefreshToken))
	} else {
		err = h.Tokens.RevokeAllForUser(ctx, caller(c).UserID)
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type meResp struct {
	User         model.User          `json:"user"`
	Capabilities access.Capabilities `json:"capabilities"`
	Views        []access.View       `json:"views"`
}

// Me returns the caller's account with the capabilities and dashboard
// views of the role carried by the access token.
func (h *AuthHandler) Me(c echo.Context) error {
	p := caller(c)
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	caps := p.Caps()
	return c.JSON(http.StatusOK, meResp{User: u, Capabilities: caps, Views: access.Views(caps)})
}

// Capabilities serves the full role table so clients share one source of
// truth with the server.
func (h *AuthHandler) Capabilities(c echo.Context) error {
	return c.JSON(http.StatusOK, access.Matrix())
}

func (h *AuthHandler) issue(c echo.Context, u model.User) (authResp, error) {
	now := h.now()
	at, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, string(u.Role), u.DistrictName(), h.Cfg.AccessTTL(), now)
	if err != nil {
		return authResp{}, err
	}
	rt, err := utils.NewRefreshToken(h.Cfg.RefreshTTL(), now)
	if err != nil {
		return authResp{}, err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(rt.Raw), rt.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:         u,
		Capabilities: access.Resolve(u.Role),
		Access:       tokenPart{Token: at.Token, Expires: at.Exp},
		Refresh:      tokenPart{Token: rt.Raw, Expires: rt.Exp},
	}, nil
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
