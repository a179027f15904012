package handler

import (
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	"github.com/civdef/volunteer-portal/internal/model"
)

// CMSHandler serves editable site content.  Reads are public; writes need
// CanManageCMS.  The content store sanitises everything it saves.
type CMSHandler struct {
	Base
	Content ContentStore
}

func NewCMSHandler(b Base, s ContentStore) *CMSHandler {
	return &CMSHandler{Base: b, Content: s}
}

// contentKey matches dotted keys such as "home.hero.title".
var contentKey = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,99}$`)

type blockReq struct {
	Title string `json:"title" validate:"max=200"`
	Body  string `json:"body" validate:"required,max=65535"`
}

type bannerReq struct {
	Title    string `json:"title" validate:"required,max=200"`
	Subtitle string `json:"subtitle" validate:"max=300"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url,max=500"`
	LinkURL  string `json:"linkUrl" validate:"omitempty,url,max=500"`
	Position int    `json:"position" validate:"min=0"`
	Active   *bool  `json:"active"`
}

type bannerPatchReq struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=200"`
	Subtitle *string `json:"subtitle" validate:"omitempty,max=300"`
	ImageURL *string `json:"imageUrl" validate:"omitempty,url,max=500"`
	LinkURL  *string `json:"linkUrl" validate:"omitempty,url,max=500"`
	Position *int    `json:"position" validate:"omitempty,min=0"`
	Active   *bool   `json:"active"`
}

func (h *CMSHandler) ListBlocks(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	bs, err := h.Content.ListBlocks(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, bs)
}

func (h *CMSHandler) GetBlock(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	b, err := h.Content.GetBlock(ctx, c.Param("key"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// PutBlock creates or replaces the block at :key.
func (h *CMSHandler) PutBlock(c echo.Context) error {
	key := c.Param("key")
	if !contentKey.MatchString(key) {
		return h.fail(c, invalid("content key must be lower-case letters, digits, dots, dashes or underscores"))
	}
	var req blockReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	by := caller(c).UserID
	b := model.ContentBlock{Key: key, Title: req.Title, Body: req.Body, UpdatedBy: &by}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Content.PutBlock(ctx, &b); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// ActiveBanners is the public banner carousel.
func (h *CMSHandler) ActiveBanners(c echo.Context) error { return h.banners(c, true) }

// AllBanners includes inactive banners for editors.
func (h *CMSHandler) AllBanners(c echo.Context) error { return h.banners(c, false) }

func (h *CMSHandler) banners(c echo.Context, activeOnly bool) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	bs, err := h.Content.ListBanners(ctx, activeOnly)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, bs)
}

func (h *CMSHandler) CreateBanner(c echo.Context) error {
	var req bannerReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	b := model.Banner{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		ImageURL: req.ImageURL,
		LinkURL:  req.LinkURL,
		Position: req.Position,
		Active:   req.Active == nil || *req.Active,
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Content.CreateBanner(ctx, &b); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *CMSHandler) UpdateBanner(c echo.Context) error {
	var req bannerPatchReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	b, err := h.Content.GetBanner(ctx, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Subtitle != nil {
		b.Subtitle = *req.Subtitle
	}
	if req.ImageURL != nil {
		b.ImageURL = *req.ImageURL
	}
	if req.LinkURL != nil {
		b.LinkURL = *req.LinkURL
	}
	if req.Position != nil {
		b.Position = *req.Position
	}
	if req.Active != nil {
		b.Active = *req.Active
	}
	if err := h.Content.UpdateBanner(ctx, &b); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}
