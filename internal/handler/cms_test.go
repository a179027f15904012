package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civdef/volunteer-portal/internal/model"
)

func TestPutBlock(t *testing.T) {
	store := newFakeContent()
	h := NewCMSHandler(testBase(nil), store)

	rec := callAs(t, cmsManager, http.MethodPut, "/cms/blocks/:key", "/cms/blocks/Home%20Hero",
		map[string]string{"body": "x"}, h.PutBlock)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = callAs(t, cmsManager, http.MethodPut, "/cms/blocks/:key", "/cms/blocks/home.hero.title",
		map[string]string{"title": "Welcome", "body": "<p>Join us</p>"}, h.PutBlock)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, store.blocks["home.hero.title"].UpdatedBy)
	assert.Equal(t, "cms", *store.blocks["home.hero.title"].UpdatedBy)

	rec = callAs(t, anonymous, http.MethodGet, "/cms/blocks/:key", "/cms/blocks/home.hero.title", nil, h.GetBlock)
	assert.Equal(t, "Welcome", decode[model.ContentBlock](t, rec).Title)
	rec = callAs(t, anonymous, http.MethodGet, "/cms/blocks/:key", "/cms/blocks/nope", nil, h.GetBlock)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBanners(t *testing.T) {
	store := newFakeContent()
	h := NewCMSHandler(testBase(nil), store)

	rec := callAs(t, cmsManager, http.MethodPost, "/cms/banners", "/cms/banners",
		map[string]any{"title": "Monsoon drive", "linkUrl": "not a url"}, h.CreateBanner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = callAs(t, cmsManager, http.MethodPost, "/cms/banners", "/cms/banners",
		map[string]any{"title": "Monsoon drive", "linkUrl": "https://example.org/join", "position": 1}, h.CreateBanner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	b := decode[model.Banner](t, rec)
	assert.True(t, b.Active)

	rec = callAs(t, cmsManager, http.MethodPost, "/cms/banners", "/cms/banners",
		map[string]any{"title": "Draft", "active": false}, h.CreateBanner)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = callAs(t, anonymous, http.MethodGet, "/cms/banners", "/cms/banners", nil, h.ActiveBanners)
	assert.Len(t, decode[[]model.Banner](t, rec), 1)
	rec = callAs(t, cmsManager, http.MethodGet, "/cms/banners/all", "/cms/banners/all", nil, h.AllBanners)
	assert.Len(t, decode[[]model.Banner](t, rec), 2)

	rec = callAs(t, cmsManager, http.MethodPatch, "/cms/banners/:id", "/cms/banners/"+b.ID,
		map[string]any{"active": false}, h.UpdateBanner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, store.banners[b.ID].Active)
	assert.Equal(t, "Monsoon drive", store.banners[b.ID].Title)

	rec = callAs(t, cmsManager, http.MethodPatch, "/cms/banners/:id", "/cms/banners/missing",
		map[string]any{"active": true}, h.UpdateBanner)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReferenceLists(t *testing.T) {
	h := NewReferenceHandler(testBase(nil), newFakeRefs("Puri", "Cuttack"))
	rec := callAs(t, anonymous, http.MethodGet, "/districts", "/districts", nil, h.Districts)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.District](t, rec), 2)

	rec = callAs(t, anonymous, http.MethodGet, "/departments", "/departments", nil, h.Departments)
	assert.Equal(t, "FIRE", decode[[]model.Department](t, rec)[0].Code)
}

func TestFailHidesUnexpectedErrors(t *testing.T) {
	b := testBase(nil)
	rec := callAs(t, anonymous, http.MethodGet, "/boom", "/boom", nil, func(c echo.Context) error {
		return b.fail(c, errors.New("dial tcp 10.0.0.3:3306: connection refused"))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}
