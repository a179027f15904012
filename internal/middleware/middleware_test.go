package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/civdef/volunteer-portal/internal/access"
	"github.com/civdef/volunteer-portal/internal/config"
	"github.com/civdef/volunteer-portal/internal/model"
	"github.com/civdef/volunteer-portal/internal/utils"
)

const secret = "0123456789abcdef0123"

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func serve(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, role model.Role, district string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, "u-1", string(role), district, time.Minute, time.Now())
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	var got access.Principal
	e.GET("/me", func(c echo.Context) error {
		p, ok := CurrentPrincipal(c)
		require.True(t, ok)
		got = p
		return c.NoContent(http.StatusNoContent)
	}, JWTAuth(secret))

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/me", "Bearer nope").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/me", "Basic abc").Code)

	rec := serve(e, http.MethodGet, "/me", bearer(t, model.RoleDistrictAdmin, "Puri"))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, access.Principal{UserID: "u-1", Role: model.RoleDistrictAdmin, District: "Puri"}, got)
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	e := echo.New()
	e.GET("/me", okHandler, JWTAuth("another-secret-value"))
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/me", bearer(t, model.RoleStateAdmin, "")).Code)
}

func TestRequireCapability(t *testing.T) {
	e := echo.New()
	e.GET("/users", okHandler, JWTAuth(secret), RequireCapability(CanManageUsers))
	e.GET("/cms", okHandler, JWTAuth(secret), RequireCapability(CanManageCMS))

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/users", bearer(t, model.RoleStateAdmin, "")).Code)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/users", bearer(t, model.RoleDistrictAdmin, "Puri")).Code)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/users", bearer(t, "superuser", "")).Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/cms", bearer(t, model.RoleCMSManager, "")).Code)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/cms", bearer(t, model.RoleVolunteer, "")).Code)
}

func TestRequireCapability_NoPrincipal(t *testing.T) {
	e := echo.New()
	e.GET("/x", okHandler, RequireCapability(CanManageInventory))
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/x", "").Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/ok", okHandler)
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusInternalServerError, "boom") })

	serve(e, http.MethodGet, "/ok", "")
	serve(e, http.MethodGet, "/missing", "")
	rec := serve(e, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "anon", entries[2].ContextMap()["user_id"])
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/auth/login")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}
	assert.Equal(t, "rl:ip:10.0.0.7:route:POST /api/auth/login", rateKey(cfg, c))

	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:anon", rateKey(cfg, c))

	WithPrincipal(c, access.Principal{UserID: "u-9", Role: model.RoleVolunteer})
	cfg.KeyStrategy = "ip_user"
	assert.Equal(t, "rl:ip:10.0.0.7:user:u-9", rateKey(cfg, c))

	cfg.KeyStrategy = "bogus"
	assert.Equal(t, "rl:ip:10.0.0.7", rateKey(cfg, c))
}

// unreachableRedis points at a closed port so every command fails fast.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestTokenBucket_DisabledOrNoRedis(t *testing.T) {
	e := echo.New()
	e.GET("/a", okHandler, NewTokenBucket(config.RateLimitConfig{Enabled: false}, unreachableRedis(t), zap.NewNop()))
	e.GET("/b", okHandler, NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, zap.NewNop()))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/a", "").Code)
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/b", "").Code)
	}
}

func TestTokenBucket_FailsOpen(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl", KeyStrategy: "ip"}
	e := echo.New()
	e.GET("/a", okHandler, NewTokenBucket(cfg, unreachableRedis(t), zap.New(core)))

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/a", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/a", "").Code)
	assert.Equal(t, 2, logs.FilterMessage("limiter unavailable").Len())
}

func TestCache_FailsOpen(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 1024}
	e := echo.New()
	e.GET("/content", okHandler, NewRedisCache(cfg, unreachableRedis(t)))

	rec := serve(e, http.MethodGet, "/content", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestCacheKey(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache"}
	mk := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/api/content")
		return cacheKey(cfg, c)
	}
	assert.Equal(t, mk("/api/content?a=1"), mk("/api/content?a=1"))
	assert.NotEqual(t, mk("/api/content?a=1"), mk("/api/content?a=2"))
	assert.Regexp(t, `^cache:[0-9a-f]{40}$`, mk("/api/content"))
}

func TestCacheKeyUsesConcretePath(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache"}
	mk := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/api/cms/content/:key")
		return cacheKey(cfg, c)
	}
	assert.NotEqual(t, mk("/api/cms/content/home"), mk("/api/cms/content/about"))
	assert.Equal(t, mk("/api/cms/content/home"), mk("/api/cms/content/home"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
	_, _, _, ok = decodePayload(append([]byte{0, 0, 0, 200, 0, 0, 1, 0}, '{'))
	assert.False(t, ok)
}

func TestCaptureWriterOverflow(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	assert.False(t, cw.overflow)
	_, _ = cw.Write([]byte("def"))
	assert.True(t, cw.overflow)
	assert.Equal(t, "abcdef", rec.Body.String())
}
