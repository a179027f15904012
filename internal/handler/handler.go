// Package handler implements the HTTP endpoints of the portal.  Handlers
// read the caller from the request context, run the workflow rules from
// package workflow and persist through the store interfaces declared in
// stores.go.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/civdef/volunteer-portal/internal/access"
	"github.com/civdef/volunteer-portal/internal/middleware"
	"github.com/civdef/volunteer-portal/internal/queue"
)

// dbTimeout bounds the storage work of one request.
const dbTimeout = 5 * time.Second

// Base carries the dependencies every handler shares.
type Base struct {
	Log *zap.Logger
	Pub queue.Publisher
	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// NewBase returns a Base that publishes to pub and logs to log.
func NewBase(log *zap.Logger, pub queue.Publisher) Base {
	if pub == nil {
		pub = queue.NopPublisher{}
	}
	return Base{Log: log, Pub: pub}
}

// now is truncated to whole seconds to match DATETIME columns.
func (b Base) now() time.Time {
	if b.Clock != nil {
		return b.Clock().UTC().Truncate(time.Second)
	}
	return time.Now().UTC().Truncate(time.Second)
}

func (b Base) emit(c echo.Context, ev queue.Event) {
	queue.Emit(context.WithoutCancel(c.Request().Context()), b.Pub, b.Log, ev)
}

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// caller returns the principal set by the auth middleware.  Routes that
// use it are always mounted behind JWTAuth.
func caller(c echo.Context) access.Principal {
	p, _ := middleware.CurrentPrincipal(c)
	return p
}

// bind decodes the request body into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errBadBody
	}
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}
	return c.Validate(req)
}

// normalizer is implemented by request bodies that clean their fields
// before validation.
type normalizer interface{ normalize() }

// knownDistrict rejects names that are not an exact match for a
// reference district.
func knownDistrict(ctx context.Context, refs ReferenceStore, name string) error {
	ok, err := refs.DistrictExists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return invalid("unknown district")
	}
	return nil
}

// Health is the liveness probe used by load balancers.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
