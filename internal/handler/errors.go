package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/civdef/volunteer-portal/internal/repository"
	"github.com/civdef/volunteer-portal/internal/utils"
	"github.com/civdef/volunteer-portal/internal/validation"
	"github.com/civdef/volunteer-portal/internal/workflow"
)

var (
	errBadBody = errors.New("invalid body")
	// errHidden is returned for records outside the caller's scope so their
	// existence is not disclosed.
	errHidden = repository.ErrNotFound
)

// fail writes the JSON error response for err.  Validation problems are
// 400, missing capabilities 403, unknown or out-of-scope records 404 and
// state conflicts 409.  Anything else is logged and reported as 500.
func (b Base) fail(c echo.Context, err error) error {
	var ve *validation.Error
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": ve.Fields})
	case errors.Is(err, errBadBody):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, workflow.ErrInvalid), errors.Is(err, utils.ErrWeakPassword):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, workflow.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, workflow.ErrStateConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "record changed, reload and retry"})
	}
	b.Log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// invalid builds a validation error for a single message.
func invalid(msg string) error { return fmt.Errorf("%w: %s", workflow.ErrInvalid, msg) }
