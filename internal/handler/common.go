// Package handler contains the HTTP handlers. Each handler struct bundles
// the repositories it needs; JWT authentication and role checks have
// already run in middleware by the time a handler executes. Write
// operations open a single serializable transaction per request.
package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gympoint/class-scheduler/internal/database"
	"github.com/gympoint/class-scheduler/internal/repository"
	"github.com/gympoint/class-scheduler/internal/schedule"
)

// getUserID extracts the authenticated user's id from the echo context,
// tolerating the numeric types a decoded JWT claim may arrive as.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// parseWeekday accepts an English weekday name, case-insensitive.
func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s != "" && strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, schedule.Validationf("invalid weekday %q", s)
}

// writeError maps domain and repository failures onto HTTP responses.
// Every rejected operation carries a reason string distinct enough to
// render directly. Unexpected errors are logged and hidden behind a 500.
func writeError(c echo.Context, err error) error {
	var se *schedule.Error
	switch {
	case errors.As(err, &se):
		var code int
		switch se.Kind {
		case schedule.KindValidation:
			code = http.StatusBadRequest
		case schedule.KindNotFound:
			code = http.StatusNotFound
		case schedule.KindConflict:
			code = http.StatusConflict
		default:
			code = http.StatusUnprocessableEntity
		}
		return c.JSON(code, echo.Map{"error": se.Reason})
	case errors.Is(err, database.ErrTxConflict):
		// The serializable transaction was aborted twice by concurrent
		// writers. Retryable, never silently partial.
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "schedule is busy, please retry"})
	case errors.Is(err, repository.ErrTemplateNotFound),
		errors.Is(err, repository.ErrInstanceNotFound),
		errors.Is(err, repository.ErrReservationNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		log.Printf("handler: internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}
