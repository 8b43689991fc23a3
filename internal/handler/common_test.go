package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gympoint/class-scheduler/internal/database"
	"github.com/gympoint/class-scheduler/internal/repository"
	"github.com/gympoint/class-scheduler/internal/schedule"
)

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", schedule.Validationf("bad input"), http.StatusBadRequest},
		{"not found kind", schedule.NotFoundf("nothing here"), http.StatusNotFound},
		{"conflict", schedule.Conflictf("slot taken"), http.StatusConflict},
		{"invalid operation", schedule.InvalidOpf("class is full"), http.StatusUnprocessableEntity},
		{"tx conflict", database.ErrTxConflict, http.StatusServiceUnavailable},
		{"template missing", repository.ErrTemplateNotFound, http.StatusNotFound},
		{"instance missing", repository.ErrInstanceNotFound, http.StatusNotFound},
		{"reservation missing", repository.ErrReservationNotFound, http.StatusNotFound},
		{"forbidden", repository.ErrForbidden, http.StatusForbidden},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := writeError(c, tc.err); err != nil {
			t.Fatalf("%s: writeError returned %v", tc.name, err)
		}
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}

func TestWriteErrorSetsRetryAfter(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := writeError(c, database.ErrTxConflict); err != nil {
		t.Fatalf("writeError: %v", err)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected a Retry-After header on 503")
	}
}

func TestGetUserID(t *testing.T) {
	e := echo.New()
	for _, v := range []any{uint64(42), int(42), int64(42), float64(42), "42"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.Set("user_id", v)
		id, err := getUserID(c)
		if err != nil || id != 42 {
			t.Errorf("getUserID(%T) = (%d, %v), want (42, nil)", v, id, err)
		}
	}
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if _, err := getUserID(c); err == nil {
		t.Fatal("missing user_id: expected error")
	}
}

func TestParseWeekday(t *testing.T) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		got, err := parseWeekday(d.String())
		if err != nil || got != d {
			t.Errorf("parseWeekday(%q) = (%v, %v)", d.String(), got, err)
		}
	}
	if got, err := parseWeekday("tuesday"); err != nil || got != time.Tuesday {
		t.Errorf("parseWeekday is not case-insensitive: (%v, %v)", got, err)
	}
	for _, bad := range []string{"", "Tues", "Funday"} {
		if _, err := parseWeekday(bad); err == nil {
			t.Errorf("parseWeekday(%q): expected error", bad)
		}
	}
}
