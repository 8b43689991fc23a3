package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gympoint/class-scheduler/internal/repository"
	"github.com/gympoint/class-scheduler/internal/schedule"
)

// ScheduleHandler serves read-only calendar projections. These answers
// change slowly, so the router puts them behind the response cache.
type ScheduleHandler struct {
	Instances *repository.InstanceRepo
}

func NewScheduleHandler(i *repository.InstanceRepo) *ScheduleHandler {
	return &ScheduleHandler{Instances: i}
}

// Day returns every session on one calendar date, cancelled ones
// included so the front desk sees the gaps.
func (h *ScheduleHandler) Day(c echo.Context) error {
	date, err := time.ParseInLocation("2006-01-02", c.Param("date"), time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	details, err := h.Instances.ListByDate(c.Request().Context(), date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":    date.Format("2006-01-02"),
		"classes": details,
	})
}

// Instructor returns an instructor's upcoming sessions from today on.
func (h *ScheduleHandler) Instructor(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instructor id"})
	}
	from := schedule.DateOnly(time.Now().UTC())
	details, err := h.Instances.ListByInstructor(c.Request().Context(), id, from)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"instructor_id": id,
		"classes":       details,
	})
}
