package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gympoint/class-scheduler/internal/database"
	"github.com/gympoint/class-scheduler/internal/model"
	"github.com/gympoint/class-scheduler/internal/queue"
	"github.com/gympoint/class-scheduler/internal/repository"
	"github.com/gympoint/class-scheduler/internal/schedule"
	"github.com/gympoint/class-scheduler/internal/scheduler"
	queue_publisher "github.com/gympoint/class-scheduler/internal/service"
)

// InstanceHandler places concrete class sessions on the calendar and
// takes them off again. Materialization itself lives in the scheduler
// service; this layer adds ownership checks and the HTTP shape.
type InstanceHandler struct {
	Sched        *scheduler.Scheduler
	Templates    *repository.TemplateRepo
	Instances    *repository.InstanceRepo
	Reservations *repository.ReservationRepo
	WindowDays   int
}

func NewInstanceHandler(s *scheduler.Scheduler, t *repository.TemplateRepo, i *repository.InstanceRepo, r *repository.ReservationRepo, windowDays int) *InstanceHandler {
	return &InstanceHandler{Sched: s, Templates: t, Instances: i, Reservations: r, WindowDays: windowDays}
}

// ownsTemplate rejects instructors touching another instructor's class.
// Admins pass through.
func ownsTemplate(c echo.Context, tpl *model.ClassTemplate) error {
	if role, _ := c.Get("role").(string); role == model.RoleAdmin {
		return nil
	}
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	if tpl.InstructorID != uid {
		return repository.ErrForbidden
	}
	return nil
}

type createInstanceRequest struct {
	TemplateID uint64 `json:"template_id" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Room       int    `json:"room" validate:"required"`
}

// Create puts a single session of a template on the calendar on the
// requested date and room.
func (h *InstanceHandler) Create(c echo.Context) error {
	var req createInstanceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return writeError(c, schedule.Validationf("invalid date %q, want YYYY-MM-DD", req.Date))
	}

	ctx := c.Request().Context()
	tpl, err := h.Templates.GetByID(ctx, req.TemplateID)
	if err != nil {
		return writeError(c, err)
	}
	if err := ownsTemplate(c, tpl); err != nil {
		return writeError(c, err)
	}

	inst, err := h.Sched.CreateInstance(ctx, req.TemplateID, date, req.Room)
	if err != nil {
		return writeError(c, err)
	}
	detail, err := h.Instances.GetDetail(ctx, inst.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, detail)
}

type generateRequest struct {
	WindowDays int `json:"window_days" validate:"omitempty,gt=0,lte=60"`
}

// Generate materializes the caller's active templates over the rolling
// window, skipping dates that are already scheduled or out of rooms.
func (h *InstanceHandler) Generate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	window := req.WindowDays
	if window == 0 {
		window = h.WindowDays
	}
	created, err := h.Sched.GenerateForInstructor(c.Request().Context(), uid, window)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"created": created, "window_days": window})
}

// Cancel takes a session off the calendar and cancels every live
// reservation on it in the same transaction, then notifies downstream.
func (h *InstanceHandler) Cancel(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instance id"})
	}

	ctx := c.Request().Context()
	var (
		tpl       *model.ClassTemplate
		inst      *model.ClassInstance
		cancelled int
	)
	err := database.RunSerializable(ctx, h.Instances.DB(), func(tx *sql.Tx) error {
		var err error
		inst, err = h.Instances.GetByIDTx(ctx, tx, id)
		if err != nil {
			return err
		}
		tpl, err = h.Templates.GetByIDTx(ctx, tx, inst.TemplateID)
		if err != nil {
			return err
		}
		if err := ownsTemplate(c, tpl); err != nil {
			return err
		}
		if err := schedule.CheckInstanceCancel(inst.Cancelled()); err != nil {
			return err
		}
		if err := h.Instances.CancelTx(ctx, tx, id); err != nil {
			return err
		}
		cancelled, err = h.Reservations.CancelAllReservedTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}

	go publishInstanceCancelled(tpl, inst, cancelled)

	return c.JSON(http.StatusOK, echo.Map{
		"message":                "class cancelled",
		"cancelled_reservations": cancelled,
	})
}

func publishInstanceCancelled(tpl *model.ClassTemplate, inst *model.ClassInstance, cancelled int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ev := queue.InstanceCancelledEvent{
		InstanceID:            inst.ID,
		TemplateID:            tpl.ID,
		ClassName:             tpl.Name,
		ClassDate:             inst.ClassDate.Format("2006-01-02"),
		Room:                  inst.Room,
		CancelledReservations: cancelled,
		CancelledAt:           time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue_publisher.PublishInstanceCancelled(ctx, ev); err != nil {
		log.Printf("instance: publish cancellation event: %v", err)
	}
}

// ListUpcoming returns today's and future live sessions with seat
// counts, for the booking screens.
func (h *InstanceHandler) ListUpcoming(c echo.Context) error {
	today := schedule.DateOnly(time.Now().UTC())
	details, err := h.Instances.ListUpcoming(c.Request().Context(), today)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"instances": details})
}
