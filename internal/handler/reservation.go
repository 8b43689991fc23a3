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
	queue_publisher "github.com/gympoint/class-scheduler/internal/service"
)

// ReservationHandler books members into class sessions, cancels
// bookings and records attendance. Every write runs under a single
// serializable transaction so a full class can never oversell, even
// with concurrent bookings on the last seat.
type ReservationHandler struct {
	Templates    *repository.TemplateRepo
	Instances    *repository.InstanceRepo
	Reservations *repository.ReservationRepo
	MinLeadDays  int
	MaxLeadDays  int
}

func NewReservationHandler(t *repository.TemplateRepo, i *repository.InstanceRepo, r *repository.ReservationRepo, minLead, maxLead int) *ReservationHandler {
	return &ReservationHandler{Templates: t, Instances: i, Reservations: r, MinLeadDays: minLead, MaxLeadDays: maxLead}
}

// Reserve books the authenticated member into a session. Checks run in
// a fixed order inside the transaction: session live, booking window,
// no duplicate booking, free capacity. A member who cancelled earlier
// may book again; a fresh reservation row is written each time.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	instanceID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instance id"})
	}
	memberID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()
	res := &model.Reservation{MemberID: memberID, InstanceID: instanceID}

	err = database.RunSerializable(ctx, h.Instances.DB(), func(tx *sql.Tx) error {
		inst, err := h.Instances.GetByIDTx(ctx, tx, instanceID)
		if err != nil {
			return err
		}
		tpl, err := h.Templates.GetByIDTx(ctx, tx, inst.TemplateID)
		if err != nil {
			return err
		}
		dup, err := h.Reservations.HasReservedTx(ctx, tx, memberID, instanceID)
		if err != nil {
			return err
		}
		taken, err := h.Reservations.CountReservedTx(ctx, tx, instanceID)
		if err != nil {
			return err
		}
		check := schedule.BookingRequest{
			InstanceCancelled: inst.Cancelled(),
			ClassDate:         inst.ClassDate,
			Now:               now,
			MinLeadDays:       h.MinLeadDays,
			MaxLeadDays:       h.MaxLeadDays,
			AlreadyBooked:     dup,
			ReservedCount:     taken,
			Capacity:          tpl.Capacity,
		}
		if err := check.Check(); err != nil {
			return err
		}
		return h.Reservations.CreateTx(ctx, tx, res)
	})
	if err != nil {
		return writeError(c, err)
	}

	go h.publishConfirmed(res)

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation_id": res.ID,
		"instance_id":    res.InstanceID,
		"status":         res.Status,
		"reserved_at":    res.ReservedAt,
	})
}

func (h *ReservationHandler) publishConfirmed(res *model.Reservation) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	detail, err := h.Instances.GetDetail(ctx, res.InstanceID)
	if err != nil {
		log.Printf("reservation: load detail for event: %v", err)
		return
	}
	ev := queue.ReservationConfirmedEvent{
		ReservationID:  res.ID,
		MemberID:       res.MemberID,
		InstanceID:     res.InstanceID,
		ClassName:      detail.ClassName,
		InstructorName: detail.InstructorName,
		ClassDate:      detail.ClassDate,
		StartTime:      detail.StartTime,
		EndTime:        detail.EndTime,
		Room:           detail.Room,
		ConfirmedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue_publisher.PublishReservationConfirmed(ctx, ev); err != nil {
		log.Printf("reservation: publish confirmation event: %v", err)
	}
}

// Cancel releases the member's live booking on a session. Allowed only
// while the class date is still in the future; same-day and past
// sessions can no longer be cancelled.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	instanceID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instance id"})
	}
	memberID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()
	err = database.RunSerializable(ctx, h.Instances.DB(), func(tx *sql.Tx) error {
		inst, err := h.Instances.GetByIDTx(ctx, tx, instanceID)
		if err != nil {
			return err
		}
		if err := schedule.CheckCancelLead(inst.ClassDate, now); err != nil {
			return err
		}
		return h.Reservations.CancelReservedTx(ctx, tx, memberID, instanceID)
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled"})
}

type attendanceRequest struct {
	PresentMemberIDs []uint64 `json:"present_member_ids"`
}

// MarkAttendance records who showed up. Members in present_member_ids
// are marked PRESENT, every other live reservation ABSENT. Re-marking
// flips PRESENT and ABSENT freely; cancelled reservations are never
// touched. Marking is refused before the class date.
func (h *ReservationHandler) MarkAttendance(c echo.Context) error {
	instanceID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instance id"})
	}
	var req attendanceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	present := make(map[uint64]bool, len(req.PresentMemberIDs))
	for _, id := range req.PresentMemberIDs {
		present[id] = true
	}

	ctx := c.Request().Context()
	today := schedule.DateOnly(time.Now().UTC())
	var presentN, absentN int

	err := database.RunSerializable(ctx, h.Instances.DB(), func(tx *sql.Tx) error {
		presentN, absentN = 0, 0
		inst, err := h.Instances.GetByIDTx(ctx, tx, instanceID)
		if err != nil {
			return err
		}
		tpl, err := h.Templates.GetByIDTx(ctx, tx, inst.TemplateID)
		if err != nil {
			return err
		}
		if err := ownsTemplate(c, tpl); err != nil {
			return err
		}
		if inst.Cancelled() {
			return schedule.InvalidOpf("class is cancelled")
		}
		if schedule.DateOnly(inst.ClassDate).After(today) {
			return schedule.InvalidOpf("cannot mark attendance before the class date")
		}
		rows, err := h.Reservations.ListByInstanceTx(ctx, tx, instanceID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return schedule.InvalidOpf("class has no reservations")
		}
		for i := range rows {
			r := &rows[i]
			next, ok := schedule.MarkState(r.Status, present[r.MemberID])
			if !ok {
				continue
			}
			if next == schedule.StatePresent {
				presentN++
			} else {
				absentN++
			}
			if next == r.Status {
				continue
			}
			if err := h.Reservations.SetStatusTx(ctx, tx, r.ID, next); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"present": presentN, "absent": absentN})
}

// ListMine returns the caller's reservation history, newest class first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	memberID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	details, err := h.Reservations.ListForMember(c.Request().Context(), memberID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": details})
}

// ListRoster returns every reservation on a session for its instructor.
func (h *ReservationHandler) ListRoster(c echo.Context) error {
	instanceID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instance id"})
	}
	ctx := c.Request().Context()
	inst, err := h.Instances.GetDetail(ctx, instanceID)
	if err != nil {
		return writeError(c, err)
	}
	tpl, err := h.Templates.GetByID(ctx, inst.TemplateID)
	if err != nil {
		return writeError(c, err)
	}
	if err := ownsTemplate(c, tpl); err != nil {
		return writeError(c, err)
	}
	roster, err := h.Reservations.ListRoster(ctx, instanceID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"instance": inst, "roster": roster})
}
