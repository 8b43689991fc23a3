package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gympoint/class-scheduler/internal/database"
	"github.com/gympoint/class-scheduler/internal/model"
	"github.com/gympoint/class-scheduler/internal/repository"
	"github.com/gympoint/class-scheduler/internal/schedule"
)

// TemplateHandler manages the weekly class catalogue: creation, slot
// changes, instructor reassignment and activation state.
type TemplateHandler struct {
	Templates *repository.TemplateRepo
	Instances *repository.InstanceRepo
	Users     *repository.UserRepo
	RestDay   time.Weekday
}

func NewTemplateHandler(t *repository.TemplateRepo, i *repository.InstanceRepo, u *repository.UserRepo, restDay time.Weekday) *TemplateHandler {
	return &TemplateHandler{Templates: t, Instances: i, Users: u, RestDay: restDay}
}

type templateResponse struct {
	ID           uint64 `json:"id"`
	InstructorID uint64 `json:"instructor_id"`
	Name         string `json:"name"`
	Weekday      string `json:"weekday"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Capacity     int    `json:"capacity"`
	Active       bool   `json:"active"`
}

func toTemplateResponse(t *model.ClassTemplate) templateResponse {
	return templateResponse{
		ID:           t.ID,
		InstructorID: t.InstructorID,
		Name:         t.Name,
		Weekday:      t.Weekday.String(),
		StartTime:    t.StartTime,
		EndTime:      t.EndTime,
		Capacity:     t.Capacity,
		Active:       t.Active(),
	}
}

type createTemplateRequest struct {
	InstructorID uint64 `json:"instructor_id" validate:"required"`
	Name         string `json:"name" validate:"required,max=120"`
	Weekday      string `json:"weekday" validate:"required"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	Capacity     int    `json:"capacity" validate:"required,gt=0"`
}

// checkInstructor verifies the referenced user exists and teaches.
func (h *TemplateHandler) checkInstructor(c echo.Context, id uint64) (*model.User, error) {
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return nil, schedule.Validationf("unknown instructor %d", id)
		}
		return nil, err
	}
	if u.Role != model.RoleInstructor || !u.IsActive {
		return nil, schedule.Validationf("user %d is not an active instructor", id)
	}
	return u, nil
}

// Create registers a new weekly class template after checking the slot
// does not collide with the instructor's existing active templates.
func (h *TemplateHandler) Create(c echo.Context) error {
	var req createTemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	weekday, err := parseWeekday(req.Weekday)
	if err != nil {
		return writeError(c, err)
	}
	if err := schedule.CheckTemplateDay(weekday, h.RestDay); err != nil {
		return writeError(c, err)
	}
	start, err := schedule.ParseClock(req.StartTime)
	if err != nil {
		return writeError(c, schedule.Validationf("invalid start_time: %v", err))
	}
	end, err := schedule.ParseClock(req.EndTime)
	if err != nil {
		return writeError(c, schedule.Validationf("invalid end_time: %v", err))
	}
	window := schedule.Window{Start: start, End: end}
	if !window.Valid() {
		return writeError(c, schedule.Validationf("start time must be before end time"))
	}
	if _, err := h.checkInstructor(c, req.InstructorID); err != nil {
		return writeError(c, err)
	}

	tpl := &model.ClassTemplate{
		InstructorID: req.InstructorID,
		Name:         req.Name,
		Weekday:      weekday,
		StartTime:    start.String(),
		EndTime:      end.String(),
		Capacity:     req.Capacity,
	}

	ctx := c.Request().Context()
	err = database.RunSerializable(ctx, h.Templates.DB(), func(tx *sql.Tx) error {
		existing, err := h.Templates.ListActiveByInstructorTx(ctx, tx, req.InstructorID)
		if err != nil {
			return err
		}
		target := schedule.Slot{Weekday: weekday, Window: window}
		if kind, _ := schedule.Classify(target, slotsOf(existing)); kind != schedule.NoConflict {
			return schedule.Conflictf("instructor already teaches a class overlapping %s %s-%s",
				weekday, req.StartTime, req.EndTime)
		}
		return h.Templates.CreateTx(ctx, tx, tpl)
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toTemplateResponse(tpl))
}

type updateTemplateRequest struct {
	InstructorID *uint64 `json:"instructor_id"`
	Name         *string `json:"name" validate:"omitempty,max=120"`
	Weekday      *string `json:"weekday"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
	Capacity     *int    `json:"capacity" validate:"omitempty,gt=0"`
	ForceSwap    bool    `json:"force_swap"`
}

// mergeTemplateUpdate folds a partial edit onto the stored template and
// reports whether anything actually changes. Pure value logic: instructor
// existence, rest day and conflict checks run afterwards on the result.
func mergeTemplateUpdate(cur *model.ClassTemplate, req *updateTemplateRequest) (next model.ClassTemplate, changed bool, err error) {
	next = *cur
	if req.Name != nil && *req.Name != cur.Name {
		if *req.Name == "" {
			return next, false, schedule.Validationf("name must not be empty")
		}
		next.Name = *req.Name
		changed = true
	}
	if req.Capacity != nil && *req.Capacity != cur.Capacity {
		next.Capacity = *req.Capacity
		changed = true
	}
	if req.InstructorID != nil && *req.InstructorID != cur.InstructorID {
		next.InstructorID = *req.InstructorID
		changed = true
	}
	if req.Weekday != nil {
		wd, err := parseWeekday(*req.Weekday)
		if err != nil {
			return next, false, err
		}
		if wd != cur.Weekday {
			next.Weekday = wd
			changed = true
		}
	}
	if req.StartTime != nil {
		t, err := schedule.ParseClock(*req.StartTime)
		if err != nil {
			return next, false, schedule.Validationf("invalid start_time: %v", err)
		}
		if t.String() != cur.StartTime {
			next.StartTime = t.String()
			changed = true
		}
	}
	if req.EndTime != nil {
		t, err := schedule.ParseClock(*req.EndTime)
		if err != nil {
			return next, false, schedule.Validationf("invalid end_time: %v", err)
		}
		if t.String() != cur.EndTime {
			next.EndTime = t.String()
			changed = true
		}
	}
	return next, changed, nil
}

// Update edits a template. When the new slot exactly matches another
// template of the same instructor and force_swap is set, the two
// templates exchange their slots instead, provided neither has classes
// already on the calendar.
func (h *TemplateHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template id"})
	}
	var req updateTemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	cur, err := h.Templates.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	next, changed, err := mergeTemplateUpdate(cur, &req)
	if err != nil {
		return writeError(c, err)
	}
	if !changed {
		return c.JSON(http.StatusOK, echo.Map{"message": "no changes"})
	}
	if next.InstructorID != cur.InstructorID {
		if _, err := h.checkInstructor(c, next.InstructorID); err != nil {
			return writeError(c, err)
		}
	}
	if err := schedule.CheckTemplateDay(next.Weekday, h.RestDay); err != nil {
		return writeError(c, err)
	}
	window, err := next.Window()
	if err != nil {
		return writeError(c, schedule.Validationf("invalid class times: %v", err))
	}
	if !window.Valid() {
		return writeError(c, schedule.Validationf("start time must be before end time"))
	}

	ctx := c.Request().Context()
	swapped := false
	err = database.RunSerializable(ctx, h.Templates.DB(), func(tx *sql.Tx) error {
		swapped = false
		existing, err := h.Templates.ListActiveByInstructorTx(ctx, tx, next.InstructorID)
		if err != nil {
			return err
		}
		target := schedule.Slot{ID: next.ID, Weekday: next.Weekday, Window: window}
		kind, hit := schedule.Classify(target, slotsOf(existing))
		switch kind {
		case schedule.NoConflict:
			return h.Templates.UpdateSlotTx(ctx, tx, &next)
		case schedule.ExactMatch:
			if !req.ForceSwap {
				return schedule.Conflictf("another class holds this exact slot; set force_swap to exchange slots")
			}
			other, err := h.Templates.GetByIDTx(ctx, tx, hit.ID)
			if err != nil {
				return err
			}
			today := schedule.DateOnly(time.Now().UTC())
			targetLive, err := h.Instances.HasLiveFutureTx(ctx, tx, cur.ID, today)
			if err != nil {
				return err
			}
			otherLive, err := h.Instances.HasLiveFutureTx(ctx, tx, other.ID, today)
			if err != nil {
				return err
			}
			if err := schedule.CheckSlotSwap(next.InstructorID != cur.InstructorID, targetLive, otherLive); err != nil {
				return err
			}
			if err := h.Templates.SwapSlotsTx(ctx, tx, cur, other); err != nil {
				return err
			}
			swapped = true
			// Non-slot edits still apply to the target template, which
			// now carries the other template's former slot.
			if next.Name != cur.Name || next.Capacity != cur.Capacity {
				after := next
				after.Weekday = other.Weekday
				after.StartTime = other.StartTime
				after.EndTime = other.EndTime
				return h.Templates.UpdateSlotTx(ctx, tx, &after)
			}
			return nil
		default:
			return schedule.Conflictf("slot overlaps another class of this instructor")
		}
	})
	if err != nil {
		return writeError(c, err)
	}

	updated, err := h.Templates.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	resp := echo.Map{"template": toTemplateResponse(updated)}
	if swapped {
		resp["message"] = "slots exchanged"
	}
	return c.JSON(http.StatusOK, resp)
}

type assignInstructorRequest struct {
	InstructorID uint64 `json:"instructor_id" validate:"required"`
}

// AssignInstructor hands a template over to a different instructor,
// refusing when the slot would collide with the new instructor's week.
func (h *TemplateHandler) AssignInstructor(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template id"})
	}
	var req assignInstructorRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	cur, err := h.Templates.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if cur.InstructorID == req.InstructorID {
		return writeError(c, schedule.Validationf("class is already assigned to instructor %d", req.InstructorID))
	}
	if _, err := h.checkInstructor(c, req.InstructorID); err != nil {
		return writeError(c, err)
	}
	slot, err := cur.Slot()
	if err != nil {
		return writeError(c, err)
	}

	err = database.RunSerializable(ctx, h.Templates.DB(), func(tx *sql.Tx) error {
		existing, err := h.Templates.ListActiveByInstructorTx(ctx, tx, req.InstructorID)
		if err != nil {
			return err
		}
		if kind, _ := schedule.Classify(slot, slotsOf(existing)); kind != schedule.NoConflict {
			return schedule.Conflictf("instructor %d already teaches a class overlapping this slot", req.InstructorID)
		}
		return h.Templates.SetInstructorTx(ctx, tx, id, req.InstructorID)
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "instructor assigned"})
}

type activeStateRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// ChangeActiveState activates or deactivates a template. Repeating the
// current state is a no-op, not an error.
func (h *TemplateHandler) ChangeActiveState(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template id"})
	}
	var req activeStateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.Templates.GetByID(ctx, id); err != nil {
		return writeError(c, err)
	}
	changed, err := h.Templates.SetActive(ctx, id, *req.Active)
	if err != nil {
		return writeError(c, err)
	}
	if !changed {
		return c.JSON(http.StatusOK, echo.Map{"message": "no changes"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "template updated"})
}

// List returns templates filtered by active state, weekday and
// instructor. All filters are optional.
func (h *TemplateHandler) List(c echo.Context) error {
	var f repository.ListFilter
	if v := c.QueryParam("active"); v != "" {
		b := v == "true" || v == "1"
		f.Active = &b
	}
	if v := c.QueryParam("weekday"); v != "" {
		wd, err := parseWeekday(v)
		if err != nil {
			return writeError(c, err)
		}
		f.Weekday = &wd
	}
	if v := c.QueryParam("instructor_id"); v != "" {
		id, err := parseUint(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instructor_id"})
		}
		f.InstructorID = &id
	}

	templates, err := h.Templates.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]templateResponse, 0, len(templates))
	for i := range templates {
		out = append(out, toTemplateResponse(&templates[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"templates": out})
}

// slotsOf projects templates onto conflict-check slots, skipping rows
// with malformed times rather than failing the whole check.
func slotsOf(templates []model.ClassTemplate) []schedule.Slot {
	slots := make([]schedule.Slot, 0, len(templates))
	for i := range templates {
		s, err := templates[i].Slot()
		if err != nil {
			continue
		}
		slots = append(slots, s)
	}
	return slots
}
