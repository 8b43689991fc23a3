// Package scheduler turns class templates into dated, room-assigned
// instances. It backs both the self-service HTTP endpoints and the nightly
// generation job; all instance creation funnels through here so the
// duplicate and room-conflict invariants are checked in exactly one place.
package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gympoint/class-scheduler/internal/database"
	"github.com/gympoint/class-scheduler/internal/model"
	"github.com/gympoint/class-scheduler/internal/repository"
	"github.com/gympoint/class-scheduler/internal/schedule"
)

// Scheduler creates class instances from templates.
type Scheduler struct {
	db        *sql.DB
	templates *repository.TemplateRepo
	instances *repository.InstanceRepo
	roomCount int
}

// New constructs a Scheduler. roomCount bounds the fixed room pool 1..N.
func New(db *sql.DB, templates *repository.TemplateRepo, instances *repository.InstanceRepo, roomCount int) *Scheduler {
	if db == nil || templates == nil || instances == nil {
		panic("nil dependency passed to scheduler.New")
	}
	if roomCount < 1 {
		roomCount = schedule.DefaultRoomCount
	}
	return &Scheduler{db: db, templates: templates, instances: instances, roomCount: roomCount}
}

// CreateInstance schedules one concrete occurrence of a template on the
// given date and room. All checks and the insert run inside a single
// serializable transaction: the duplicate check and the room occupancy read
// must serialize against concurrent creations for the same slot.
func (s *Scheduler) CreateInstance(ctx context.Context, templateID uint64, date time.Time, room int) (*model.ClassInstance, error) {
	if err := schedule.CheckRoom(room, s.roomCount); err != nil {
		return nil, err
	}
	date = schedule.DateOnly(date)

	var inst *model.ClassInstance
	err := database.RunSerializable(ctx, s.db, func(tx *sql.Tx) error {
		tpl, err := s.templates.GetByIDTx(ctx, tx, templateID)
		if err != nil {
			if errors.Is(err, repository.ErrTemplateNotFound) {
				return schedule.Validationf("unknown class template")
			}
			return err
		}
		if !tpl.Active() {
			return schedule.Conflictf("class template is deactivated")
		}
		if err := schedule.CheckSameWeekday(date, tpl.Weekday); err != nil {
			return err
		}
		exists, err := s.instances.ExistsLiveTx(ctx, tx, tpl.ID, date)
		if err != nil {
			return err
		}
		if exists {
			return schedule.Conflictf("class is already scheduled for %s", date.Format("2006-01-02"))
		}
		window, err := tpl.Window()
		if err != nil {
			return err
		}
		if err := s.checkRoomFreeTx(ctx, tx, date, room, window); err != nil {
			return err
		}
		inst = &model.ClassInstance{TemplateID: tpl.ID, ClassDate: date, Room: room}
		return s.instances.CreateTx(ctx, tx, inst)
	})
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// GenerateForInstructor creates instances for every active template of the
// instructor over [today, today+windowDays], picking the first free room
// for each slot. Dates that already have a live instance are skipped, as
// are slots whose room pool is exhausted or that lose a serialization race:
// bulk generation favors partial progress over all-or-nothing. It returns
// the number of instances created.
func (s *Scheduler) GenerateForInstructor(ctx context.Context, instructorID uint64, windowDays int) (int, error) {
	if windowDays <= 0 {
		windowDays = schedule.DefaultGenerationWindowDays
	}
	templates, err := s.templates.ListActiveByInstructor(ctx, instructorID)
	if err != nil {
		return 0, err
	}
	if len(templates) == 0 {
		return 0, schedule.InvalidOpf("instructor has no active class templates")
	}

	today := schedule.DateOnly(time.Now())
	created := 0
	for i := range templates {
		tpl := &templates[i]
		window, err := tpl.Window()
		if err != nil {
			return created, err
		}
		dates, err := schedule.WeeklyOccurrences(tpl.Weekday, today, windowDays)
		if err != nil {
			return created, err
		}
		for _, date := range dates {
			ok, err := s.generateSlot(ctx, tpl.ID, date, window)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}

// generateSlot creates one instance in its own serializable transaction.
// Returns false without error when the slot is skipped (already scheduled,
// no free room, or lost a serialization race to a concurrent generator).
func (s *Scheduler) generateSlot(ctx context.Context, templateID uint64, date time.Time, window schedule.Window) (bool, error) {
	createdSlot := false
	err := database.RunSerializable(ctx, s.db, func(tx *sql.Tx) error {
		createdSlot = false
		exists, err := s.instances.ExistsLiveTx(ctx, tx, templateID, date)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		occupied, err := s.occupancyByRoomTx(ctx, tx, date)
		if err != nil {
			return err
		}
		room, ok := schedule.FirstFreeRoom(s.roomCount, window, occupied)
		if !ok {
			return nil // pool exhausted for this slot; skip, don't abort the batch
		}
		inst := &model.ClassInstance{TemplateID: templateID, ClassDate: date, Room: room}
		if err := s.instances.CreateTx(ctx, tx, inst); err != nil {
			return err
		}
		createdSlot = true
		return nil
	})
	if errors.Is(err, database.ErrTxConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return createdSlot, nil
}

// checkRoomFreeTx fails with a ConflictError when any live instance in the
// same room on the same date has an overlapping window.
func (s *Scheduler) checkRoomFreeTx(ctx context.Context, tx *sql.Tx, date time.Time, room int, window schedule.Window) error {
	occupied, err := s.occupancyByRoomTx(ctx, tx, date)
	if err != nil {
		return err
	}
	for _, w := range occupied[room] {
		if window.Overlaps(w) {
			return schedule.Conflictf("room %d is already booked at that time on %s", room, date.Format("2006-01-02"))
		}
	}
	return nil
}

// occupancyByRoomTx loads the live occupancy of all rooms on a date, keyed
// by room number.
func (s *Scheduler) occupancyByRoomTx(ctx context.Context, tx *sql.Tx, date time.Time) (map[int][]schedule.Window, error) {
	occ, err := s.instances.ListOccupancyTx(ctx, tx, date)
	if err != nil {
		return nil, err
	}
	byRoom := make(map[int][]schedule.Window, len(occ))
	for _, o := range occ {
		start, err := schedule.ParseClock(o.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := schedule.ParseClock(o.EndTime)
		if err != nil {
			return nil, err
		}
		byRoom[o.Room] = append(byRoom[o.Room], schedule.Window{Start: start, End: end})
	}
	return byRoom, nil
}
