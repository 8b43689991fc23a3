package model

import (
	"time"

	"github.com/gympoint/class-scheduler/internal/schedule"
)

// ClassTemplate mirrors the `class_templates` table: a recurring weekly
// class definition owned by one instructor. A template is active while
// DeactivatedAt is nil; deactivation is a soft delete so historical
// instances keep a valid owner reference.
//
// Invariants enforced by the service layer:
//   - StartTime < EndTime and Capacity > 0.
//   - No two active templates of the same instructor overlap on the same
//     weekday.
//   - Weekday is never the configured rest day.
type ClassTemplate struct {
	ID            uint64       // class_templates.id
	InstructorID  uint64       // class_templates.instructor_id
	Name          string       // class_templates.name
	Weekday       time.Weekday // class_templates.weekday (0 = Sunday)
	StartTime     string       // class_templates.start_time ("HH:MM:SS")
	EndTime       string       // class_templates.end_time   ("HH:MM:SS")
	Capacity      int          // class_templates.capacity
	DeactivatedAt *time.Time   // class_templates.deactivated_at (nullable)
	CreatedAt     time.Time    // class_templates.created_at
	UpdatedAt     time.Time    // class_templates.updated_at
}

// Active reports whether the template has not been soft-deleted.
func (t *ClassTemplate) Active() bool { return t.DeactivatedAt == nil }

// Window parses the stored TIME columns into a schedule.Window.
func (t *ClassTemplate) Window() (schedule.Window, error) {
	start, err := schedule.ParseClock(t.StartTime)
	if err != nil {
		return schedule.Window{}, err
	}
	end, err := schedule.ParseClock(t.EndTime)
	if err != nil {
		return schedule.Window{}, err
	}
	return schedule.Window{Start: start, End: end}, nil
}

// Slot places the template in the weekly grid for conflict checks.
func (t *ClassTemplate) Slot() (schedule.Slot, error) {
	w, err := t.Window()
	if err != nil {
		return schedule.Slot{}, err
	}
	return schedule.Slot{ID: t.ID, Weekday: t.Weekday, Window: w}, nil
}
