package model

import "time"

// ClassInstance mirrors the `class_instances` table: one dated,
// room-assigned occurrence generated from a template. CancelledAt doubles
// as the soft-delete marker; a cancelled instance keeps its reservations
// (cascade-cancelled) for history.
//
// Invariants enforced inside serializable transactions:
//   - ClassDate falls on the owning template's weekday.
//   - At most one live instance per (template, date).
//   - No two live instances in the same room on the same date have
//     overlapping template windows.
type ClassInstance struct {
	ID          uint64     // class_instances.id
	TemplateID  uint64     // class_instances.template_id
	ClassDate   time.Time  // class_instances.class_date (midnight UTC)
	Room        int        // class_instances.room
	CancelledAt *time.Time // class_instances.cancelled_at (nullable)
	CreatedAt   time.Time  // class_instances.created_at
	UpdatedAt   time.Time  // class_instances.updated_at
}

// Cancelled reports whether the instance has been called off.
func (i *ClassInstance) Cancelled() bool { return i.CancelledAt != nil }

// InstanceDetail is the read projection for schedule listings: the instance
// joined with its template's window, name, instructor and the live
// reservation count.
type InstanceDetail struct {
	ID             uint64 `json:"id"`
	TemplateID     uint64 `json:"template_id"`
	ClassName      string `json:"class_name"`
	InstructorID   uint64 `json:"instructor_id"`
	InstructorName string `json:"instructor_name"`
	ClassDate      string `json:"class_date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Room           int    `json:"room"`
	Capacity       int    `json:"capacity"`
	ReservedCount  int    `json:"reserved_count"`
	Cancelled      bool   `json:"cancelled"`
}
