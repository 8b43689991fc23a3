package model

import "time"

// Reservation mirrors the `reservations` table: one member's seat claim on
// one class instance. Status follows the attendance state machine in the
// schedule package (RESERVED → CANCELLED | PRESENT | ABSENT). Re-booking
// after a cancellation inserts a fresh row; terminal rows are never
// resurrected, so the row history doubles as an audit trail.
type Reservation struct {
	ID         uint64    // reservations.id
	MemberID   uint64    // reservations.member_id
	InstanceID uint64    // reservations.instance_id
	Status     string    // reservations.status
	ReservedAt time.Time // reservations.reserved_at
	UpdatedAt  time.Time // reservations.updated_at
}

// ReservationDetail is the member-facing projection: the reservation joined
// with class, instructor and slot information.
type ReservationDetail struct {
	ID             uint64 `json:"id"`
	InstanceID     uint64 `json:"instance_id"`
	Status         string `json:"status"`
	ClassName      string `json:"class_name"`
	InstructorName string `json:"instructor_name"`
	ClassDate      string `json:"class_date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Room           int    `json:"room"`
	ReservedAt     string `json:"reserved_at"`
}

// RosterEntry is the instructor-facing projection of one reservation on an
// instance: who holds the seat and in what state.
type RosterEntry struct {
	ReservationID uint64 `json:"reservation_id"`
	MemberID      uint64 `json:"member_id"`
	MemberName    string `json:"member_name"`
	Status        string `json:"status"`
	ReservedAt    string `json:"reserved_at"`
}
