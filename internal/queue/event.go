// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into an audit log.
package queue

// Queue names. Both queues are declared durable by publisher and consumer.
const (
	ReservationConfirmedQueue = "reservation.confirmed"
	InstanceCancelledQueue    = "instance.cancelled"
)

// ReservationConfirmedEvent is published after a booking transaction
// commits. It carries enough context for downstream consumers to log or
// notify without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID  uint64 `json:"reservation_id"`
	MemberID       uint64 `json:"member_id"`
	InstanceID     uint64 `json:"instance_id"`
	ClassName      string `json:"class_name"`
	InstructorName string `json:"instructor_name"`
	ClassDate      string `json:"class_date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Room           int    `json:"room"`
	ConfirmedAt    string `json:"confirmed_at"`
}

// InstanceCancelledEvent is published after an instructor cancels a class
// instance and its live reservations were cascade-cancelled.
type InstanceCancelledEvent struct {
	InstanceID            uint64 `json:"instance_id"`
	TemplateID            uint64 `json:"template_id"`
	ClassName             string `json:"class_name"`
	ClassDate             string `json:"class_date"`
	Room                  int    `json:"room"`
	CancelledReservations int    `json:"cancelled_reservations"`
	CancelledAt           string `json:"cancelled_at"`
}
