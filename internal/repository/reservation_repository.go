package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gympoint/class-scheduler/internal/model"
	"github.com/gympoint/class-scheduler/internal/schedule"
)

// ReservationRepo manages persistence for reservations. Every write runs
// inside a caller-owned serializable transaction: the capacity bound is a
// derived count over live RESERVED rows, not a stored counter, so the count
// and the conditional insert must serialize together.
type ReservationRepo struct{ db *sql.DB }

// NewReservationRepo constructs a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateTx inserts a fresh RESERVED row. Re-booking after a cancellation
// always inserts; terminal rows are never reused.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (member_id, instance_id, status) VALUES (?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.MemberID, res.InstanceID, schedule.StateReserved)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	const sel = `SELECT id, member_id, instance_id, status, reserved_at, updated_at
	             FROM reservations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, res.ID).Scan(
		&res.ID, &res.MemberID, &res.InstanceID, &res.Status, &res.ReservedAt, &res.UpdatedAt,
	)
}

// CountReservedTx counts the live RESERVED rows on an instance inside the
// caller's transaction. Compared strictly against capacity before insert.
func (r *ReservationRepo) CountReservedTx(ctx context.Context, tx *sql.Tx, instanceID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM reservations WHERE instance_id = ? AND status = ?`
	var n int
	err := tx.QueryRowContext(ctx, q, instanceID, schedule.StateReserved).Scan(&n)
	return n, err
}

// HasReservedTx reports whether the member already holds a live RESERVED row
// for the instance.
func (r *ReservationRepo) HasReservedTx(ctx context.Context, tx *sql.Tx, memberID, instanceID uint64) (bool, error) {
	const q = `SELECT 1 FROM reservations
	           WHERE member_id = ? AND instance_id = ? AND status = ? LIMIT 1`
	var one int
	err := tx.QueryRowContext(ctx, q, memberID, instanceID, schedule.StateReserved).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CancelReservedTx transitions the member's RESERVED row on the instance to
// CANCELLED. ErrReservationNotFound is returned when the member holds no
// live reservation there.
func (r *ReservationRepo) CancelReservedTx(ctx context.Context, tx *sql.Tx, memberID, instanceID uint64) error {
	const q = `UPDATE reservations SET status = ?
	           WHERE member_id = ? AND instance_id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, schedule.StateCancelled, memberID, instanceID, schedule.StateReserved)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// CancelAllReservedTx cascade-cancels every live RESERVED row on an instance
// and returns how many rows transitioned. Terminal rows are untouched.
func (r *ReservationRepo) CancelAllReservedTx(ctx context.Context, tx *sql.Tx, instanceID uint64) (int, error) {
	const q = `UPDATE reservations SET status = ?
	           WHERE instance_id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, schedule.StateCancelled, instanceID, schedule.StateReserved)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ListByInstanceTx loads every reservation on the instance inside the
// caller's transaction. Attendance marking walks this set.
func (r *ReservationRepo) ListByInstanceTx(ctx context.Context, tx *sql.Tx, instanceID uint64) ([]model.Reservation, error) {
	const q = `SELECT id, member_id, instance_id, status, reserved_at, updated_at
	           FROM reservations WHERE instance_id = ? ORDER BY id`
	rows, err := tx.QueryContext(ctx, q, instanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.MemberID, &res.InstanceID, &res.Status, &res.ReservedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// SetStatusTx updates one reservation's state within the caller's transaction.
func (r *ReservationRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	const q = `UPDATE reservations SET status = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, id)
	return err
}

// ListForMember returns the member's reservations newest first, joined with
// class, instructor and slot information for display.
func (r *ReservationRepo) ListForMember(ctx context.Context, memberID uint64) ([]model.ReservationDetail, error) {
	const q = `SELECT res.id, res.instance_id, res.status,
	                  t.name, u.full_name,
	                  DATE_FORMAT(i.class_date, '%Y-%m-%d'), t.start_time, t.end_time, i.room,
	                  DATE_FORMAT(res.reserved_at, '%Y-%m-%dT%H:%i:%sZ')
	           FROM reservations res
	           JOIN class_instances i ON i.id = res.instance_id
	           JOIN class_templates t ON t.id = i.template_id
	           JOIN users u ON u.id = t.instructor_id
	           WHERE res.member_id = ?
	           ORDER BY res.reserved_at DESC`
	rows, err := r.db.QueryContext(ctx, q, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ReservationDetail, 0)
	for rows.Next() {
		var d model.ReservationDetail
		if err := rows.Scan(
			&d.ID, &d.InstanceID, &d.Status, &d.ClassName, &d.InstructorName,
			&d.ClassDate, &d.StartTime, &d.EndTime, &d.Room, &d.ReservedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListRoster returns the roster of one instance for its instructor: every
// reservation with the member's name and current attendance state.
func (r *ReservationRepo) ListRoster(ctx context.Context, instanceID uint64) ([]model.RosterEntry, error) {
	const q = `SELECT res.id, res.member_id, u.full_name, res.status,
	                  DATE_FORMAT(res.reserved_at, '%Y-%m-%dT%H:%i:%sZ')
	           FROM reservations res
	           JOIN users u ON u.id = res.member_id
	           WHERE res.instance_id = ?
	           ORDER BY res.id`
	rows, err := r.db.QueryContext(ctx, q, instanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RosterEntry, 0)
	for rows.Next() {
		var e model.RosterEntry
		if err := rows.Scan(&e.ReservationID, &e.MemberID, &e.MemberName, &e.Status, &e.ReservedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
