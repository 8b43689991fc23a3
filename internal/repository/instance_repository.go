package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gympoint/class-scheduler/internal/model"
)

// InstanceRepo manages persistence for class_instances.
type InstanceRepo struct{ db *sql.DB }

// NewInstanceRepo constructs an InstanceRepo with the given DB handle.
func NewInstanceRepo(db *sql.DB) *InstanceRepo { return &InstanceRepo{db: db} }

// DB exposes the underlying sql.DB for cross-repository transactions.
func (r *InstanceRepo) DB() *sql.DB { return r.db }

const instanceCols = `id, template_id, class_date, room, cancelled_at, created_at, updated_at`

func scanInstance(row interface{ Scan(...any) error }) (*model.ClassInstance, error) {
	var i model.ClassInstance
	var cancelled sql.NullTime
	err := row.Scan(&i.ID, &i.TemplateID, &i.ClassDate, &i.Room, &cancelled, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if cancelled.Valid {
		c := cancelled.Time
		i.CancelledAt = &c
	}
	return &i, nil
}

// CreateTx inserts a new instance within the caller's transaction. The
// duplicate and room-conflict checks must have run in the same transaction.
func (r *InstanceRepo) CreateTx(ctx context.Context, tx *sql.Tx, i *model.ClassInstance) error {
	const q = `INSERT INTO class_instances (template_id, class_date, room) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, i.TemplateID, i.ClassDate.Format("2006-01-02"), i.Room)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	i.ID = uint64(id)
	const sel = `SELECT ` + instanceCols + ` FROM class_instances WHERE id = ?`
	fresh, err := scanInstance(tx.QueryRowContext(ctx, sel, i.ID))
	if err != nil {
		return err
	}
	*i = *fresh
	return nil
}

// GetByIDTx loads an instance inside the caller's transaction, returning
// ErrInstanceNotFound when it does not exist.
func (r *InstanceRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.ClassInstance, error) {
	const q = `SELECT ` + instanceCols + ` FROM class_instances WHERE id = ?`
	i, err := scanInstance(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInstanceNotFound
		}
		return nil, err
	}
	return i, nil
}

// ExistsLiveTx reports whether a non-cancelled instance already exists for
// the (template, date) pair.
func (r *InstanceRepo) ExistsLiveTx(ctx context.Context, tx *sql.Tx, templateID uint64, date time.Time) (bool, error) {
	const q = `SELECT 1 FROM class_instances
	           WHERE template_id = ? AND class_date = ? AND cancelled_at IS NULL LIMIT 1`
	var one int
	err := tx.QueryRowContext(ctx, q, templateID, date.Format("2006-01-02")).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Occupancy is one live instance's claim on a room for a date, carrying its
// template's window so the room conflict check can test overlap.
type Occupancy struct {
	InstanceID uint64
	TemplateID uint64
	Room       int
	StartTime  string
	EndTime    string
}

// ListOccupancyTx returns the room occupancy of all live instances on the
// given date, loaded inside the caller's transaction so a concurrent
// creation for the same slot serializes against it.
func (r *InstanceRepo) ListOccupancyTx(ctx context.Context, tx *sql.Tx, date time.Time) ([]Occupancy, error) {
	const q = `SELECT i.id, i.template_id, i.room, t.start_time, t.end_time
	           FROM class_instances i
	           JOIN class_templates t ON t.id = i.template_id
	           WHERE i.class_date = ? AND i.cancelled_at IS NULL`
	rows, err := tx.QueryContext(ctx, q, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Occupancy
	for rows.Next() {
		var o Occupancy
		if err := rows.Scan(&o.InstanceID, &o.TemplateID, &o.Room, &o.StartTime, &o.EndTime); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// HasLiveFutureTx reports whether the template owns any non-cancelled
// instance dated today or later. A template in that state must not have its
// slot swapped, since the move would orphan existing bookings.
func (r *InstanceRepo) HasLiveFutureTx(ctx context.Context, tx *sql.Tx, templateID uint64, today time.Time) (bool, error) {
	const q = `SELECT 1 FROM class_instances
	           WHERE template_id = ? AND class_date >= ? AND cancelled_at IS NULL LIMIT 1`
	var one int
	err := tx.QueryRowContext(ctx, q, templateID, today.Format("2006-01-02")).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CancelTx sets the cancellation timestamp on a live instance. The caller
// cascades the reservation cancellations in the same transaction.
func (r *InstanceRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE class_instances SET cancelled_at = UTC_TIMESTAMP()
	           WHERE id = ? AND cancelled_at IS NULL`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

const detailSelect = `SELECT i.id, i.template_id, t.name, t.instructor_id, u.full_name,
	       DATE_FORMAT(i.class_date, '%Y-%m-%d'), t.start_time, t.end_time, i.room, t.capacity,
	       (SELECT COUNT(*) FROM reservations res WHERE res.instance_id = i.id AND res.status = 'RESERVED'),
	       i.cancelled_at IS NOT NULL
	FROM class_instances i
	JOIN class_templates t ON t.id = i.template_id
	JOIN users u ON u.id = t.instructor_id`

func collectDetails(rows *sql.Rows) ([]model.InstanceDetail, error) {
	out := make([]model.InstanceDetail, 0)
	for rows.Next() {
		var d model.InstanceDetail
		if err := rows.Scan(
			&d.ID, &d.TemplateID, &d.ClassName, &d.InstructorID, &d.InstructorName,
			&d.ClassDate, &d.StartTime, &d.EndTime, &d.Room, &d.Capacity,
			&d.ReservedCount, &d.Cancelled,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListUpcoming returns every live instance dated today or later, annotated
// with its live reservation count and instructor name.
func (r *InstanceRepo) ListUpcoming(ctx context.Context, today time.Time) ([]model.InstanceDetail, error) {
	const q = detailSelect + `
	WHERE i.cancelled_at IS NULL AND i.class_date >= ?
	ORDER BY i.class_date, t.start_time, i.room`
	rows, err := r.db.QueryContext(ctx, q, today.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows)
}

// ListByDate returns the full day schedule, cancelled instances included so
// the front desk can see called-off classes.
func (r *InstanceRepo) ListByDate(ctx context.Context, date time.Time) ([]model.InstanceDetail, error) {
	const q = detailSelect + `
	WHERE i.class_date = ?
	ORDER BY t.start_time, i.room`
	rows, err := r.db.QueryContext(ctx, q, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows)
}

// ListByInstructor returns an instructor's live instances dated from the
// given day onward.
func (r *InstanceRepo) ListByInstructor(ctx context.Context, instructorID uint64, from time.Time) ([]model.InstanceDetail, error) {
	const q = detailSelect + `
	WHERE t.instructor_id = ? AND i.cancelled_at IS NULL AND i.class_date >= ?
	ORDER BY i.class_date, t.start_time`
	rows, err := r.db.QueryContext(ctx, q, instructorID, from.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows)
}

// GetDetail loads one instance's projection; the event publisher enriches
// queue messages with it after commit.
func (r *InstanceRepo) GetDetail(ctx context.Context, id uint64) (*model.InstanceDetail, error) {
	const q = detailSelect + ` WHERE i.id = ?`
	var d model.InstanceDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.TemplateID, &d.ClassName, &d.InstructorID, &d.InstructorName,
		&d.ClassDate, &d.StartTime, &d.EndTime, &d.Room, &d.Capacity,
		&d.ReservedCount, &d.Cancelled,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInstanceNotFound
		}
		return nil, err
	}
	return &d, nil
}
