package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gympoint/class-scheduler/internal/model"
)

// TemplateRepo manages persistence for class_templates.
type TemplateRepo struct{ db *sql.DB }

// NewTemplateRepo constructs a TemplateRepo with the given DB handle.
func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions that
// span multiple repositories.
func (r *TemplateRepo) DB() *sql.DB { return r.db }

const templateCols = `id, instructor_id, name, weekday, start_time, end_time, capacity,
	deactivated_at, created_at, updated_at`

func scanTemplate(row interface{ Scan(...any) error }) (*model.ClassTemplate, error) {
	var t model.ClassTemplate
	var weekday int
	var deactivated sql.NullTime
	err := row.Scan(
		&t.ID, &t.InstructorID, &t.Name, &weekday, &t.StartTime, &t.EndTime,
		&t.Capacity, &deactivated, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Weekday = time.Weekday(weekday)
	if deactivated.Valid {
		d := deactivated.Time
		t.DeactivatedAt = &d
	}
	return &t, nil
}

// CreateTx inserts a new template within the caller's transaction and
// populates the generated ID and DB-default timestamps.
func (r *TemplateRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.ClassTemplate) error {
	const q = `INSERT INTO class_templates (instructor_id, name, weekday, start_time, end_time, capacity)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, t.InstructorID, t.Name, int(t.Weekday), t.StartTime, t.EndTime, t.Capacity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = `SELECT ` + templateCols + ` FROM class_templates WHERE id = ?`
	fresh, err := scanTemplate(tx.QueryRowContext(ctx, sel, t.ID))
	if err != nil {
		return err
	}
	*t = *fresh
	return nil
}

// GetByID retrieves a template by id, returning ErrTemplateNotFound when
// there is no matching row.
func (r *TemplateRepo) GetByID(ctx context.Context, id uint64) (*model.ClassTemplate, error) {
	const q = `SELECT ` + templateCols + ` FROM class_templates WHERE id = ?`
	t, err := scanTemplate(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetByIDTx is GetByID within the caller's transaction.
func (r *TemplateRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.ClassTemplate, error) {
	const q = `SELECT ` + templateCols + ` FROM class_templates WHERE id = ?`
	t, err := scanTemplate(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

// ListActiveByInstructorTx returns all active templates of one instructor.
// Template conflict checks load this set inside the same transaction that
// performs the insert or update.
func (r *TemplateRepo) ListActiveByInstructorTx(ctx context.Context, tx *sql.Tx, instructorID uint64) ([]model.ClassTemplate, error) {
	const q = `SELECT ` + templateCols + ` FROM class_templates
	           WHERE instructor_id = ? AND deactivated_at IS NULL
	           ORDER BY weekday, start_time`
	rows, err := tx.QueryContext(ctx, q, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTemplates(rows)
}

// ListActiveByInstructor is ListActiveByInstructorTx outside a transaction;
// the bulk generator uses it for its read-only planning pass.
func (r *TemplateRepo) ListActiveByInstructor(ctx context.Context, instructorID uint64) ([]model.ClassTemplate, error) {
	const q = `SELECT ` + templateCols + ` FROM class_templates
	           WHERE instructor_id = ? AND deactivated_at IS NULL
	           ORDER BY weekday, start_time`
	rows, err := r.db.QueryContext(ctx, q, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTemplates(rows)
}

// ListFilter narrows the template listing. Nil fields are ignored.
type ListFilter struct {
	Active       *bool
	Weekday      *time.Weekday
	InstructorID *uint64
}

// List returns templates matching the filter, ordered by weekday then start
// time. Read-only, no side effects.
func (r *TemplateRepo) List(ctx context.Context, f ListFilter) ([]model.ClassTemplate, error) {
	q := `SELECT ` + templateCols + ` FROM class_templates WHERE 1=1`
	var args []any
	if f.Active != nil {
		if *f.Active {
			q += ` AND deactivated_at IS NULL`
		} else {
			q += ` AND deactivated_at IS NOT NULL`
		}
	}
	if f.Weekday != nil {
		q += ` AND weekday = ?`
		args = append(args, int(*f.Weekday))
	}
	if f.InstructorID != nil {
		q += ` AND instructor_id = ?`
		args = append(args, *f.InstructorID)
	}
	q += ` ORDER BY weekday, start_time`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTemplates(rows)
}

func collectTemplates(rows *sql.Rows) ([]model.ClassTemplate, error) {
	out := make([]model.ClassTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// UpdateSlotTx overwrites a template's mutable fields within the caller's
// transaction. The service layer has already performed no-change detection
// and conflict classification against the effective values.
func (r *TemplateRepo) UpdateSlotTx(ctx context.Context, tx *sql.Tx, t *model.ClassTemplate) error {
	const q = `UPDATE class_templates
	           SET instructor_id = ?, name = ?, weekday = ?, start_time = ?, end_time = ?, capacity = ?
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, t.InstructorID, t.Name, int(t.Weekday), t.StartTime, t.EndTime, t.Capacity, t.ID)
	return err
}

// SwapSlotsTx exchanges (weekday, start_time, end_time) between two
// templates atomically. Both updates run in the caller's transaction; the
// swap is only legal when neither template has a live future instance,
// which the caller verifies first.
func (r *TemplateRepo) SwapSlotsTx(ctx context.Context, tx *sql.Tx, a, b *model.ClassTemplate) error {
	const q = `UPDATE class_templates SET weekday = ?, start_time = ?, end_time = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q, int(b.Weekday), b.StartTime, b.EndTime, a.ID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, q, int(a.Weekday), a.StartTime, a.EndTime, b.ID)
	return err
}

// SetActive toggles the soft-delete marker. The write is skipped when the
// state already matches, and changed reports whether a row was touched.
func (r *TemplateRepo) SetActive(ctx context.Context, id uint64, active bool) (changed bool, err error) {
	var q string
	if active {
		q = `UPDATE class_templates SET deactivated_at = NULL WHERE id = ? AND deactivated_at IS NOT NULL`
	} else {
		q = `UPDATE class_templates SET deactivated_at = UTC_TIMESTAMP() WHERE id = ? AND deactivated_at IS NULL`
	}
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetInstructorTx reassigns the owning instructor within the caller's
// transaction.
func (r *TemplateRepo) SetInstructorTx(ctx context.Context, tx *sql.Tx, id, instructorID uint64) error {
	const q = `UPDATE class_templates SET instructor_id = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, instructorID, id)
	return err
}
