package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gympoint/class-scheduler/internal/model"
)

// UserRepo reads the users table. Accounts are managed by the external
// member system, so this repository is read-only: the scheduler only needs
// to validate instructor assignments and resolve names for projections.
type UserRepo struct{ db *sql.DB }

// NewUserRepo constructs a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// GetByID fetches a user by id, returning ErrUserNotFound when missing.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT id, full_name, role, is_active, created_at, updated_at
	           FROM users WHERE id = ?`
	var u model.User
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListActiveInstructorIDs returns the ids of all active instructors that own
// at least one active template. The nightly generation job iterates this set.
func (r *UserRepo) ListActiveInstructorIDs(ctx context.Context) ([]uint64, error) {
	const q = `SELECT DISTINCT u.id
	           FROM users u
	           JOIN class_templates t ON t.instructor_id = u.id
	           WHERE u.role = ? AND u.is_active = 1 AND t.deactivated_at IS NULL
	           ORDER BY u.id`
	rows, err := r.db.QueryContext(ctx, q, model.RoleInstructor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
