package model

import "time"

// Application roles carried in the JWT "role" claim and stored on users.
// ADMIN manages class templates, INSTRUCTOR owns templates and instances,
// MEMBER books seats.
const (
	RoleAdmin      = "ADMIN"
	RoleInstructor = "INSTRUCTOR"
	RoleMember     = "MEMBER"
)

// User mirrors the `users` table. Accounts are created and authenticated by
// the external member-management system; this service only reads them to
// validate instructor assignments and to resolve display names.
type User struct {
	ID        uint64    // users.id
	FullName  string    // users.full_name
	Role      string    // users.role
	IsActive  bool      // users.is_active
	CreatedAt time.Time // users.created_at
	UpdatedAt time.Time // users.updated_at
}
