// Package repository contains the data access layer. Each aggregate gets
// one repository struct bound to a *sql.DB; methods suffixed Tx take an
// open *sql.Tx instead so handlers can compose several repository calls
// into one serializable transaction. Sentinel errors let handlers pick
// response codes without string matching.
package repository

import "errors"

// ErrTemplateNotFound indicates the class template does not exist.
var ErrTemplateNotFound = errors.New("class template not found")

// ErrInstanceNotFound indicates the class instance does not exist.
var ErrInstanceNotFound = errors.New("class instance not found")

// ErrReservationNotFound indicates no matching reservation row exists.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrUserNotFound indicates the referenced user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by someone else. Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")
