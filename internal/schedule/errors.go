// Package schedule holds the scheduling domain rules shared by the template,
// instance and reservation services: time-window conflict detection, booking
// lead-time checks, room auto-selection and the reservation attendance state
// machine. Everything in this package is pure logic; persistence lives in
// the repository layer.
package schedule

import (
	"errors"
	"fmt"
)

// Kind classifies a rejected operation so the HTTP layer can pick a status
// code while the reason string stays renderable as-is.
type Kind int

const (
	// KindValidation marks malformed or missing input. Caller-correctable.
	KindValidation Kind = iota + 1
	// KindNotFound marks a missing template, instance or reservation.
	KindNotFound
	// KindConflict marks a deterministically detected scheduling conflict
	// (overlapping window, duplicate instance, room taken).
	KindConflict
	// KindInvalidOperation marks a business-rule violation: full class,
	// lead-time window violated, already cancelled, duplicate booking.
	KindInvalidOperation
)

// Error is a rejected operation with a human-readable reason.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string { return e.Reason }

// Validationf builds a KindValidation error.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a KindNotFound error.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Reason: fmt.Sprintf(format, args...)}
}

// Conflictf builds a KindConflict error.
func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Reason: fmt.Sprintf(format, args...)}
}

// InvalidOpf builds a KindInvalidOperation error.
func InvalidOpf(format string, args ...any) error {
	return &Error{Kind: KindInvalidOperation, Reason: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a schedule Error of the given kind.
func IsKind(err error, k Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == k
}
