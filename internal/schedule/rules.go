package schedule

import (
	"time"
)

// Default booking policy. The lead-time bounds are inclusive on both ends:
// a class exactly MinLeadDays or exactly MaxLeadDays away is bookable.
const (
	DefaultMinLeadDays          = 1
	DefaultMaxLeadDays          = 15
	DefaultGenerationWindowDays = 15
	DefaultRoomCount            = 5
)

// Reservation attendance states. RESERVED is the only live state; the other
// three are terminal, except that attendance marking may flip PRESENT and
// ABSENT into each other when a class is re-marked.
const (
	StateReserved  = "RESERVED"
	StateCancelled = "CANCELLED"
	StatePresent   = "PRESENT"
	StateAbsent    = "ABSENT"
)

// DateOnly truncates t to midnight UTC. All class dates are calendar days
// with no time-of-day component.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the whole calendar days from now's date to the class date.
func DaysUntil(classDate, now time.Time) int {
	return int(DateOnly(classDate).Sub(DateOnly(now)).Hours() / 24)
}

// CheckReserveLead enforces the booking window: at least minDays and at most
// maxDays between today and the class date, both inclusive.
func CheckReserveLead(classDate, now time.Time, minDays, maxDays int) error {
	days := DaysUntil(classDate, now)
	if days < minDays {
		return InvalidOpf("must book at least %d day(s) in advance", minDays)
	}
	if days > maxDays {
		return InvalidOpf("cannot book more than %d days in advance", maxDays)
	}
	return nil
}

// CheckCancelLead refuses same-day and past cancellations: the class date
// must be strictly after today.
func CheckCancelLead(classDate, now time.Time) error {
	if DaysUntil(classDate, now) < 1 {
		return InvalidOpf("reservations can only be cancelled until the day before the class")
	}
	return nil
}

// CheckSameWeekday verifies that a candidate instance date falls on its
// template's weekday.
func CheckSameWeekday(date time.Time, weekday time.Weekday) error {
	if date.Weekday() != weekday {
		return Conflictf("date %s is a %s, template is scheduled on %s",
			date.Format("2006-01-02"), date.Weekday(), weekday)
	}
	return nil
}

// CheckTemplateDay rejects templates scheduled on the configured rest day.
func CheckTemplateDay(weekday, restDay time.Weekday) error {
	if weekday == restDay {
		return Validationf("no classes may be scheduled on %s", restDay)
	}
	return nil
}

// CheckRoom validates a room number against the fixed pool 1..roomCount.
func CheckRoom(room, roomCount int) error {
	if room < 1 || room > roomCount {
		return Validationf("room must be between 1 and %d", roomCount)
	}
	return nil
}

// MarkState resolves the attendance outcome for one reservation during bulk
// marking. Reservations in RESERVED, PRESENT or ABSENT are (re-)marked
// PRESENT or ABSENT depending on whether the member was present; re-marking
// an already marked class is deliberately idempotent. CANCELLED rows are
// never touched, so ok is false for them.
func MarkState(current string, present bool) (next string, ok bool) {
	switch current {
	case StateReserved, StatePresent, StateAbsent:
		if present {
			return StatePresent, true
		}
		return StateAbsent, true
	default:
		return current, false
	}
}

// CanCancel reports whether a reservation row may transition to CANCELLED.
// Only live RESERVED rows can; terminal states stay put.
func CanCancel(current string) bool { return current == StateReserved }
