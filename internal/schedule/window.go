package schedule

import (
	"fmt"
	"time"
)

// ClockTime is a time of day expressed as minutes since midnight. Class
// windows never cross midnight, so a flat minute count keeps comparisons
// trivial and matches the TIME columns in the store.
type ClockTime int

// ParseClock parses "HH:MM" or "HH:MM:SS" into a ClockTime. Seconds are
// accepted for symmetry with MySQL TIME values but are discarded.
func ParseClock(s string) (ClockTime, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return 0, Validationf("invalid time of day %q, expected HH:MM", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, Validationf("invalid time of day %q", s)
	}
	return ClockTime(h*60 + m), nil
}

// String renders the ClockTime in the "HH:MM:SS" form stored in TIME columns.
func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:00", int(t)/60, int(t)%60)
}

// Window is a half-open [Start, End) time-of-day interval.
type Window struct {
	Start ClockTime
	End   ClockTime
}

// Valid reports whether the window is well-formed (start strictly before end).
func (w Window) Valid() bool { return w.Start < w.End }

// Overlaps reports whether two windows intersect. Touching boundaries do not
// conflict: a class ending 19:00 and one starting 19:00 coexist.
func (w Window) Overlaps(o Window) bool {
	return o.Start < w.End && o.End > w.Start
}

// Slot is a bookable position in the weekly grid: a weekday plus a window.
// The ID identifies whichever entity occupies the slot (template or
// instance) so conflict reports can name the offender.
type Slot struct {
	ID      uint64
	Weekday time.Weekday
	Window  Window
}

// ConflictKind is the tagged outcome of a conflict check.
type ConflictKind int

const (
	// NoConflict means the target window is free within its scope.
	NoConflict ConflictKind = iota
	// PartialOverlap means at least one existing slot intersects the target
	// without being identical to it. Never resolvable by swapping.
	PartialOverlap
	// ExactMatch means exactly one existing slot conflicts and its weekday
	// and window equal the target's. This is the only case the template
	// update path may resolve with a forced swap.
	ExactMatch
)

// Classify checks the target slot against every existing slot in the same
// scope; the caller decides which set it passes in (one instructor's active
// templates, or one room's day). Slots on a different weekday never conflict. The
// returned Slot is the exact-match counterpart when kind is ExactMatch, or
// the first overlapping slot when kind is PartialOverlap.
func Classify(target Slot, existing []Slot) (ConflictKind, *Slot) {
	var hits []Slot
	for _, s := range existing {
		if s.ID == target.ID {
			continue
		}
		if s.Weekday != target.Weekday {
			continue
		}
		if s.Window.Overlaps(target.Window) {
			hits = append(hits, s)
		}
	}
	if len(hits) == 0 {
		return NoConflict, nil
	}
	if len(hits) == 1 && hits[0].Window == target.Window {
		h := hits[0]
		return ExactMatch, &h
	}
	h := hits[0]
	return PartialOverlap, &h
}

// FirstFreeRoom scans rooms 1..roomCount in ascending order and returns the
// first whose occupied windows do not overlap w. The scan is deterministic
// rather than load-balanced, which is acceptable for the small fixed pool.
// ok is false when every room is taken for the window.
func FirstFreeRoom(roomCount int, w Window, occupied map[int][]Window) (room int, ok bool) {
	for r := 1; r <= roomCount; r++ {
		free := true
		for _, o := range occupied[r] {
			if w.Overlaps(o) {
				free = false
				break
			}
		}
		if free {
			return r, true
		}
	}
	return 0, false
}
