package schedule

import (
	"time"

	"github.com/teambition/rrule-go"
)

// rruleDays maps time.Weekday (Sunday = 0) onto rrule weekday constants
// (Monday = 0).
var rruleDays = [7]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// WeeklyOccurrences expands a weekly recurrence on the given weekday into the
// concrete dates inside [from, from+windowDays], both bounds inclusive. The
// returned dates are midnight UTC.
func WeeklyOccurrences(weekday time.Weekday, from time.Time, windowDays int) ([]time.Time, error) {
	if windowDays < 0 {
		return nil, Validationf("generation window must not be negative")
	}
	start := DateOnly(from)
	until := start.AddDate(0, 0, windowDays)

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rruleDays[weekday]},
		Dtstart:   start,
	})
	if err != nil {
		return nil, err
	}

	occ := r.Between(start, until, true)
	dates := make([]time.Time, 0, len(occ))
	for _, t := range occ {
		dates = append(dates, DateOnly(t))
	}
	return dates, nil
}
