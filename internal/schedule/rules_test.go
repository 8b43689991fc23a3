package schedule

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC) // a Monday

func day(offset int) time.Time {
	return testNow.AddDate(0, 0, offset)
}

func TestCheckReserveLead(t *testing.T) {
	cases := []struct {
		name   string
		offset int
		wantOK bool
	}{
		{"same day", 0, false},
		{"tomorrow", 1, true},
		{"mid window", 7, true},
		{"window edge", 15, true},
		{"past window", 16, false},
		{"yesterday", -1, false},
	}
	for _, tc := range cases {
		err := CheckReserveLead(day(tc.offset), testNow, DefaultMinLeadDays, DefaultMaxLeadDays)
		if tc.wantOK && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.wantOK {
			if err == nil {
				t.Errorf("%s: expected rejection", tc.name)
			} else if !IsKind(err, KindInvalidOperation) {
				t.Errorf("%s: kind = %v, want invalid operation", tc.name, err)
			}
		}
	}
}

func TestCheckReserveLeadIgnoresTimeOfDay(t *testing.T) {
	// 23:59 today to a class "tomorrow" is still one full calendar day.
	lateNow := time.Date(2025, time.March, 10, 23, 59, 0, 0, time.UTC)
	classDate := time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC)
	if err := CheckReserveLead(classDate, lateNow, 1, 15); err != nil {
		t.Fatalf("late-evening booking for tomorrow rejected: %v", err)
	}
}

func TestCheckCancelLead(t *testing.T) {
	if err := CheckCancelLead(day(1), testNow); err != nil {
		t.Fatalf("cancelling tomorrow's class rejected: %v", err)
	}
	for _, offset := range []int{0, -1} {
		if err := CheckCancelLead(day(offset), testNow); err == nil {
			t.Errorf("offset %d: expected rejection", offset)
		}
	}
}

func TestCheckSameWeekday(t *testing.T) {
	// 2025-03-09 is a Sunday; offsets 0..6 walk one date per weekday.
	sunday := time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)
	for offset := 0; offset < 7; offset++ {
		date := sunday.AddDate(0, 0, offset)
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			err := CheckSameWeekday(date, wd)
			if date.Weekday() == wd {
				if err != nil {
					t.Errorf("%s on %s: unexpected error: %v", date.Format("2006-01-02"), wd, err)
				}
				continue
			}
			if err == nil || !IsKind(err, KindConflict) {
				t.Errorf("%s on %s: err = %v, want conflict", date.Format("2006-01-02"), wd, err)
			}
		}
	}
}

func TestCheckTemplateDay(t *testing.T) {
	if err := CheckTemplateDay(time.Monday, time.Sunday); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := CheckTemplateDay(time.Sunday, time.Sunday)
	if err == nil || !IsKind(err, KindValidation) {
		t.Fatalf("rest-day template: err = %v, want validation", err)
	}
}

func TestCheckRoom(t *testing.T) {
	for _, room := range []int{1, 3, 5} {
		if err := CheckRoom(room, 5); err != nil {
			t.Errorf("room %d: unexpected error: %v", room, err)
		}
	}
	for _, room := range []int{0, -1, 6} {
		if err := CheckRoom(room, 5); err == nil {
			t.Errorf("room %d: expected rejection", room)
		}
	}
}

func TestMarkState(t *testing.T) {
	cases := []struct {
		current string
		present bool
		want    string
		wantOK  bool
	}{
		{StateReserved, true, StatePresent, true},
		{StateReserved, false, StateAbsent, true},
		{StatePresent, false, StateAbsent, true}, // re-mark flips
		{StateAbsent, true, StatePresent, true},
		{StatePresent, true, StatePresent, true}, // idempotent
		{StateCancelled, true, StateCancelled, false},
		{StateCancelled, false, StateCancelled, false},
	}
	for _, tc := range cases {
		next, ok := MarkState(tc.current, tc.present)
		if next != tc.want || ok != tc.wantOK {
			t.Errorf("MarkState(%s, %v) = (%s, %v), want (%s, %v)",
				tc.current, tc.present, next, ok, tc.want, tc.wantOK)
		}
	}
}

func TestCanCancel(t *testing.T) {
	if !CanCancel(StateReserved) {
		t.Fatal("RESERVED must be cancellable")
	}
	for _, s := range []string{StateCancelled, StatePresent, StateAbsent} {
		if CanCancel(s) {
			t.Errorf("%s must not be cancellable", s)
		}
	}
}
