package schedule

import (
	"testing"
	"time"
)

func TestWeeklyOccurrences(t *testing.T) {
	// Monday 2025-03-10; a 15-day window reaches 2025-03-25 inclusive.
	from := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	dates, err := WeeklyOccurrences(time.Tuesday, from, 15)
	if err != nil {
		t.Fatalf("WeeklyOccurrences: %v", err)
	}
	want := []string{"2025-03-11", "2025-03-18", "2025-03-25"}
	if len(dates) != len(want) {
		t.Fatalf("got %d occurrences %v, want %d", len(dates), dates, len(want))
	}
	for i, d := range dates {
		if got := d.Format("2006-01-02"); got != want[i] {
			t.Errorf("occurrence %d = %s, want %s", i, got, want[i])
		}
		if d.Weekday() != time.Tuesday {
			t.Errorf("occurrence %d falls on %s", i, d.Weekday())
		}
		if h, m, s := d.Clock(); h != 0 || m != 0 || s != 0 {
			t.Errorf("occurrence %d is not midnight: %v", i, d)
		}
	}
}

func TestWeeklyOccurrencesIncludesStartDay(t *testing.T) {
	from := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC) // Monday
	dates, err := WeeklyOccurrences(time.Monday, from, 15)
	if err != nil {
		t.Fatalf("WeeklyOccurrences: %v", err)
	}
	if len(dates) == 0 || dates[0].Format("2006-01-02") != "2025-03-10" {
		t.Fatalf("window start day missing: %v", dates)
	}
}

func TestWeeklyOccurrencesZeroWindow(t *testing.T) {
	from := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC) // Monday
	dates, err := WeeklyOccurrences(time.Monday, from, 0)
	if err != nil {
		t.Fatalf("WeeklyOccurrences: %v", err)
	}
	if len(dates) != 1 {
		t.Fatalf("zero window on matching day: got %v, want just the start day", dates)
	}
	if _, err := WeeklyOccurrences(time.Monday, from, -1); err == nil {
		t.Fatal("negative window: expected error")
	}
}
