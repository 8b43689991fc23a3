package schedule

import (
	"testing"
	"time"
)

func mustClock(t *testing.T, s string) ClockTime {
	t.Helper()
	ct, err := ParseClock(s)
	if err != nil {
		t.Fatalf("ParseClock(%q): %v", s, err)
	}
	return ct
}

func win(t *testing.T, start, end string) Window {
	t.Helper()
	return Window{Start: mustClock(t, start), End: mustClock(t, end)}
}

func TestParseClock(t *testing.T) {
	if got := mustClock(t, "18:00"); got != 18*60 {
		t.Fatalf("18:00 = %d minutes, want %d", got, 18*60)
	}
	if got := mustClock(t, "07:30:00"); got != 7*60+30 {
		t.Fatalf("07:30:00 = %d minutes, want %d", got, 7*60+30)
	}
	for _, bad := range []string{"", "25:00", "12:60", "noon", "-1:00"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("ParseClock(%q): expected error", bad)
		}
	}
	if s := mustClock(t, "09:05").String(); s != "09:05:00" {
		t.Fatalf("String() = %q, want 09:05:00", s)
	}
}

func TestWindowOverlaps(t *testing.T) {
	base := win(t, "18:00", "19:00")

	cases := []struct {
		name  string
		other Window
		want  bool
	}{
		{"identical", win(t, "18:00", "19:00"), true},
		{"contained", win(t, "18:15", "18:45"), true},
		{"straddles start", win(t, "17:30", "18:30"), true},
		{"straddles end", win(t, "18:30", "19:30"), true},
		{"touches end", win(t, "19:00", "20:00"), false},
		{"touches start", win(t, "17:00", "18:00"), false},
		{"disjoint", win(t, "06:00", "07:00"), false},
	}
	for _, tc := range cases {
		if got := base.Overlaps(tc.other); got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
		// overlap is symmetric
		if got := tc.other.Overlaps(base); got != tc.want {
			t.Errorf("%s (reversed): Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	existing := []Slot{
		{ID: 1, Weekday: time.Tuesday, Window: win(t, "18:00", "19:00")},
		{ID: 2, Weekday: time.Thursday, Window: win(t, "18:00", "19:00")},
	}

	// free slot on another day
	target := Slot{ID: 9, Weekday: time.Monday, Window: win(t, "18:00", "19:00")}
	if kind, _ := Classify(target, existing); kind != NoConflict {
		t.Fatalf("Monday slot: kind = %v, want NoConflict", kind)
	}

	// back-to-back on the same day is allowed
	target = Slot{ID: 9, Weekday: time.Tuesday, Window: win(t, "19:00", "20:00")}
	if kind, _ := Classify(target, existing); kind != NoConflict {
		t.Fatalf("back-to-back slot: kind = %v, want NoConflict", kind)
	}

	// identical slot reports the counterpart for a possible swap
	target = Slot{ID: 9, Weekday: time.Tuesday, Window: win(t, "18:00", "19:00")}
	kind, hit := Classify(target, existing)
	if kind != ExactMatch {
		t.Fatalf("identical slot: kind = %v, want ExactMatch", kind)
	}
	if hit == nil || hit.ID != 1 {
		t.Fatalf("identical slot: hit = %+v, want slot 1", hit)
	}

	// partial intersection is never swappable
	target = Slot{ID: 9, Weekday: time.Tuesday, Window: win(t, "18:30", "19:30")}
	if kind, _ := Classify(target, existing); kind != PartialOverlap {
		t.Fatalf("straddling slot: kind = %v, want PartialOverlap", kind)
	}

	// a slot never conflicts with itself (update path)
	target = Slot{ID: 1, Weekday: time.Tuesday, Window: win(t, "18:00", "19:00")}
	if kind, _ := Classify(target, existing); kind != NoConflict {
		t.Fatalf("self slot: kind = %v, want NoConflict", kind)
	}
}

func TestClassifyExactPlusPartial(t *testing.T) {
	// An exact twin plus a second overlapper must read as PartialOverlap:
	// swapping would still leave the other collision in place.
	existing := []Slot{
		{ID: 1, Weekday: time.Friday, Window: win(t, "10:00", "11:00")},
		{ID: 2, Weekday: time.Friday, Window: win(t, "10:30", "11:30")},
	}
	target := Slot{ID: 9, Weekday: time.Friday, Window: win(t, "10:00", "11:00")}
	if kind, _ := Classify(target, existing); kind != PartialOverlap {
		t.Fatalf("kind = %v, want PartialOverlap", kind)
	}
}

func TestFirstFreeRoom(t *testing.T) {
	w := win(t, "18:00", "19:00")
	occupied := map[int][]Window{
		1: {win(t, "17:30", "18:30")},
		2: {win(t, "06:00", "07:00")},
	}
	room, ok := FirstFreeRoom(5, w, occupied)
	if !ok || room != 2 {
		t.Fatalf("FirstFreeRoom = (%d, %v), want (2, true)", room, ok)
	}

	// room 1 frees up when the window only touches its booking
	room, ok = FirstFreeRoom(5, win(t, "18:30", "19:30"), occupied)
	if !ok || room != 1 {
		t.Fatalf("FirstFreeRoom = (%d, %v), want (1, true)", room, ok)
	}

	full := map[int][]Window{}
	for r := 1; r <= 3; r++ {
		full[r] = []Window{w}
	}
	if _, ok := FirstFreeRoom(3, w, full); ok {
		t.Fatal("expected no free room in a fully booked pool")
	}
}
