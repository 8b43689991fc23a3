package schedule

import (
	"testing"
	"time"
)

func validBooking() BookingRequest {
	now := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)
	return BookingRequest{
		ClassDate:     now.AddDate(0, 0, 3),
		Now:           now,
		MinLeadDays:   DefaultMinLeadDays,
		MaxLeadDays:   DefaultMaxLeadDays,
		ReservedCount: 4,
		Capacity:      10,
	}
}

func TestBookingRequestCheck(t *testing.T) {
	if err := validBooking().Check(); err != nil {
		t.Fatalf("valid booking rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*BookingRequest)
		reason string
	}{
		{"cancelled instance", func(b *BookingRequest) { b.InstanceCancelled = true }, "class is cancelled"},
		{"duplicate booking", func(b *BookingRequest) { b.AlreadyBooked = true }, "already booked for this class"},
		{"full class", func(b *BookingRequest) { b.ReservedCount = b.Capacity }, "class is full"},
		{"over capacity", func(b *BookingRequest) { b.ReservedCount = b.Capacity + 1 }, "class is full"},
	}
	for _, tc := range cases {
		b := validBooking()
		tc.mutate(&b)
		err := b.Check()
		if err == nil {
			t.Errorf("%s: expected rejection", tc.name)
			continue
		}
		if !IsKind(err, KindInvalidOperation) {
			t.Errorf("%s: kind = %v, want invalid operation", tc.name, err)
		}
		if err.Error() != tc.reason {
			t.Errorf("%s: reason = %q, want %q", tc.name, err.Error(), tc.reason)
		}
	}
}

func TestBookingRequestLastSeat(t *testing.T) {
	b := validBooking()
	b.ReservedCount = b.Capacity - 1
	if err := b.Check(); err != nil {
		t.Fatalf("last seat rejected: %v", err)
	}
}

func TestBookingRequestCheckOrder(t *testing.T) {
	// A cancelled instance wins over every later rule, and the lead window
	// is checked before the duplicate and capacity rules.
	b := validBooking()
	b.InstanceCancelled = true
	b.AlreadyBooked = true
	b.ReservedCount = b.Capacity
	if err := b.Check(); err == nil || err.Error() != "class is cancelled" {
		t.Fatalf("err = %v, want cancelled first", err)
	}

	b = validBooking()
	b.ClassDate = b.Now // same-day booking
	b.AlreadyBooked = true
	err := b.Check()
	if err == nil || err.Error() == "already booked for this class" {
		t.Fatalf("err = %v, want the lead-window rejection before the duplicate one", err)
	}
}

func TestCheckSlotSwap(t *testing.T) {
	if err := CheckSlotSwap(false, false, false); err != nil {
		t.Fatalf("same-instructor swap with a clear calendar rejected: %v", err)
	}

	// A swap across instructors hands the counterpart a slot that was never
	// checked against its own week, so it must be refused outright.
	err := CheckSlotSwap(true, false, false)
	if err == nil || !IsKind(err, KindValidation) {
		t.Fatalf("cross-instructor swap: err = %v, want validation rejection", err)
	}

	for _, tc := range []struct {
		name                string
		targetLive, ctpLive bool
	}{
		{"target has sessions", true, false},
		{"counterpart has sessions", false, true},
		{"both have sessions", true, true},
	} {
		err := CheckSlotSwap(false, tc.targetLive, tc.ctpLive)
		if err == nil || !IsKind(err, KindConflict) {
			t.Errorf("%s: err = %v, want conflict", tc.name, err)
		}
	}
}

func TestCheckInstanceCancel(t *testing.T) {
	if err := CheckInstanceCancel(false); err != nil {
		t.Fatalf("live instance: %v", err)
	}
	err := CheckInstanceCancel(true)
	if err == nil || !IsKind(err, KindInvalidOperation) {
		t.Fatalf("already cancelled: err = %v, want invalid operation", err)
	}
}
