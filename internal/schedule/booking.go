package schedule

import "time"

// BookingRequest carries the transactional state a booking decision reads.
// The handler loads the fields inside one serializable transaction; the
// decision itself lives here so the whole chain is testable on values.
type BookingRequest struct {
	InstanceCancelled bool
	ClassDate         time.Time
	Now               time.Time
	MinLeadDays       int
	MaxLeadDays       int
	AlreadyBooked     bool
	ReservedCount     int
	Capacity          int
}

// Check validates the booking in a fixed order: live session, lead window,
// no duplicate booking, free capacity. The first failing rule wins. The
// capacity comparison is strict: ReservedCount == Capacity means full.
func (b BookingRequest) Check() error {
	if b.InstanceCancelled {
		return InvalidOpf("class is cancelled")
	}
	if err := CheckReserveLead(b.ClassDate, b.Now, b.MinLeadDays, b.MaxLeadDays); err != nil {
		return err
	}
	if b.AlreadyBooked {
		return InvalidOpf("already booked for this class")
	}
	if b.ReservedCount >= b.Capacity {
		return InvalidOpf("class is full")
	}
	return nil
}

// CheckSlotSwap decides whether an exact-match template edit may be resolved
// by exchanging slots. A swap hands the counterpart the target's old slot,
// which has only ever been conflict-checked inside its original owner's
// week, so swaps are confined to a single instructor's templates. Templates
// with sessions already on the calendar keep their slot: moving one would
// orphan existing bookings.
func CheckSlotSwap(instructorChanged, targetHasSessions, counterpartHasSessions bool) error {
	if instructorChanged {
		return Validationf("cannot change the instructor and swap slots in the same update")
	}
	if targetHasSessions || counterpartHasSessions {
		return Conflictf("cannot swap slots: a class has upcoming scheduled sessions")
	}
	return nil
}

// CheckInstanceCancel gates taking a session off the calendar.
func CheckInstanceCancel(alreadyCancelled bool) error {
	if alreadyCancelled {
		return InvalidOpf("class is already cancelled")
	}
	return nil
}
