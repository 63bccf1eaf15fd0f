package validator

import (
	"time"

	bookingserrors "actibook/internal/bookings/errors"
	"actibook/pkg/model"
)

// Mode selects which operation a candidate is evaluated for.
type Mode int

const (
	ModeCreate Mode = iota
	ModeReplace
	ModeRemove
)

// Candidate pairs a student with the activity they want to book,
// replace into, or remove.
type Candidate struct {
	Student  *model.StudentProfile
	Activity *model.Activity
	Mode     Mode
}

// Snapshot is the slice of ledger state a decision needs. Callers
// capture it inside the same transaction that performs the write so
// the checks hold at commit time, not just at read time.
type Snapshot struct {
	// DayBooking is the student's existing booking on the activity's
	// day, nil if none. For ModeRemove it is the booking being removed.
	DayBooking *model.Booking
	// ActivityCount is the current number of bookings for the activity.
	ActivityCount int64
	// TotalBookings is the student's current total across the week.
	TotalBookings int64
	Now           time.Time
}

// Policy carries the tunable quota and window bounds.
type Policy struct {
	MinBookings        int
	MaxBookings        int
	ModificationWindow time.Duration
}

// Decision is the outcome of evaluating a candidate. Reason is one of
// the sentinel errors in internal/bookings/errors when denied.
type Decision struct {
	Allowed bool
	Reason  error
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason error) Decision {
	return Decision{Reason: reason}
}

// Evaluate runs the ordered decision pipeline for a candidate against
// a ledger snapshot. It is a pure function: no I/O, no side effects.
// Checks short-circuit on the first failure, and the order is part of
// the contract because it decides which message the student sees.
func Evaluate(c Candidate, snap Snapshot, p Policy) Decision {
	if c.Mode == ModeRemove {
		return evaluateRemove(c, snap, p)
	}

	if !c.Activity.AllowsGrade(c.Student.GradeID) {
		return deny(bookingserrors.ErrIneligibleGrade)
	}

	if snap.DayBooking != nil {
		if c.Mode == ModeCreate {
			return deny(bookingserrors.ErrDayAlreadyBooked)
		}
		// Replace path: the old booking must still be inside its
		// modification window.
		if !snap.DayBooking.ModifiableAt(snap.Now, p.ModificationWindow) {
			return deny(bookingserrors.ErrWindowExpired)
		}
	}

	if !c.Activity.Unlimited() {
		count := snap.ActivityCount
		// Replacing a booking of the same activity frees its own seat.
		if snap.DayBooking != nil && snap.DayBooking.ActivityID == c.Activity.ID {
			count--
		}
		if count >= int64(c.Activity.Capacity) {
			return deny(bookingserrors.ErrActivityFull)
		}
	}

	// Replace swaps one booking for another, so the total is unchanged
	// and only a net-new booking can breach the ceiling.
	if snap.DayBooking == nil && snap.TotalBookings+1 > int64(p.MaxBookings) {
		return deny(bookingserrors.ErrQuotaExceeded)
	}

	return allow()
}

func evaluateRemove(c Candidate, snap Snapshot, p Policy) Decision {
	if snap.DayBooking == nil {
		return deny(bookingserrors.ErrNotFound)
	}
	if !snap.DayBooking.ModifiableAt(snap.Now, p.ModificationWindow) {
		return deny(bookingserrors.ErrWindowExpired)
	}
	if snap.TotalBookings-1 < int64(p.MinBookings) {
		return deny(bookingserrors.ErrQuotaUnderflow)
	}
	return allow()
}
