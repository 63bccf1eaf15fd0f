package errors

import "errors"

// Denial reasons returned by the booking decision pipeline. These are
// ordinary outcomes, not faults; the service layer maps each one to a
// user-facing error with enough detail to act on.
var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrIneligibleGrade = errors.New("student's grade is not allowed for this activity")

	ErrDayAlreadyBooked = errors.New("student already has a booking on this day")

	ErrActivityFull = errors.New("activity has no spots left")

	ErrQuotaExceeded = errors.New("weekly booking limit reached")

	ErrQuotaUnderflow = errors.New("removal would drop student below the booking minimum")

	ErrWindowExpired = errors.New("booking can no longer be modified")
)
