package scheduler

import "errors"

// Business-rule errors surfaced by the scheduler. Handlers match them with
// errors.Is and map each to a stable HTTP response; anything else is a
// storage failure and propagates verbatim.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("caller lacks rights over this booking")
	ErrInvalidState = errors.New("operation not allowed in the booking's current state")
	ErrSlotConflict = errors.New("time slot is already booked")
	ErrSelfBooking  = errors.New("owners cannot book their own venue")
	ErrValidation   = errors.New("invalid input")
)
