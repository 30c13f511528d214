package event

import "errors"

var (
	// ErrEventNotFound is returned when the event does not exist within the
	// caller's tenant.
	ErrEventNotFound = errors.New("event not found")

	// ErrTicketTypeNotFound is returned when the ticket type does not exist
	// under the given event.
	ErrTicketTypeNotFound = errors.New("ticket type not found")

	// ErrInvalidTransition is returned when the requested lifecycle change
	// is not in the transition table (e.g. cancelling a completed event).
	ErrInvalidTransition = errors.New("invalid event state transition")

	// ErrStartTimeInPast is returned when publishing an event whose start
	// time is not in the future.
	ErrStartTimeInPast = errors.New("event start time must be in the future")

	// ErrVersionConflict is returned when an optimistic update loses the
	// race: the ticket type changed since it was read. The caller decides
	// whether to re-read and retry.
	ErrVersionConflict = errors.New("ticket type was modified concurrently")

	// ErrCapacityBelowSold is returned when an organizer tries to shrink
	// capacity below what is already sold or reserved.
	ErrCapacityBelowSold = errors.New("capacity cannot be lower than sold and reserved tickets")

	// ErrInvalidInput is returned for structurally invalid inputs.
	ErrInvalidInput = errors.New("invalid input")
)
