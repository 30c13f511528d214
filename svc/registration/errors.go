package registration

import "errors"

var (
	// ErrRegistrationNotFound is returned when the registration does not
	// exist within the caller's tenant.
	ErrRegistrationNotFound = errors.New("registration not found")

	// ErrEventNotOpen is returned when registering for an event that is not
	// published (draft, completed or cancelled).
	ErrEventNotOpen = errors.New("event is not open for registration")

	// ErrTicketTypeInactive is returned when the ticket type has been
	// deactivated by the organizer.
	ErrTicketTypeInactive = errors.New("ticket type is not active")

	// ErrSalesNotOpen is returned before the sales window opens.
	ErrSalesNotOpen = errors.New("ticket sales have not started")

	// ErrSalesClosed is returned after the sales window closes.
	ErrSalesClosed = errors.New("ticket sales have ended")

	// ErrSoldOut is returned when no availability remains. The check runs
	// under the inventory row lock, so the answer is authoritative at commit
	// time, not merely at read time.
	ErrSoldOut = errors.New("ticket type is sold out")

	// ErrAlreadyRegistered is returned when the user already holds an
	// active registration for the event. Cancelled registrations do not
	// count; a user may register again after cancelling.
	ErrAlreadyRegistered = errors.New("user already registered for this event")

	// ErrAlreadyCancelled is returned when cancelling a registration that
	// is already cancelled.
	ErrAlreadyCancelled = errors.New("registration is already cancelled")

	// ErrAlreadyCheckedIn is returned when acting on a registration that
	// has already been checked in.
	ErrAlreadyCheckedIn = errors.New("registration is already checked in")

	// ErrNotConfirmed is returned when checking in a registration that is
	// not in the confirmed state.
	ErrNotConfirmed = errors.New("registration is not confirmed")

	// ErrNotAllowed is returned when the caller is neither the owner of the
	// registration nor an organizer of the tenant.
	ErrNotAllowed = errors.New("caller is not allowed to modify this registration")

	// ErrDuplicateCode is returned by the repository when a generated
	// confirmation code collides with an existing one. The service retries
	// with a fresh code.
	ErrDuplicateCode = errors.New("confirmation code already exists")

	// ErrCodeExhausted is returned when code generation keeps colliding
	// past the retry budget.
	ErrCodeExhausted = errors.New("could not generate a unique confirmation code")

	// ErrContended is returned when the inventory row lock could not be
	// acquired within the configured wait. The operation is safe to retry.
	ErrContended = errors.New("ticket inventory is contended, retry")

	// ErrInvalidInput is returned for structurally invalid inputs.
	ErrInvalidInput = errors.New("invalid input")
)
