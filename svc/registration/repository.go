package registration

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/eventkit/svc/event"
)

// Repository is the persistence surface for the registration write path.
// Every method is tenant-scoped the same way as the event repository.
//
// The *ForUpdate methods take an exclusive row lock and are only meaningful
// inside WithTx; the postgres implementation bounds the lock wait and maps
// a timeout to ErrContended.
type Repository interface {
	// WithTx runs fn atomically. Repository calls made with fn's context
	// join the transaction; any error from fn rolls everything back.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	GetEvent(ctx context.Context, id uuid.UUID) (event.Event, error)

	// GetTicketTypeForUpdate reads the ticket type with an exclusive row
	// lock, serializing concurrent registrations on the same inventory.
	GetTicketTypeForUpdate(ctx context.Context, eventID, id uuid.UUID) (event.TicketType, error)

	// IncrementSold bumps the sold counter and the edit version under the
	// lock held by GetTicketTypeForUpdate.
	IncrementSold(ctx context.Context, ticketTypeID uuid.UUID) error

	// DecrementSold lowers the sold counter, flooring at zero, and bumps
	// the edit version.
	DecrementSold(ctx context.Context, ticketTypeID uuid.UUID) error

	// HasActiveRegistration reports whether the user holds a
	// non-cancelled registration for the event.
	HasActiveRegistration(ctx context.Context, eventID, userID uuid.UUID) (bool, error)

	// CreateRegistration inserts the registration. Returns
	// ErrDuplicateCode when the confirmation code is already taken and
	// ErrAlreadyRegistered when the user already holds an active
	// registration for the event.
	CreateRegistration(ctx context.Context, reg Registration) error

	GetRegistration(ctx context.Context, id uuid.UUID) (Registration, error)

	// GetRegistrationForUpdate reads the registration with an exclusive
	// row lock so status transitions cannot race each other.
	GetRegistrationForUpdate(ctx context.Context, id uuid.UUID) (Registration, error)

	// GetRegistrationByCode resolves a normalized confirmation code, as
	// scanned at the door.
	GetRegistrationByCode(ctx context.Context, code string) (Registration, error)

	UpdateRegistration(ctx context.Context, reg Registration) error

	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Registration, error)
}
