package registration

import (
	"time"

	"github.com/google/uuid"
)

// Status is the registration state. Transitions are one-way: a confirmed
// registration may be cancelled or checked in, and both of those are
// terminal.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCheckedIn Status = "checked_in"
)

// Registration is one attendee's claim on a ticket. UserID is nil for
// guest registrations made without an account; those are identified by the
// confirmation code alone.
type Registration struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	EventID          uuid.UUID
	TicketTypeID     uuid.UUID
	UserID           *uuid.UUID
	Status           Status
	ConfirmationCode string
	ParticipantName  string
	ParticipantEmail string
	CancelReason     *string
	CancelledAt      *time.Time
	CheckedInAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
