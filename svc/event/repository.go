package event

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence surface for events and ticket types. Every
// method is tenant-scoped: implementations filter by the tenant in the
// context in addition to whatever the database-side row policy enforces,
// and return tenant.ErrNoTenantInContext when no tenant is set.
type Repository interface {
	CreateEvent(ctx context.Context, ev Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	UpdateEventStatus(ctx context.Context, id uuid.UUID, status Status) error

	CreateTicketType(ctx context.Context, tt TicketType) error
	GetTicketType(ctx context.Context, eventID, id uuid.UUID) (TicketType, error)
	ListTicketTypes(ctx context.Context, eventID uuid.UUID) ([]TicketType, error)

	// UpdateTicketType applies the change only if the stored version equals
	// tt.Version, incrementing it on success. Returns ErrVersionConflict
	// when the row moved on since the read.
	UpdateTicketType(ctx context.Context, tt TicketType) error
}
