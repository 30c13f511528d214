package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/eventkit/pkg/clock"
	"github.com/dmitrymomot/eventkit/pkg/statemachine"
	"github.com/dmitrymomot/eventkit/pkg/tenant"
)

// Service orchestrates the event lifecycle and organizer-side ticket-type
// management.
type Service struct {
	repo      Repository
	clk       clock.Clock
	log       *slog.Logger
	lifecycle *statemachine.Machine
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the time source. Used by tests.
func WithClock(clk clock.Clock) Option {
	return func(s *Service) {
		if clk != nil {
			s.clk = clk
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates an event service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		clk:  clock.System(),
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lifecycle = newLifecycle(s.clk.Now)
	return s
}

// CreateEventInput carries the organizer's new-event request.
type CreateEventInput struct {
	Name        string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
}

func (in CreateEventInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.StartsAt.IsZero() || in.EndsAt.IsZero() {
		return fmt.Errorf("%w: start and end times are required", ErrInvalidInput)
	}
	if !in.EndsAt.After(in.StartsAt) {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalidInput)
	}
	return nil
}

// CreateEvent creates a draft event owned by the current tenant. The tenant
// id is captured from the context here, once, and is immutable afterward.
func (s *Service) CreateEvent(ctx context.Context, in CreateEventInput) (Event, error) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return Event{}, tenant.ErrNoTenantInContext
	}
	if err := in.validate(); err != nil {
		return Event{}, err
	}

	now := s.clk.Now()
	ev := Event{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        in.Name,
		Description: in.Description,
		Status:      StatusDraft,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateEvent(ctx, ev); err != nil {
		return Event{}, err
	}

	s.log.InfoContext(ctx, "event created", slog.String("event_id", ev.ID.String()))
	return ev, nil
}

// GetEvent returns the event by id, scoped to the current tenant.
func (s *Service) GetEvent(ctx context.Context, id uuid.UUID) (Event, error) {
	return s.repo.GetEvent(ctx, id)
}

// ListEvents returns all events of the current tenant.
func (s *Service) ListEvents(ctx context.Context) ([]Event, error) {
	return s.repo.ListEvents(ctx)
}

// Publish moves a draft event to PUBLISHED. Fails without mutating state if
// the transition is not allowed or the start time is not in the future.
func (s *Service) Publish(ctx context.Context, id uuid.UUID) (Event, error) {
	return s.fire(ctx, id, triggerPublish)
}

// Complete moves a published event to COMPLETED.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (Event, error) {
	return s.fire(ctx, id, triggerComplete)
}

// Cancel moves a draft or published event to CANCELLED. Completed events
// cannot be cancelled, and cancellation is not re-enterable.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (Event, error) {
	return s.fire(ctx, id, triggerCancel)
}

func (s *Service) fire(ctx context.Context, id uuid.UUID, trigger statemachine.StringEvent) (Event, error) {
	ev, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return Event{}, err
	}

	next, err := s.lifecycle.Transition(ctx, ev.Status, trigger, ev)
	if err != nil {
		if statemachine.IsNoTransitionAvailableError(err) {
			return Event{}, fmt.Errorf("%w: %s cannot %s", ErrInvalidTransition, ev.Status, trigger)
		}
		return Event{}, err
	}

	status := Status(next.Name())
	if err := s.repo.UpdateEventStatus(ctx, id, status); err != nil {
		return Event{}, err
	}
	ev.Status = status
	ev.UpdatedAt = s.clk.Now()

	s.log.InfoContext(ctx, "event status changed",
		slog.String("event_id", id.String()), slog.String("status", string(status)))
	return ev, nil
}

// AddTicketTypeInput carries a new inventory pool for an event.
type AddTicketTypeInput struct {
	EventID      uuid.UUID
	Name         string
	Capacity     *int32
	SalesStartAt *time.Time
	SalesEndAt   *time.Time
}

// AddTicketType creates a ticket type under an existing event of the
// current tenant.
func (s *Service) AddTicketType(ctx context.Context, in AddTicketTypeInput) (TicketType, error) {
	if in.Name == "" {
		return TicketType{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Capacity != nil && *in.Capacity < 0 {
		return TicketType{}, fmt.Errorf("%w: capacity cannot be negative", ErrInvalidInput)
	}

	// Existence check doubles as the tenant filter: a foreign event reads
	// as not found.
	if _, err := s.repo.GetEvent(ctx, in.EventID); err != nil {
		return TicketType{}, err
	}

	now := s.clk.Now()
	tt := TicketType{
		ID:           uuid.New(),
		EventID:      in.EventID,
		Name:         in.Name,
		Capacity:     in.Capacity,
		Active:       true,
		SalesStartAt: in.SalesStartAt,
		SalesEndAt:   in.SalesEndAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateTicketType(ctx, tt); err != nil {
		return TicketType{}, err
	}
	return tt, nil
}

// GetTicketType returns one ticket type under an event of the current tenant.
func (s *Service) GetTicketType(ctx context.Context, eventID, id uuid.UUID) (TicketType, error) {
	return s.repo.GetTicketType(ctx, eventID, id)
}

// ListTicketTypes returns the ticket types of an event.
func (s *Service) ListTicketTypes(ctx context.Context, eventID uuid.UUID) ([]TicketType, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListTicketTypes(ctx, eventID)
}

// UpdateTicketTypeInput carries an organizer edit. Version must be the value
// read when the form was loaded; nil fields are left unchanged.
type UpdateTicketTypeInput struct {
	EventID      uuid.UUID
	TicketTypeID uuid.UUID
	Version      int64
	Name         *string
	Capacity     **int32 // outer nil = unchanged, inner nil = unlimited
	Active       *bool
	SalesStartAt *time.Time
	SalesEndAt   *time.Time
}

// UpdateTicketType applies an organizer edit with an optimistic version
// check. Concurrent sales bump the version under their row lock, so an edit
// racing a sale loses cleanly with ErrVersionConflict instead of silently
// clobbering the inventory counters.
func (s *Service) UpdateTicketType(ctx context.Context, in UpdateTicketTypeInput) (TicketType, error) {
	tt, err := s.repo.GetTicketType(ctx, in.EventID, in.TicketTypeID)
	if err != nil {
		return TicketType{}, err
	}
	if tt.Version != in.Version {
		return TicketType{}, ErrVersionConflict
	}

	if in.Name != nil {
		if *in.Name == "" {
			return TicketType{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		tt.Name = *in.Name
	}
	if in.Capacity != nil {
		capacity := *in.Capacity
		if capacity != nil && *capacity < tt.Sold+tt.Reserved {
			return TicketType{}, ErrCapacityBelowSold
		}
		tt.Capacity = capacity
	}
	if in.Active != nil {
		tt.Active = *in.Active
	}
	if in.SalesStartAt != nil {
		tt.SalesStartAt = in.SalesStartAt
	}
	if in.SalesEndAt != nil {
		tt.SalesEndAt = in.SalesEndAt
	}
	tt.UpdatedAt = s.clk.Now()

	if err := s.repo.UpdateTicketType(ctx, tt); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return TicketType{}, ErrVersionConflict
		}
		return TicketType{}, err
	}
	tt.Version++
	return tt, nil
}
