package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/google/uuid"

	"github.com/dmitrymomot/eventkit/pkg/clock"
	"github.com/dmitrymomot/eventkit/pkg/confirmcode"
	"github.com/dmitrymomot/eventkit/pkg/principal"
	"github.com/dmitrymomot/eventkit/pkg/tenant"
	"github.com/dmitrymomot/eventkit/svc/event"
)

// DefaultCodeAttempts bounds confirmation-code collision retries per
// registration.
const DefaultCodeAttempts = 5

// Service implements the registration write path.
type Service struct {
	repo         Repository
	clk          clock.Clock
	log          *slog.Logger
	generate     func() (string, error)
	codeAttempts int
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

// WithCodeGenerator overrides the confirmation-code source. Used by tests
// to force collisions.
func WithCodeGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.generate = fn
		}
	}
}

// WithCodeAttempts sets the collision retry budget.
func WithCodeAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.codeAttempts = n
		}
	}
}

// NewService creates a registration service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		clk:          clock.System(),
		log:          slog.Default(),
		generate:     confirmcode.Generate,
		codeAttempts: DefaultCodeAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput carries one attendee's registration request. UserID is
// optional: when nil the registration is a guest one, tied to the
// confirmation code only, and the duplicate-registration check is skipped.
type RegisterInput struct {
	EventID          uuid.UUID
	TicketTypeID     uuid.UUID
	UserID           *uuid.UUID
	ParticipantName  string
	ParticipantEmail string
}

func (in RegisterInput) validate() error {
	if in.ParticipantName == "" {
		return fmt.Errorf("%w: participant name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(in.ParticipantEmail); err != nil {
		return fmt.Errorf("%w: invalid participant email", ErrInvalidInput)
	}
	return nil
}

// Register claims one ticket. The whole operation runs in a single
// transaction holding an exclusive lock on the ticket type's inventory row,
// so the availability check, the duplicate check and the counter increment
// cannot interleave with a concurrent registration. Either the registration
// row exists and the sold counter reflects it, or neither happened.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Registration, error) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return Registration{}, tenant.ErrNoTenantInContext
	}
	if err := in.validate(); err != nil {
		return Registration{}, err
	}

	var reg Registration
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		ev, err := s.repo.GetEvent(ctx, in.EventID)
		if err != nil {
			return err
		}
		if ev.Status != event.StatusPublished {
			return ErrEventNotOpen
		}

		// Lock the inventory row first; every check below runs under it.
		tt, err := s.repo.GetTicketTypeForUpdate(ctx, in.EventID, in.TicketTypeID)
		if err != nil {
			return err
		}
		if !tt.Active {
			return ErrTicketTypeInactive
		}
		now := s.clk.Now()
		if tt.SalesStartAt != nil && now.Before(*tt.SalesStartAt) {
			return ErrSalesNotOpen
		}
		if tt.SalesEndAt != nil && !now.Before(*tt.SalesEndAt) {
			return ErrSalesClosed
		}
		if !tt.HasAvailability() {
			return ErrSoldOut
		}

		if in.UserID != nil {
			exists, err := s.repo.HasActiveRegistration(ctx, in.EventID, *in.UserID)
			if err != nil {
				return err
			}
			if exists {
				return ErrAlreadyRegistered
			}
		}

		reg = Registration{
			ID:               uuid.New(),
			TenantID:         tenantID,
			EventID:          in.EventID,
			TicketTypeID:     in.TicketTypeID,
			UserID:           in.UserID,
			Status:           StatusConfirmed,
			ParticipantName:  in.ParticipantName,
			ParticipantEmail: in.ParticipantEmail,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.insertWithFreshCode(ctx, &reg); err != nil {
			return err
		}

		return s.repo.IncrementSold(ctx, tt.ID)
	})
	if err != nil {
		return Registration{}, err
	}

	s.log.InfoContext(ctx, "registration confirmed",
		slog.String("registration_id", reg.ID.String()),
		slog.String("event_id", reg.EventID.String()))
	return reg, nil
}

// insertWithFreshCode inserts reg, regenerating the confirmation code on a
// collision until the retry budget runs out.
func (s *Service) insertWithFreshCode(ctx context.Context, reg *Registration) error {
	for attempt := 0; attempt < s.codeAttempts; attempt++ {
		code, err := s.generate()
		if err != nil {
			return err
		}
		reg.ConfirmationCode = code
		err = s.repo.CreateRegistration(ctx, *reg)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrDuplicateCode) {
			continue
		}
		return err
	}
	return ErrCodeExhausted
}

// Cancel voids a registration and returns its ticket to the pool. Only the
// registration's owner or a tenant organizer may cancel; organizers may
// attach a reason. Cancelling is idempotent in outcome but not silent: a
// second cancel reports ErrAlreadyCancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason *string) (Registration, error) {
	caller, ok := principal.FromContext(ctx)
	if !ok {
		return Registration{}, ErrNotAllowed
	}

	var reg Registration
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		var err error
		reg, err = s.repo.GetRegistrationForUpdate(ctx, id)
		if err != nil {
			return err
		}

		owner := reg.UserID != nil && *reg.UserID == caller.UserID
		if !owner && !caller.IsOrganizer() {
			return ErrNotAllowed
		}
		switch reg.Status {
		case StatusCancelled:
			return ErrAlreadyCancelled
		case StatusCheckedIn:
			return ErrAlreadyCheckedIn
		}

		// Take the same inventory lock as Register so the counter update
		// cannot interleave with a concurrent sale.
		if _, err := s.repo.GetTicketTypeForUpdate(ctx, reg.EventID, reg.TicketTypeID); err != nil {
			return err
		}
		if err := s.repo.DecrementSold(ctx, reg.TicketTypeID); err != nil {
			return err
		}

		now := s.clk.Now()
		reg.Status = StatusCancelled
		reg.CancelledAt = &now
		reg.UpdatedAt = now
		if reason != nil && *reason != "" {
			reg.CancelReason = reason
		}
		return s.repo.UpdateRegistration(ctx, reg)
	})
	if err != nil {
		return Registration{}, err
	}

	s.log.InfoContext(ctx, "registration cancelled",
		slog.String("registration_id", reg.ID.String()))
	return reg, nil
}

// CheckIn marks a confirmed registration as attended. It succeeds exactly
// once; a second scan reports ErrAlreadyCheckedIn and a cancelled ticket
// reports ErrNotConfirmed.
func (s *Service) CheckIn(ctx context.Context, id uuid.UUID) (Registration, error) {
	var reg Registration
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		var err error
		reg, err = s.repo.GetRegistrationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		return s.checkIn(ctx, &reg)
	})
	if err != nil {
		return Registration{}, err
	}
	return reg, nil
}

// CheckInByCode resolves a scanned confirmation code and checks the
// registration in. The code is normalized first, so hyphens and case from
// the scanner do not matter.
func (s *Service) CheckInByCode(ctx context.Context, code string) (Registration, error) {
	code = confirmcode.Normalize(code)
	if code == "" {
		return Registration{}, fmt.Errorf("%w: confirmation code is required", ErrInvalidInput)
	}

	var reg Registration
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		found, err := s.repo.GetRegistrationByCode(ctx, code)
		if err != nil {
			return err
		}
		// Re-read under lock: the row may transition between the code
		// lookup and the status change.
		reg, err = s.repo.GetRegistrationForUpdate(ctx, found.ID)
		if err != nil {
			return err
		}
		return s.checkIn(ctx, &reg)
	})
	if err != nil {
		return Registration{}, err
	}
	return reg, nil
}

func (s *Service) checkIn(ctx context.Context, reg *Registration) error {
	switch reg.Status {
	case StatusCheckedIn:
		return ErrAlreadyCheckedIn
	case StatusCancelled:
		return ErrNotConfirmed
	}

	now := s.clk.Now()
	reg.Status = StatusCheckedIn
	reg.CheckedInAt = &now
	reg.UpdatedAt = now
	if err := s.repo.UpdateRegistration(ctx, *reg); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "registration checked in",
		slog.String("registration_id", reg.ID.String()))
	return nil
}

// Get returns the registration by id, scoped to the current tenant.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Registration, error) {
	return s.repo.GetRegistration(ctx, id)
}

// GetByCode returns the registration holding the given confirmation code.
func (s *Service) GetByCode(ctx context.Context, code string) (Registration, error) {
	code = confirmcode.Normalize(code)
	if code == "" {
		return Registration{}, fmt.Errorf("%w: confirmation code is required", ErrInvalidInput)
	}
	return s.repo.GetRegistrationByCode(ctx, code)
}

// ListByEvent returns an event's registrations for the organizer view.
func (s *Service) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Registration, error) {
	return s.repo.ListByEvent(ctx, eventID)
}
