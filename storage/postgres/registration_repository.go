package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/eventkit/pkg/pg"
	"github.com/dmitrymomot/eventkit/pkg/tenantdb"
	"github.com/dmitrymomot/eventkit/svc/event"
	"github.com/dmitrymomot/eventkit/svc/registration"
)

// Unique constraints the registration insert can trip over. Must match the
// index names in the migrations.
const (
	constraintCode       = "registrations_code_uq"
	constraintActiveUser = "registrations_active_user_uq"
)

// RegistrationRepository persists registrations and drives the locked
// inventory updates.
type RegistrationRepository struct {
	db     *tenantdb.Pool
	events *EventRepository
}

// NewRegistrationRepository creates the repository on a tenant-stamped pool.
func NewRegistrationRepository(db *tenantdb.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db, events: NewEventRepository(db)}
}

// WithTx runs fn in one transaction; repository calls made with fn's
// context join it.
func (r *RegistrationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithTx(ctx, fn)
}

func (r *RegistrationRepository) GetEvent(ctx context.Context, id uuid.UUID) (event.Event, error) {
	return r.events.GetEvent(ctx, id)
}

// GetTicketTypeForUpdate locks the inventory row for the rest of the
// transaction. FOR UPDATE OF tt leaves the joined event row unlocked, so
// organizer edits to the event itself do not serialize behind sales. A
// lock_timeout expiry maps to the retryable ErrContended.
func (r *RegistrationRepository) GetTicketTypeForUpdate(ctx context.Context, eventID, id uuid.UUID) (event.TicketType, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return event.TicketType{}, err
	}
	tt, err := scanTicketType(r.db.QueryRow(ctx, `
		SELECT tt.id, tt.event_id, tt.name, tt.capacity, tt.sold, tt.reserved, tt.version, tt.active,
			tt.sales_start_at, tt.sales_end_at, tt.created_at, tt.updated_at
		FROM ticket_types tt
		JOIN events e ON e.id = tt.event_id
		WHERE tt.id = $1 AND tt.event_id = $2 AND e.tenant_id = $3
		FOR UPDATE OF tt`,
		id, eventID, tenantID))
	if pg.IsNotFoundError(err) {
		return event.TicketType{}, event.ErrTicketTypeNotFound
	}
	if pg.IsLockTimeoutError(err) {
		return event.TicketType{}, registration.ErrContended
	}
	if err != nil {
		return event.TicketType{}, fmt.Errorf("lock ticket type: %w", err)
	}
	return tt, nil
}

func (r *RegistrationRepository) IncrementSold(ctx context.Context, ticketTypeID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE ticket_types
		SET sold = sold + 1, version = version + 1, updated_at = now()
		WHERE id = $1`,
		ticketTypeID)
	if err != nil {
		return fmt.Errorf("increment sold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return event.ErrTicketTypeNotFound
	}
	return nil
}

func (r *RegistrationRepository) DecrementSold(ctx context.Context, ticketTypeID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE ticket_types
		SET sold = GREATEST(sold - 1, 0), version = version + 1, updated_at = now()
		WHERE id = $1`,
		ticketTypeID)
	if err != nil {
		return fmt.Errorf("decrement sold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return event.ErrTicketTypeNotFound
	}
	return nil
}

func (r *RegistrationRepository) HasActiveRegistration(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM registrations
			WHERE event_id = $1 AND user_id = $2 AND tenant_id = $3
				AND status <> 'cancelled'
		)`,
		eventID, userID, tenantID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active registration: %w", err)
	}
	return exists, nil
}

const registrationColumns = `id, tenant_id, event_id, ticket_type_id, user_id, status,
		confirmation_code, participant_name, participant_email,
		cancel_reason, cancelled_at, checked_in_at, created_at, updated_at`

func scanRegistration(row interface{ Scan(...any) error }) (registration.Registration, error) {
	var reg registration.Registration
	err := row.Scan(&reg.ID, &reg.TenantID, &reg.EventID, &reg.TicketTypeID, &reg.UserID,
		&reg.Status, &reg.ConfirmationCode, &reg.ParticipantName, &reg.ParticipantEmail,
		&reg.CancelReason, &reg.CancelledAt, &reg.CheckedInAt, &reg.CreatedAt, &reg.UpdatedAt)
	return reg, err
}

func (r *RegistrationRepository) CreateRegistration(ctx context.Context, reg registration.Registration) error {
	if _, err := requireTenant(ctx); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO registrations (`+registrationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		reg.ID, reg.TenantID, reg.EventID, reg.TicketTypeID, reg.UserID, reg.Status,
		reg.ConfirmationCode, reg.ParticipantName, reg.ParticipantEmail,
		reg.CancelReason, reg.CancelledAt, reg.CheckedInAt, reg.CreatedAt, reg.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			switch pg.ConstraintName(err) {
			case constraintCode:
				return registration.ErrDuplicateCode
			case constraintActiveUser:
				return registration.ErrAlreadyRegistered
			}
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (r *RegistrationRepository) GetRegistration(ctx context.Context, id uuid.UUID) (registration.Registration, error) {
	return r.getRegistration(ctx, id, false)
}

func (r *RegistrationRepository) GetRegistrationForUpdate(ctx context.Context, id uuid.UUID) (registration.Registration, error) {
	return r.getRegistration(ctx, id, true)
}

func (r *RegistrationRepository) getRegistration(ctx context.Context, id uuid.UUID, forUpdate bool) (registration.Registration, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return registration.Registration{}, err
	}
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE id = $1 AND tenant_id = $2`
	if forUpdate {
		query += `
		FOR UPDATE`
	}
	reg, err := scanRegistration(r.db.QueryRow(ctx, query, id, tenantID))
	if pg.IsNotFoundError(err) {
		return registration.Registration{}, registration.ErrRegistrationNotFound
	}
	if pg.IsLockTimeoutError(err) {
		return registration.Registration{}, registration.ErrContended
	}
	if err != nil {
		return registration.Registration{}, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

// GetRegistrationByCode looks a registration up by its normalized
// confirmation code. The stored code keeps its display hyphen; the
// expression index on the stripped form makes this an index lookup.
func (r *RegistrationRepository) GetRegistrationByCode(ctx context.Context, code string) (registration.Registration, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return registration.Registration{}, err
	}
	reg, err := scanRegistration(r.db.QueryRow(ctx, `
		SELECT `+registrationColumns+`
		FROM registrations
		WHERE replace(confirmation_code, '-', '') = $1 AND tenant_id = $2`,
		code, tenantID))
	if pg.IsNotFoundError(err) {
		return registration.Registration{}, registration.ErrRegistrationNotFound
	}
	if err != nil {
		return registration.Registration{}, fmt.Errorf("get registration by code: %w", err)
	}
	return reg, nil
}

func (r *RegistrationRepository) UpdateRegistration(ctx context.Context, reg registration.Registration) error {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE registrations
		SET status = $3, cancel_reason = $4, cancelled_at = $5, checked_in_at = $6, updated_at = $7
		WHERE id = $1 AND tenant_id = $2`,
		reg.ID, tenantID, reg.Status, reg.CancelReason, reg.CancelledAt, reg.CheckedInAt, reg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return registration.ErrRegistrationNotFound
	}
	return nil
}

func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]registration.Registration, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+registrationColumns+`
		FROM registrations
		WHERE event_id = $1 AND tenant_id = $2
		ORDER BY created_at`,
		eventID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []registration.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}
