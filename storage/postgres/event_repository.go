package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/eventkit/pkg/pg"
	"github.com/dmitrymomot/eventkit/pkg/tenantdb"
	"github.com/dmitrymomot/eventkit/svc/event"
)

// EventRepository persists events and ticket types.
type EventRepository struct {
	db *tenantdb.Pool
}

// NewEventRepository creates the repository on a tenant-stamped pool.
func NewEventRepository(db *tenantdb.Pool) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, tenant_id, name, description, status, starts_at, ends_at, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (event.Event, error) {
	var ev event.Event
	err := row.Scan(&ev.ID, &ev.TenantID, &ev.Name, &ev.Description, &ev.Status,
		&ev.StartsAt, &ev.EndsAt, &ev.CreatedAt, &ev.UpdatedAt)
	return ev, err
}

func (r *EventRepository) CreateEvent(ctx context.Context, ev event.Event) error {
	if _, err := requireTenant(ctx); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ev.ID, ev.TenantID, ev.Name, ev.Description, ev.Status,
		ev.StartsAt, ev.EndsAt, ev.CreatedAt, ev.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetEvent(ctx context.Context, id uuid.UUID) (event.Event, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return event.Event{}, err
	}
	ev, err := scanEvent(r.db.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE id = $1 AND tenant_id = $2`,
		id, tenantID))
	if pg.IsNotFoundError(err) {
		return event.Event{}, event.ErrEventNotFound
	}
	if err != nil {
		return event.Event{}, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

func (r *EventRepository) ListEvents(ctx context.Context) ([]event.Event, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE tenant_id = $1
		ORDER BY starts_at, created_at`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []event.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *EventRepository) UpdateEventStatus(ctx context.Context, id uuid.UUID, status event.Status) error {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE events
		SET status = $3, updated_at = now()
		WHERE id = $1 AND tenant_id = $2`,
		id, tenantID, status)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

const ticketTypeColumns = `id, event_id, name, capacity, sold, reserved, version, active,
		sales_start_at, sales_end_at, created_at, updated_at`

func scanTicketType(row interface{ Scan(...any) error }) (event.TicketType, error) {
	var tt event.TicketType
	err := row.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Capacity, &tt.Sold, &tt.Reserved,
		&tt.Version, &tt.Active, &tt.SalesStartAt, &tt.SalesEndAt, &tt.CreatedAt, &tt.UpdatedAt)
	return tt, err
}

func (r *EventRepository) CreateTicketType(ctx context.Context, tt event.TicketType) error {
	if _, err := requireTenant(ctx); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO ticket_types (`+ticketTypeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		tt.ID, tt.EventID, tt.Name, tt.Capacity, tt.Sold, tt.Reserved, tt.Version, tt.Active,
		tt.SalesStartAt, tt.SalesEndAt, tt.CreatedAt, tt.UpdatedAt)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return event.ErrEventNotFound
		}
		return fmt.Errorf("insert ticket type: %w", err)
	}
	return nil
}

// Ticket types have no tenant column; they inherit isolation through their
// event, so every query joins events and filters there.
func (r *EventRepository) GetTicketType(ctx context.Context, eventID, id uuid.UUID) (event.TicketType, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return event.TicketType{}, err
	}
	tt, err := scanTicketType(r.db.QueryRow(ctx, `
		SELECT tt.id, tt.event_id, tt.name, tt.capacity, tt.sold, tt.reserved, tt.version, tt.active,
			tt.sales_start_at, tt.sales_end_at, tt.created_at, tt.updated_at
		FROM ticket_types tt
		JOIN events e ON e.id = tt.event_id
		WHERE tt.id = $1 AND tt.event_id = $2 AND e.tenant_id = $3`,
		id, eventID, tenantID))
	if pg.IsNotFoundError(err) {
		return event.TicketType{}, event.ErrTicketTypeNotFound
	}
	if err != nil {
		return event.TicketType{}, fmt.Errorf("get ticket type: %w", err)
	}
	return tt, nil
}

func (r *EventRepository) ListTicketTypes(ctx context.Context, eventID uuid.UUID) ([]event.TicketType, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT tt.id, tt.event_id, tt.name, tt.capacity, tt.sold, tt.reserved, tt.version, tt.active,
			tt.sales_start_at, tt.sales_end_at, tt.created_at, tt.updated_at
		FROM ticket_types tt
		JOIN events e ON e.id = tt.event_id
		WHERE tt.event_id = $1 AND e.tenant_id = $2
		ORDER BY tt.created_at`,
		eventID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	defer rows.Close()

	var out []event.TicketType
	for rows.Next() {
		tt, err := scanTicketType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket type: %w", err)
		}
		out = append(out, tt)
	}
	return out, rows.Err()
}

func (r *EventRepository) UpdateTicketType(ctx context.Context, tt event.TicketType) error {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE ticket_types tt
		SET name = $4, capacity = $5, active = $6,
			sales_start_at = $7, sales_end_at = $8,
			updated_at = $9, version = tt.version + 1
		FROM events e
		WHERE tt.id = $1 AND tt.version = $2 AND tt.event_id = e.id AND e.tenant_id = $3`,
		tt.ID, tt.Version, tenantID,
		tt.Name, tt.Capacity, tt.Active, tt.SalesStartAt, tt.SalesEndAt, tt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update ticket type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Zero rows means either a lost optimistic race or a missing row;
		// a cheap re-read tells them apart.
		if _, err := r.GetTicketType(ctx, tt.EventID, tt.ID); err != nil {
			return err
		}
		return event.ErrVersionConflict
	}
	return nil
}
