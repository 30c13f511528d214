package event_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/eventkit/pkg/clock"
	"github.com/dmitrymomot/eventkit/pkg/tenant"
	"github.com/dmitrymomot/eventkit/svc/event"
)

// fakeRepo keeps entities in memory with the same tenant-filtering and
// version-check semantics as the postgres repository.
type fakeRepo struct {
	mu          sync.Mutex
	events      map[uuid.UUID]event.Event
	ticketTypes map[uuid.UUID]event.TicketType
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events:      make(map[uuid.UUID]event.Event),
		ticketTypes: make(map[uuid.UUID]event.TicketType),
	}
}

func (r *fakeRepo) CreateEvent(ctx context.Context, ev event.Event) error {
	if _, ok := tenant.IDFromContext(ctx); !ok {
		return tenant.ErrNoTenantInContext
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[ev.ID] = ev
	return nil
}

func (r *fakeRepo) GetEvent(ctx context.Context, id uuid.UUID) (event.Event, error) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return event.Event{}, tenant.ErrNoTenantInContext
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[id]
	if !ok || ev.TenantID != tenantID {
		return event.Event{}, event.ErrEventNotFound
	}
	return ev, nil
}

func (r *fakeRepo) ListEvents(ctx context.Context) ([]event.Event, error) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return nil, tenant.ErrNoTenantInContext
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event.Event
	for _, ev := range r.events {
		if ev.TenantID == tenantID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateEventStatus(ctx context.Context, id uuid.UUID, status event.Status) error {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return tenant.ErrNoTenantInContext
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[id]
	if !ok || ev.TenantID != tenantID {
		return event.ErrEventNotFound
	}
	ev.Status = status
	r.events[id] = ev
	return nil
}

func (r *fakeRepo) CreateTicketType(ctx context.Context, tt event.TicketType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticketTypes[tt.ID] = tt
	return nil
}

func (r *fakeRepo) GetTicketType(ctx context.Context, eventID, id uuid.UUID) (event.TicketType, error) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return event.TicketType{}, tenant.ErrNoTenantInContext
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tt, ok := r.ticketTypes[id]
	if !ok || tt.EventID != eventID {
		return event.TicketType{}, event.ErrTicketTypeNotFound
	}
	if ev, ok := r.events[eventID]; !ok || ev.TenantID != tenantID {
		return event.TicketType{}, event.ErrTicketTypeNotFound
	}
	return tt, nil
}

func (r *fakeRepo) ListTicketTypes(ctx context.Context, eventID uuid.UUID) ([]event.TicketType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event.TicketType
	for _, tt := range r.ticketTypes {
		if tt.EventID == eventID {
			out = append(out, tt)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateTicketType(ctx context.Context, tt event.TicketType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.ticketTypes[tt.ID]
	if !ok {
		return event.ErrTicketTypeNotFound
	}
	if stored.Version != tt.Version {
		return event.ErrVersionConflict
	}
	tt.Version++
	r.ticketTypes[tt.ID] = tt
	return nil
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepo) *event.Service {
	return event.NewService(repo, event.WithClock(clock.Fixed(testNow)))
}

func tenantCtx(t *testing.T) (context.Context, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	return tenant.WithTenant(context.Background(), &tenant.Tenant{ID: id, Active: true}), id
}

func createDraft(t *testing.T, svc *event.Service, ctx context.Context) event.Event {
	t.Helper()
	ev, err := svc.CreateEvent(ctx, event.CreateEventInput{
		Name:     "GopherConf",
		StartsAt: testNow.Add(24 * time.Hour),
		EndsAt:   testNow.Add(30 * time.Hour),
	})
	require.NoError(t, err)
	return ev
}

func TestCreateEvent(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx, tenantID := tenantCtx(t)

	ev := createDraft(t, svc, ctx)

	assert.Equal(t, event.StatusDraft, ev.Status)
	assert.Equal(t, tenantID, ev.TenantID, "tenant captured from context at construction")
	assert.NotEqual(t, uuid.UUID{}, ev.ID)
}

func TestCreateEvent_NoTenant(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo())
	_, err := svc.CreateEvent(context.Background(), event.CreateEventInput{
		Name:     "GopherConf",
		StartsAt: testNow.Add(24 * time.Hour),
		EndsAt:   testNow.Add(30 * time.Hour),
	})
	assert.ErrorIs(t, err, tenant.ErrNoTenantInContext)
}

func TestCreateEvent_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo())
	ctx, _ := tenantCtx(t)

	_, err := svc.CreateEvent(ctx, event.CreateEventInput{
		StartsAt: testNow.Add(time.Hour),
		EndsAt:   testNow.Add(2 * time.Hour),
	})
	assert.ErrorIs(t, err, event.ErrInvalidInput)

	_, err = svc.CreateEvent(ctx, event.CreateEventInput{
		Name:     "GopherConf",
		StartsAt: testNow.Add(2 * time.Hour),
		EndsAt:   testNow.Add(time.Hour),
	})
	assert.ErrorIs(t, err, event.ErrInvalidInput)
}

func TestPublish(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx, _ := tenantCtx(t)
	ev := createDraft(t, svc, ctx)

	published, err := svc.Publish(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, event.StatusPublished, published.Status)
}

func TestPublish_StartTimeInPast(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx, _ := tenantCtx(t)

	ev, err := svc.CreateEvent(ctx, event.CreateEventInput{
		Name:     "Yesterday's Meetup",
		StartsAt: testNow.Add(-2 * time.Hour),
		EndsAt:   testNow.Add(-time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.Publish(ctx, ev.ID)
	assert.ErrorIs(t, err, event.ErrStartTimeInPast)

	stored, err := svc.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, event.StatusDraft, stored.Status, "failed publish must not mutate state")
}

func TestLifecycle_TransitionTable(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx, _ := tenantCtx(t)

	// draft → published → completed
	ev := createDraft(t, svc, ctx)
	_, err := svc.Publish(ctx, ev.ID)
	require.NoError(t, err)
	_, err = svc.Complete(ctx, ev.ID)
	require.NoError(t, err)

	// completed events cannot be cancelled
	_, err = svc.Cancel(ctx, ev.ID)
	assert.ErrorIs(t, err, event.ErrInvalidTransition)

	// cancelled is terminal
	ev2 := createDraft(t, svc, ctx)
	_, err = svc.Cancel(ctx, ev2.ID)
	require.NoError(t, err)
	_, err = svc.Publish(ctx, ev2.ID)
	assert.ErrorIs(t, err, event.ErrInvalidTransition)
	_, err = svc.Cancel(ctx, ev2.ID)
	assert.ErrorIs(t, err, event.ErrInvalidTransition, "cancel is not re-enterable")

	// draft cannot complete
	ev3 := createDraft(t, svc, ctx)
	_, err = svc.Complete(ctx, ev3.ID)
	assert.ErrorIs(t, err, event.ErrInvalidTransition)
}

func TestTenantIsolation_Reads(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo)

	ctxA, _ := tenantCtx(t)
	ctxB, _ := tenantCtx(t)

	evA := createDraft(t, svc, ctxA)

	_, err := svc.GetEvent(ctxB, evA.ID)
	assert.ErrorIs(t, err, event.ErrEventNotFound, "tenant B must not see tenant A's event")

	listB, err := svc.ListEvents(ctxB)
	require.NoError(t, err)
	assert.Empty(t, listB)

	// Unset tenant fails closed, not open.
	_, err = svc.GetEvent(tenant.WithoutTenant(ctxA), evA.ID)
	assert.ErrorIs(t, err, tenant.ErrNoTenantInContext)
}

func TestAddTicketType(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx, _ := tenantCtx(t)
	ev := createDraft(t, svc, ctx)

	capacity := int32(100)
	tt, err := svc.AddTicketType(ctx, event.AddTicketTypeInput{
		EventID:  ev.ID,
		Name:     "General Admission",
		Capacity: &capacity,
	})
	require.NoError(t, err)
	assert.True(t, tt.Active)
	assert.EqualValues(t, 100, tt.Available())
	assert.True(t, tt.HasAvailability())

	// Unknown event within the tenant.
	_, err = svc.AddTicketType(ctx, event.AddTicketTypeInput{
		EventID: uuid.New(),
		Name:    "VIP",
	})
	assert.ErrorIs(t, err, event.ErrEventNotFound)
}

func TestUpdateTicketType_OptimisticVersion(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx, _ := tenantCtx(t)
	ev := createDraft(t, svc, ctx)

	capacity := int32(50)
	tt, err := svc.AddTicketType(ctx, event.AddTicketTypeInput{
		EventID:  ev.ID,
		Name:     "GA",
		Capacity: &capacity,
	})
	require.NoError(t, err)

	name := "General Admission"
	updated, err := svc.UpdateTicketType(ctx, event.UpdateTicketTypeInput{
		EventID:      ev.ID,
		TicketTypeID: tt.ID,
		Version:      tt.Version,
		Name:         &name,
	})
	require.NoError(t, err)
	assert.Equal(t, tt.Version+1, updated.Version)

	// A second edit with the stale version loses.
	_, err = svc.UpdateTicketType(ctx, event.UpdateTicketTypeInput{
		EventID:      ev.ID,
		TicketTypeID: tt.ID,
		Version:      tt.Version,
		Name:         &name,
	})
	assert.ErrorIs(t, err, event.ErrVersionConflict)
}

func TestUpdateTicketType_CapacityBelowSold(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx, _ := tenantCtx(t)
	ev := createDraft(t, svc, ctx)

	capacity := int32(50)
	tt, err := svc.AddTicketType(ctx, event.AddTicketTypeInput{
		EventID:  ev.ID,
		Name:     "GA",
		Capacity: &capacity,
	})
	require.NoError(t, err)

	// Simulate sales.
	repo.mu.Lock()
	stored := repo.ticketTypes[tt.ID]
	stored.Sold = 30
	repo.ticketTypes[tt.ID] = stored
	repo.mu.Unlock()

	smaller := int32(20)
	capPtr := &smaller
	_, err = svc.UpdateTicketType(ctx, event.UpdateTicketTypeInput{
		EventID:      ev.ID,
		TicketTypeID: tt.ID,
		Version:      tt.Version,
		Capacity:     &capPtr,
	})
	assert.ErrorIs(t, err, event.ErrCapacityBelowSold)
}

func TestTicketType_SalesWindow(t *testing.T) {
	t.Parallel()

	start := testNow.Add(-time.Hour)
	end := testNow.Add(time.Hour)
	tt := event.TicketType{SalesStartAt: &start, SalesEndAt: &end}

	assert.True(t, tt.SalesOpen(testNow))
	assert.False(t, tt.SalesOpen(testNow.Add(-2*time.Hour)))
	assert.False(t, tt.SalesOpen(testNow.Add(2*time.Hour)))
	assert.False(t, tt.SalesOpen(end), "end bound is exclusive")

	open := event.TicketType{}
	assert.True(t, open.SalesOpen(testNow), "nil bounds are open-ended")
}
