package registrations_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/eventkit/modules/registrations"
	"github.com/dmitrymomot/eventkit/pkg/clock"
	"github.com/dmitrymomot/eventkit/pkg/confirmcode"
	"github.com/dmitrymomot/eventkit/pkg/principal"
	"github.com/dmitrymomot/eventkit/pkg/tenant"
	"github.com/dmitrymomot/eventkit/svc/event"
	"github.com/dmitrymomot/eventkit/svc/registration"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu sync.Mutex

	events        map[uuid.UUID]event.Event
	ticketTypes   map[uuid.UUID]event.TicketType
	registrations map[uuid.UUID]registration.Registration
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events:        make(map[uuid.UUID]event.Event),
		ticketTypes:   make(map[uuid.UUID]event.TicketType),
		registrations: make(map[uuid.UUID]registration.Registration),
	}
}

func (r *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}

func (r *fakeRepo) GetEvent(ctx context.Context, id uuid.UUID) (event.Event, error) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return event.Event{}, tenant.ErrNoTenantInContext
	}
	ev, ok := r.events[id]
	if !ok || ev.TenantID != tenantID {
		return event.Event{}, event.ErrEventNotFound
	}
	return ev, nil
}

func (r *fakeRepo) GetTicketTypeForUpdate(ctx context.Context, eventID, id uuid.UUID) (event.TicketType, error) {
	tt, ok := r.ticketTypes[id]
	if !ok || tt.EventID != eventID {
		return event.TicketType{}, event.ErrTicketTypeNotFound
	}
	return tt, nil
}

func (r *fakeRepo) IncrementSold(ctx context.Context, ticketTypeID uuid.UUID) error {
	tt := r.ticketTypes[ticketTypeID]
	tt.Sold++
	tt.Version++
	r.ticketTypes[ticketTypeID] = tt
	return nil
}

func (r *fakeRepo) DecrementSold(ctx context.Context, ticketTypeID uuid.UUID) error {
	tt := r.ticketTypes[ticketTypeID]
	if tt.Sold > 0 {
		tt.Sold--
	}
	tt.Version++
	r.ticketTypes[ticketTypeID] = tt
	return nil
}

func (r *fakeRepo) HasActiveRegistration(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	for _, reg := range r.registrations {
		if reg.EventID == eventID && reg.UserID != nil && *reg.UserID == userID &&
			reg.Status != registration.StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) CreateRegistration(ctx context.Context, reg registration.Registration) error {
	for _, existing := range r.registrations {
		if confirmcode.Normalize(existing.ConfirmationCode) == confirmcode.Normalize(reg.ConfirmationCode) {
			return registration.ErrDuplicateCode
		}
	}
	r.registrations[reg.ID] = reg
	return nil
}

func (r *fakeRepo) GetRegistration(ctx context.Context, id uuid.UUID) (registration.Registration, error) {
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return registration.Registration{}, tenant.ErrNoTenantInContext
	}
	reg, ok := r.registrations[id]
	if !ok || reg.TenantID != tenantID {
		return registration.Registration{}, registration.ErrRegistrationNotFound
	}
	return reg, nil
}

func (r *fakeRepo) GetRegistrationForUpdate(ctx context.Context, id uuid.UUID) (registration.Registration, error) {
	return r.GetRegistration(ctx, id)
}

func (r *fakeRepo) GetRegistrationByCode(ctx context.Context, code string) (registration.Registration, error) {
	for _, reg := range r.registrations {
		if confirmcode.Normalize(reg.ConfirmationCode) == code {
			return reg, nil
		}
	}
	return registration.Registration{}, registration.ErrRegistrationNotFound
}

func (r *fakeRepo) UpdateRegistration(ctx context.Context, reg registration.Registration) error {
	r.registrations[reg.ID] = reg
	return nil
}

func (r *fakeRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]registration.Registration, error) {
	var out []registration.Registration
	for _, reg := range r.registrations {
		if reg.EventID == eventID {
			out = append(out, reg)
		}
	}
	return out, nil
}

type fixture struct {
	repo     *fakeRepo
	srv      *httptest.Server
	tenantID uuid.UUID
	eventID  uuid.UUID
	ttID     uuid.UUID
	userID   uuid.UUID
}

// withIdentity injects tenant and principal the way the middleware chain
// would.
func withIdentity(tenantID, userID uuid.UUID, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := tenant.WithTenant(r.Context(), &tenant.Tenant{ID: tenantID, Active: true})
			ctx = principal.WithPrincipal(ctx, principal.Principal{UserID: userID, Roles: roles})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newFixture(t *testing.T, capacity int32, roles ...string) *fixture {
	t.Helper()

	f := &fixture{
		repo:     newFakeRepo(),
		tenantID: uuid.New(),
		eventID:  uuid.New(),
		ttID:     uuid.New(),
		userID:   uuid.New(),
	}
	f.repo.events[f.eventID] = event.Event{
		ID:       f.eventID,
		TenantID: f.tenantID,
		Status:   event.StatusPublished,
		StartsAt: testNow.Add(24 * time.Hour),
	}
	f.repo.ticketTypes[f.ttID] = event.TicketType{
		ID:       f.ttID,
		EventID:  f.eventID,
		Name:     "General Admission",
		Capacity: &capacity,
		Active:   true,
	}

	svc := registration.NewService(f.repo, registration.WithClock(clock.Fixed(testNow)))
	f.srv = httptest.NewServer(withIdentity(f.tenantID, f.userID, roles...)(registrations.Router(svc)))
	t.Cleanup(f.srv.Close)
	return f
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeData(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func (f *fixture) registerBody() string {
	return `{
		"event_id": "` + f.eventID.String() + `",
		"ticket_type_id": "` + f.ttID.String() + `",
		"user_id": "` + f.userID.String() + `",
		"participant_name": "Ada Lovelace",
		"participant_email": "ada@example.com"
	}`
}

func TestRegisterFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10)

	resp := doJSON(t, http.MethodPost, f.srv.URL+"/", f.registerBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var reg struct {
		ID               uuid.UUID `json:"id"`
		Status           string    `json:"status"`
		ConfirmationCode string    `json:"confirmation_code"`
	}
	decodeData(t, resp, &reg)
	assert.Equal(t, "confirmed", reg.Status)
	assert.NotEmpty(t, reg.ConfirmationCode)

	// The attendee's ticket renders as a QR PNG.
	resp = doJSON(t, http.MethodGet, f.srv.URL+"/"+reg.ID.String()+"/qr", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	// Door scan by code.
	resp = doJSON(t, http.MethodPost, f.srv.URL+"/check-in", `{"code": "`+reg.ConfirmationCode+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var checked struct {
		Status string `json:"status"`
	}
	decodeData(t, resp, &checked)
	assert.Equal(t, "checked_in", checked.Status)

	// Second scan is rejected.
	resp = doJSON(t, http.MethodPost, f.srv.URL+"/check-in", `{"code": "`+reg.ConfirmationCode+`"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegister_SoldOut(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 0)

	resp := doJSON(t, http.MethodPost, f.srv.URL+"/", f.registerBody())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegister_DuplicateUser(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10)

	resp := doJSON(t, http.MethodPost, f.srv.URL+"/", f.registerBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, f.srv.URL+"/", f.registerBody())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCancel(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10)

	resp := doJSON(t, http.MethodPost, f.srv.URL+"/", f.registerBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reg struct {
		ID uuid.UUID `json:"id"`
	}
	decodeData(t, resp, &reg)

	resp = doJSON(t, http.MethodPost, f.srv.URL+"/"+reg.ID.String()+"/cancel", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cancelled struct {
		Status string `json:"status"`
	}
	decodeData(t, resp, &cancelled)
	assert.Equal(t, "cancelled", cancelled.Status)

	resp = doJSON(t, http.MethodPost, f.srv.URL+"/"+reg.ID.String()+"/cancel", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCancel_Forbidden(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10)

	// Registration owned by a different user, created directly in the repo.
	owner := uuid.New()
	reg := registration.Registration{
		ID:               uuid.New(),
		TenantID:         f.tenantID,
		EventID:          f.eventID,
		TicketTypeID:     f.ttID,
		UserID:           &owner,
		Status:           registration.StatusConfirmed,
		ConfirmationCode: "AAAA-AAAA",
	}
	f.repo.registrations[reg.ID] = reg

	resp := doJSON(t, http.MethodPost, f.srv.URL+"/"+reg.ID.String()+"/cancel", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCancel_OrganizerWithReason(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10, principal.RoleOrganizer)

	owner := uuid.New()
	reg := registration.Registration{
		ID:               uuid.New(),
		TenantID:         f.tenantID,
		EventID:          f.eventID,
		TicketTypeID:     f.ttID,
		UserID:           &owner,
		Status:           registration.StatusConfirmed,
		ConfirmationCode: "AAAA-AAAA",
	}
	f.repo.registrations[reg.ID] = reg
	tt := f.repo.ticketTypes[f.ttID]
	tt.Sold = 1
	f.repo.ticketTypes[f.ttID] = tt

	resp := doJSON(t, http.MethodPost, f.srv.URL+"/"+reg.ID.String()+"/cancel",
		`{"reason": "event rescheduled"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cancelled struct {
		Status       string  `json:"status"`
		CancelReason *string `json:"cancel_reason"`
	}
	decodeData(t, resp, &cancelled)
	assert.Equal(t, "cancelled", cancelled.Status)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "event rescheduled", *cancelled.CancelReason)
}

func TestListByEvent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10)

	resp := doJSON(t, http.MethodPost, f.srv.URL+"/", f.registerBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, f.srv.URL+"/event/"+f.eventID.String(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []struct {
		ID uuid.UUID `json:"id"`
	}
	decodeData(t, resp, &list)
	assert.Len(t, list, 1)
}
