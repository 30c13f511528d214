package tenant_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/eventkit/pkg/tenant"
)

type staticProvider struct {
	tenants map[string]*tenant.Tenant
	calls   int
}

func (p *staticProvider) GetByIdentifier(ctx context.Context, identifier string) (*tenant.Tenant, error) {
	p.calls++
	if t, ok := p.tenants[identifier]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

func TestMiddleware_AttachesTenant(t *testing.T) {
	t.Parallel()

	acme := &tenant.Tenant{ID: uuid.New(), Subdomain: "acme", Active: true}
	provider := &staticProvider{tenants: map[string]*tenant.Tenant{"acme": acme}}

	var got *tenant.Tenant
	handler := tenant.Middleware(tenant.NewHeaderResolver(""), provider)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = tenant.FromContext(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("X-Tenant-ID", "acme")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, acme.ID, got.ID)
}

func TestMiddleware_UnknownTenant(t *testing.T) {
	t.Parallel()

	provider := &staticProvider{tenants: map[string]*tenant.Tenant{}}
	handler := tenant.Middleware(tenant.NewHeaderResolver(""), provider)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run for unknown tenant")
		}))

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("X-Tenant-ID", "ghost")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMiddleware_InactiveTenant(t *testing.T) {
	t.Parallel()

	provider := &staticProvider{tenants: map[string]*tenant.Tenant{
		"dormant": {ID: uuid.New(), Subdomain: "dormant", Active: false},
	}}
	handler := tenant.Middleware(tenant.NewHeaderResolver(""), provider)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run for inactive tenant")
		}))

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("X-Tenant-ID", "dormant")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMiddleware_NoIdentifierPassesThrough(t *testing.T) {
	t.Parallel()

	provider := &staticProvider{tenants: map[string]*tenant.Tenant{}}
	var sawTenant bool
	handler := tenant.Middleware(tenant.NewHeaderResolver(""), provider)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, sawTenant = tenant.FromContext(r.Context())
		}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.False(t, sawTenant, "request without identifier carries no tenant")
	assert.Zero(t, provider.calls)
}

func TestMiddleware_CachesProviderResult(t *testing.T) {
	t.Parallel()

	acme := &tenant.Tenant{ID: uuid.New(), Subdomain: "acme", Active: true}
	provider := &staticProvider{tenants: map[string]*tenant.Tenant{"acme": acme}}
	handler := tenant.Middleware(tenant.NewHeaderResolver(""), provider)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("X-Tenant-ID", "acme")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 1, provider.calls, "provider hit once, cache serves the rest")
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	handler := tenant.RequireTenant(nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req = req.WithContext(tenant.WithTenant(req.Context(), &tenant.Tenant{ID: uuid.New()}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
