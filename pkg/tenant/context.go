package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithTenant returns a context carrying the tenant. Set once at the request
// boundary; the value is immutable for the rest of the request.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// WithoutTenant returns a context with the tenant explicitly unset. Used by
// maintenance paths that must run unscoped, and by tests asserting the
// fail-closed behavior of the data layer.
func WithoutTenant(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, (*Tenant)(nil))
}

// FromContext retrieves the tenant from the context.
// Returns nil, false if no tenant is set.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	if !ok || t == nil {
		return nil, false
	}
	return t, true
}

// IDFromContext retrieves just the tenant ID from the context.
// Returns the zero UUID and false if no tenant is set.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	t, ok := FromContext(ctx)
	if !ok {
		return uuid.UUID{}, false
	}
	return t.ID, true
}

// MustFromContext retrieves the tenant from the context and panics if it is
// missing. Use only in handlers that cannot function without a tenant.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return t
}

// LoggerExtractor returns a logger context extractor that attaches the
// current tenant ID to every log record.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
