package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/eventkit/pkg/tenant"
)

// requireTenant returns the tenant id from the context or fails closed.
func requireTenant(ctx context.Context) (uuid.UUID, error) {
	id, ok := tenant.IDFromContext(ctx)
	if !ok {
		return uuid.UUID{}, tenant.ErrNoTenantInContext
	}
	return id, nil
}
