package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/eventkit/pkg/pg"
	"github.com/dmitrymomot/eventkit/pkg/tenant"
	"github.com/dmitrymomot/eventkit/pkg/tenantdb"
)

// TenantRepository implements tenant.Provider. The tenants table carries no
// row policy: it is the directory the middleware consults before a tenant
// is established, so queries here run on unstamped connections.
type TenantRepository struct {
	db *tenantdb.Pool
}

// NewTenantRepository creates the provider.
func NewTenantRepository(db *tenantdb.Pool) *TenantRepository {
	return &TenantRepository{db: db}
}

// GetByIdentifier resolves a tenant by UUID or subdomain.
func (r *TenantRepository) GetByIdentifier(ctx context.Context, identifier string) (*tenant.Tenant, error) {
	if identifier == "" {
		return nil, tenant.ErrInvalidIdentifier
	}

	query := `
		SELECT id, subdomain, name, active, created_at
		FROM tenants
		WHERE subdomain = $1`
	if _, err := uuid.Parse(identifier); err == nil {
		query = `
		SELECT id, subdomain, name, active, created_at
		FROM tenants
		WHERE id = $1`
	}

	var t tenant.Tenant
	err := r.db.QueryRow(ctx, query, identifier).
		Scan(&t.ID, &t.Subdomain, &t.Name, &t.Active, &t.CreatedAt)
	if pg.IsNotFoundError(err) {
		return nil, tenant.ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &t, nil
}
