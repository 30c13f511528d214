package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant is one organization sharing the platform database. Only the fields
// needed for request-scoped decisions are carried here; everything else
// stays in the tenants table.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Subdomain string    `json:"subdomain"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Provider loads tenant records from a data source. The identifier may be a
// UUID or a subdomain; implementations decide which formats they accept.
// Returns ErrTenantNotFound when nothing matches.
type Provider interface {
	GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error)
}
