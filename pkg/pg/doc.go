// Package pg provides the PostgreSQL foundation for the platform: connection
// pooling, schema migrations, health checks, and error classification.
//
// It is a thin layer over pgx/v5 and goose/v3. Config is populated from
// environment variables, Connect opens a retrying pool, and Migrate applies
// goose SQL migrations (including the row-level-security policies that back
// tenant isolation) before the service starts serving.
//
// Error helpers classify *pgconn.PgError codes the business logic cares
// about: unique violations for confirmation-code collisions, lock timeouts
// for registration contention, and insufficient-privilege errors that
// indicate a row-level-security denial reached the application layer.
//
// Tenant stamping of checked-out connections lives in pkg/tenantdb, which
// builds on the pool opened here.
package pg
