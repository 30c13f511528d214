// Package eventkit is a multi-tenant event and ticketing platform core.
//
// Many independent organizations share one PostgreSQL database. Every query
// is transparently scoped to the caller's tenant, enforced redundantly by
// database row-level security policies and by explicit tenant filters in the
// application query layer. The registration write path guarantees that a
// finite ticket pool is never oversold, even under concurrent registrations,
// by combining optimistic version checks with exclusive row locks on the
// ticket inventory.
//
// The repository is organized as reusable concern packages under pkg/,
// domain services under svc/, pgx-backed repositories under storage/, and
// HTTP modules under modules/.
package eventkit
