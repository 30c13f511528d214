// Package tenantdb binds database connections to the tenant in the request
// context.
//
// Pooled connections are reused across unrelated requests, so a connection
// checked out for tenant B may still carry tenant A's session state from a
// previous borrower. The single invariant this package enforces is that no
// query ever runs on a connection whose session has not been freshly stamped
// for the current checkout:
//
//   - If the context carries a tenant, the session setting app.tenant_id is
//     set to that tenant's UUID. The database row-level-security policies key
//     off this setting.
//   - If the context carries no tenant, the setting is explicitly stamped to
//     the empty string — never left at whatever the previous borrower set.
//     RLS policies treat the empty setting as "match nothing", so an
//     unscoped request fails closed.
//   - If stamping itself fails, the checkout fails: the connection is
//     released and an error is returned before any query can run.
//
// Stamping is one statement per checkout, not per query. Transactions opened
// through WithTx additionally apply a bounded lock_timeout so a registration
// waiting on a ticket-inventory row lock cannot block forever.
package tenantdb
