// Package postgres implements the service repositories on top of the
// tenant-stamped connection pool.
//
// Tenancy is enforced twice. The pool stamps every checkout with the
// caller's tenant, which the row-level-security policies read; on top of
// that every query here filters by the tenant id explicitly, so a policy
// mistake degrades to "not found" instead of a cross-tenant read. Methods
// fail closed with tenant.ErrNoTenantInContext when the context carries no
// tenant.
package postgres
