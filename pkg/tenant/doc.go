// Package tenant provides the tenant context that scopes every data access
// in the platform to one organization.
//
// A tenant is resolved once at the request boundary, attached to the request
// context, and read by the data layer on every query. The context value is
// request-scoped by construction: it dies with the request context, so a
// pooled worker can never observe the previous request's tenant. Database
// sessions are a different story — they are stamped per checkout by
// pkg/tenantdb, which reads the tenant from this package.
//
// # Architecture
//
// Three cooperating pieces:
//
//  1. Resolvers extract a tenant identifier from an HTTP request (header,
//     path segment, subdomain, or a composite of those).
//  2. Providers load the full tenant record from a data source, fronted by a
//     Cache (in-memory or Redis).
//  3. Middleware brackets each request: resolve, load, validate, attach to
//     context.
//
// Handlers and services read the tenant with FromContext or IDFromContext.
// Code that must not run without a tenant uses MustFromContext or the
// RequireTenant middleware.
package tenant
