// Package principal carries the authenticated caller through the request
// context, separately from the tenant.
//
// Authentication itself happens outside this module; whatever terminates it
// (JWT middleware, session layer) builds a Principal from its claims and
// attaches it with WithPrincipal. The registration write path reads the user
// id from here, never from request parameters.
package principal
