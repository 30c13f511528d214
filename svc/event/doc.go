// Package event owns the Event and TicketType entities and their lifecycle.
//
// Events move through DRAFT → PUBLISHED → COMPLETED, with CANCELLED
// reachable from DRAFT or PUBLISHED only. Publishing additionally requires
// the start time to lie in the future. Ticket types carry the inventory
// ledger (capacity, sold, reserved) and a version counter used for
// optimistic concurrency on organizer edits; the hot registration path locks
// the row instead and lives in svc/registration.
//
// Entities are tenant-scoped: the tenant id is taken from the request
// context exactly once, at construction, and never changes afterward.
// TicketType carries no tenant column of its own — isolation is inherited
// through the owning event.
package event
