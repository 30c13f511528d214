// Package registration implements the attendee-facing ticket write path:
// registering for an event, cancelling, and door check-in.
//
// Register is the contended operation. It locks the ticket type's inventory
// row exclusively for the duration of the transaction, so availability
// checks, the duplicate-registration check, and the sold-counter increment
// are atomic with respect to concurrent registrations. N concurrent
// registrations against K remaining tickets yield exactly min(N, K)
// confirmations and the rest fail with ErrSoldOut.
package registration
