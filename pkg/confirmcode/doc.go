// Package confirmcode generates short human-typeable confirmation codes for
// registrations.
//
// Codes are drawn from an unambiguous uppercase alphabet (no 0/O, 1/I/L) so
// they survive being read aloud at a venue door. Uniqueness is not
// guaranteed by generation alone: the registration write path enforces it
// with a unique database constraint and retries on collision.
package confirmcode
