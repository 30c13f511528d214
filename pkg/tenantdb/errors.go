package tenantdb

import "errors"

var (
	// ErrAcquireFailed is returned when a connection cannot be checked out
	// of the underlying pool.
	ErrAcquireFailed = errors.New("failed to acquire connection from pool")

	// ErrStampFailed is returned when the tenant stamp could not be applied
	// to a freshly checked-out connection. The checkout fails closed: the
	// connection is released unused.
	ErrStampFailed = errors.New("failed to stamp connection with tenant")

	// ErrTxFailed is returned when a transaction cannot be started or
	// configured.
	ErrTxFailed = errors.New("failed to begin transaction")
)
