package tenantdb

import "time"

type Config struct {
	// LockWaitTimeout bounds how long a transaction waits for a row lock
	// (applied via SET LOCAL lock_timeout). On expiry the statement fails
	// with a lock-not-available error, which the registration layer maps to
	// a retryable contention signal. Zero disables the bound.
	LockWaitTimeout time.Duration `env:"DB_LOCK_WAIT_TIMEOUT" envDefault:"3s"`
}
