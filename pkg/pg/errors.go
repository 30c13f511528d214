package pg

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrHealthcheckFailed        = errors.New("healthcheck failed, connection is not available")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")
	ErrMigrationsDirNotFound    = errors.New("migrations directory not found")
	ErrMigrationPathNotProvided = errors.New("migration path not provided")
)

// IsNotFoundError detects pgx.ErrNoRows for consistent "not found" handling.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsTxClosedError detects attempts to use a finished transaction.
func IsTxClosedError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrTxClosed)
}

// IsDuplicateKeyError detects unique constraint violations. The registration
// write path relies on it for confirmation-code collisions and for the
// one-active-registration-per-event constraint.
func IsDuplicateKeyError(err error) bool {
	return hasCode(err, pgerrcode.UniqueViolation)
}

// IsForeignKeyViolationError detects referential integrity violations.
func IsForeignKeyViolationError(err error) bool {
	return hasCode(err, pgerrcode.ForeignKeyViolation)
}

// IsLockTimeoutError detects lock_timeout expiry while waiting on a row
// lock. Surfaced to registration callers as a retryable contention signal.
func IsLockTimeoutError(err error) bool {
	return hasCode(err, pgerrcode.LockNotAvailable)
}

// IsInsufficientPrivilegeError detects a permission denial, which with
// forced row-level security means a write attempted to escape its tenant.
// This should never happen in correct code and is treated as a bug.
func IsInsufficientPrivilegeError(err error) bool {
	return hasCode(err, pgerrcode.InsufficientPrivilege)
}

// ConstraintName returns the name of the violated constraint, if the error
// carries one. Lets callers distinguish which unique constraint fired.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
