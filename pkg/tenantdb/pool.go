package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/eventkit/pkg/tenant"
)

// tenantSetting is the session variable the row-level-security policies
// read. Must match the current_setting() calls in the migrations.
const tenantSetting = "app.tenant_id"

// execer is the subset of a connection needed to apply the tenant stamp.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Pool wraps a pgxpool.Pool so that every checkout is stamped with the
// tenant from the calling context before any query runs on it.
type Pool struct {
	pool     *pgxpool.Pool
	lockWait time.Duration
}

// Option configures the pool wrapper.
type Option func(*Pool)

// WithLockWaitTimeout bounds row-lock waits inside WithTx transactions.
func WithLockWaitTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.lockWait = d
		}
	}
}

// New wraps pool. The default lock-wait bound is 3s; override it with
// WithLockWaitTimeout or from Config.
func New(pool *pgxpool.Pool, opts ...Option) *Pool {
	p := &Pool{pool: pool, lockWait: 3 * time.Second}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFromConfig wraps pool using env-provided settings.
func NewFromConfig(pool *pgxpool.Pool, cfg Config) *Pool {
	return New(pool, WithLockWaitTimeout(cfg.LockWaitTimeout))
}

// stamp applies the tenant from ctx to the connection's session. An unset
// tenant stamps the empty string: a reused connection must never retain a
// previous borrower's tenant.
func stamp(ctx context.Context, db execer) error {
	var value string
	if id, ok := tenant.IDFromContext(ctx); ok {
		value = id.String()
	}
	if _, err := db.Exec(ctx, "SELECT set_config('"+tenantSetting+"', $1, false)", value); err != nil {
		return errors.Join(ErrStampFailed, err)
	}
	return nil
}

// Acquire checks a connection out of the pool and stamps it for the current
// tenant. If stamping fails the connection is released and the checkout
// fails closed. The caller owns Release.
func (p *Pool) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, errors.Join(ErrAcquireFailed, err)
	}
	if err := stamp(ctx, conn); err != nil {
		conn.Release()
		return nil, err
	}
	return conn, nil
}

type txKey struct{}

// TxFromContext returns the transaction started by WithTx, or nil when the
// context carries none.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// WithTx runs fn inside a transaction on a freshly stamped connection. The
// transaction is carried in fn's context, so repository calls made with that
// context join it automatically. A nested call joins the enclosing
// transaction instead of opening a new one.
//
// Any error from fn rolls the whole transaction back; there are no partial
// effects. A bounded lock_timeout is applied so waits on contended rows
// (the ticket-inventory lock) fail with a classifiable error instead of
// blocking indefinitely.
func (p *Pool) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Join(ErrTxFailed, err)
	}

	if p.lockWait > 0 {
		// lock_timeout does not take bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", p.lockWait.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			return errors.Join(ErrTxFailed, err)
		}
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// Exec runs a statement on a stamped connection, joining the context
// transaction when one is present.
func (p *Pool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := TxFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	conn, err := p.Acquire(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	defer conn.Release()
	return conn.Exec(ctx, sql, args...)
}

// QueryRow runs a single-row query on a stamped connection, joining the
// context transaction when one is present.
func (p *Pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := TxFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	conn, err := p.Acquire(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return releaseRow{row: conn.QueryRow(ctx, sql, args...), conn: conn}
}

// Query runs a multi-row query on a stamped connection, joining the context
// transaction when one is present. The connection is released when the
// returned rows are closed.
func (p *Pool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := TxFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	conn, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		conn.Release()
		return nil, err
	}
	return &releaseRows{Rows: rows, conn: conn}, nil
}

// Healthcheck pings the underlying pool.
func (p *Pool) Healthcheck(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the underlying pool.
func (p *Pool) Close() {
	p.pool.Close()
}

// errRow defers an acquire error to Scan, matching pgx.Row semantics.
type errRow struct {
	err error
}

func (r errRow) Scan(dest ...any) error {
	return r.err
}

// releaseRow returns the connection to the pool once the row is scanned.
type releaseRow struct {
	row  pgx.Row
	conn *pgxpool.Conn
}

func (r releaseRow) Scan(dest ...any) error {
	defer r.conn.Release()
	return r.row.Scan(dest...)
}

// releaseRows returns the connection to the pool when the rows are closed.
type releaseRows struct {
	pgx.Rows
	conn *pgxpool.Conn
}

func (r *releaseRows) Close() {
	r.Rows.Close()
	if r.conn != nil {
		r.conn.Release()
		r.conn = nil
	}
}
