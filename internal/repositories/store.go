package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/chat-forum/internal/logger"
)

var (
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("unique constraint violation")
	// ErrStoreUnavailable is returned when the database cannot be reached in time.
	ErrStoreUnavailable = errors.New("store unavailable")
)

const uniqueViolation = "23505"

// Store is the shared database handle used by every repository.
// It bounds each statement with a timeout and joins the transaction
// carried by the context, if any.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
	now     func() time.Time
}

// NewStore wraps db. A zero timeout disables per-statement deadlines.
func NewStore(db *sqlx.DB, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout, now: time.Now}
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return classify(s.db.PingContext(ctx))
}

// WithinTx runs fn inside a transaction stored in the context passed to fn.
// The transaction commits if fn returns nil and rolls back on error or panic.
// A call made while a transaction is already in ctx joins it.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if GetTxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to begin transaction", "error", err)
		return classify(err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			_ = tx.Rollback()
			panic(rec)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.FromContext(ctx).Errorw("failed to rollback transaction", "error", rbErr)
			}
			return
		}
		if commitErr := tx.Commit(); commitErr != nil {
			logger.FromContext(ctx).Errorw("failed to commit transaction", "error", commitErr)
			err = classify(commitErr)
		}
	}()

	return fn(setTxToContext(ctx, tx))
}

// executor returns the transaction from ctx, or the pool.
func (s *Store) executor(ctx context.Context) sqlx.ExtContext {
	if tx := GetTxFromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// contextKey is an unexported type for keys in context
type contextKey struct{}

var txKey = contextKey{}

// setTxToContext stores a transaction in the context
func setTxToContext(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// GetTxFromContext retrieves the transaction from the context. Returns nil if not present.
func GetTxFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey).(*sqlx.Tx)
	return tx
}

// classify maps driver errors onto ErrConflict and ErrStoreUnavailable.
func classify(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolation:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.As(err, &connErr) ||
		errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return err
}

// ConflictConstraint returns the constraint behind an ErrConflict, or "" when
// err is not a unique violation.
func ConflictConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.Is(err, ErrConflict) && errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// logQuery logs a statement collapsed onto a single line.
func logQuery(ctx context.Context, query string, args []any, result any, err error) {
	logger.FromContext(ctx).Infow("query",
		"sql", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", result,
		"error", err,
	)
}
