package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStore(sqlx.NewDb(db, "sqlmock"), time.Second), mock
}

func TestStore_WithinTx_Commit(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	called := false
	err := store.WithinTx(context.Background(), func(ctx context.Context) error {
		called = true
		assert.NotNil(t, GetTxFromContext(ctx))
		return nil
	})

	assert.NoError(t, err)
	assert.True(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_RollbackOnError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(ctx context.Context) error {
		return errors.New("insert failed")
	})

	assert.EqualError(t, err, "insert failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_BeginError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin().WillReturnError(fmt.Errorf("dial: %w", context.DeadlineExceeded))

	called := false
	err := store.WithinTx(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.False(t, called)
}

func TestStore_WithinTx_CommitError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(sql.ErrConnDone)

	err := store.WithinTx(context.Background(), func(ctx context.Context) error {
		return nil
	})

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_Panic(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = store.WithinTx(context.Background(), func(ctx context.Context) error {
			panic("test panic")
		})
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_Nested(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(outer context.Context) error {
		return store.WithinTx(outer, func(inner context.Context) error {
			assert.Same(t, GetTxFromContext(outer), GetTxFromContext(inner))
			return nil
		})
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTxFromContext_Empty(t *testing.T) {
	assert.Nil(t, GetTxFromContext(context.Background()))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		wantConflict    bool
		wantUnavailable bool
	}{
		{name: "nil", err: nil},
		{name: "no rows", err: sql.ErrNoRows},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}, wantConflict: true},
		{name: "connection exception", err: &pgconn.PgError{Code: "08006"}, wantUnavailable: true},
		{name: "admin shutdown", err: &pgconn.PgError{Code: "57P01"}, wantUnavailable: true},
		{name: "syntax error", err: &pgconn.PgError{Code: "42601"}},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), wantUnavailable: true},
		{name: "bad conn", err: driver.ErrBadConn, wantUnavailable: true},
		{name: "conn done", err: sql.ErrConnDone, wantUnavailable: true},
		{name: "plain", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, tt.wantConflict, errors.Is(got, ErrConflict))
			assert.Equal(t, tt.wantUnavailable, errors.Is(got, ErrStoreUnavailable))
		})
	}
}

func TestConflictConstraint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "username", err: classify(&pgconn.PgError{Code: "23505", ConstraintName: UsernameConstraint}), want: UsernameConstraint},
		{name: "email", err: classify(&pgconn.PgError{Code: "23505", ConstraintName: EmailConstraint}), want: EmailConstraint},
		{name: "bare conflict", err: ErrConflict, want: ""},
		{name: "not a conflict", err: &pgconn.PgError{Code: "42601", ConstraintName: "users_username_key"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConflictConstraint(tt.err))
		})
	}
}
