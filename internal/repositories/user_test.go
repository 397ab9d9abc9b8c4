package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

var userColumns = []string{"user_id", "username", "email", "password_hash", "last_login", "created_at"}

func TestUserReadRepository_GetByUsername(t *testing.T) {
	userID := uuid.New()
	createdAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name        string
		setup       func(mock sqlmock.Sqlmock)
		wantUser    bool
		wantErr     bool
		unavailable bool
	}{
		{
			name: "found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
					WithArgs("alice").
					WillReturnRows(sqlmock.NewRows(userColumns).
						AddRow(userID.String(), "alice", "alice@example.com", "$2a$04$hash", nil, createdAt))
			},
			wantUser: true,
		},
		{
			name: "not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
					WithArgs("alice").
					WillReturnError(sql.ErrNoRows)
			},
		},
		{
			name: "store down",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
					WithArgs("alice").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr:     true,
			unavailable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			tt.setup(mock)

			repo := NewUserReadRepository(store)
			user, err := repo.GetByUsername(context.Background(), "alice")

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.unavailable, errors.Is(err, ErrStoreUnavailable))
			} else {
				assert.NoError(t, err)
			}

			if tt.wantUser {
				assert.NotNil(t, user)
				assert.Equal(t, userID, user.UserID)
				assert.Equal(t, "alice", user.Username)
				assert.Equal(t, "alice@example.com", user.Email.String)
				assert.False(t, user.LastLogin.Valid)
			} else {
				assert.Nil(t, user)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserReadRepository_GetByEmail(t *testing.T) {
	store, mock := newMockStore(t)
	repo := NewUserReadRepository(store)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	user, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_Create(t *testing.T) {
	userID := uuid.New()

	t.Run("with email", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs("alice", "$2a$04$hash", sql.NullString{String: "alice@example.com", Valid: true}).
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(userID.String()))

		got, err := NewUserWriteRepository(store).Create(context.Background(), "alice", "$2a$04$hash", "alice@example.com")
		assert.NoError(t, err)
		assert.Equal(t, userID, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("without email stores NULL", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs("bob", "$2a$04$hash", sql.NullString{}).
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(userID.String()))

		_, err := NewUserWriteRepository(store).Create(context.Background(), "bob", "$2a$04$hash", "")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate username", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

		got, err := NewUserWriteRepository(store).Create(context.Background(), "alice", "$2a$04$hash", "")
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, uuid.Nil, got)
	})
}

func TestUserWriteRepository_UpdateLastLogin(t *testing.T) {
	store, mock := newMockStore(t)
	userID := uuid.New()
	at := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_login = $2 WHERE user_id = $1")).
		WithArgs(userID, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewUserWriteRepository(store).UpdateLastLogin(context.Background(), userID, at)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
