package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/chat-forum/internal/models"
)

type UserReadRepository struct {
	store *Store
}

func NewUserReadRepository(store *Store) *UserReadRepository {
	return &UserReadRepository{store: store}
}

// GetByUsername returns the user with the given username, or nil if absent.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	const query = `
		SELECT user_id, username, email, password_hash, last_login, created_at
		FROM users
		WHERE username = $1
	`
	return r.getOne(ctx, query, username)
}

// GetByEmail returns the user registered with email, or nil if absent.
func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.UserDB, error) {
	const query = `
		SELECT user_id, username, email, password_hash, last_login, created_at
		FROM users
		WHERE email = $1
	`
	return r.getOne(ctx, query, email)
}

func (r *UserReadRepository) getOne(ctx context.Context, query string, arg string) (*models.UserDB, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	var user models.UserDB
	err := sqlx.GetContext(ctx, r.store.executor(ctx), &user, query, arg)

	logQuery(ctx, query, []any{arg}, user.UserID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}

	return &user, nil
}

// Unique constraints on users, as named by Postgres for the inline UNIQUE columns.
const (
	UsernameConstraint = "users_username_key"
	EmailConstraint    = "users_email_key"
)

type UserWriteRepository struct {
	store *Store
}

func NewUserWriteRepository(store *Store) *UserWriteRepository {
	return &UserWriteRepository{store: store}
}

// Create inserts a user and returns the generated id. An empty email is stored as NULL.
func (r *UserWriteRepository) Create(ctx context.Context, username, passwordHash, email string) (uuid.UUID, error) {
	const query = `
		INSERT INTO users (username, password_hash, email, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING user_id
	`
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	nullEmail := sql.NullString{String: email, Valid: email != ""}

	var userID uuid.UUID
	err := sqlx.GetContext(ctx, r.store.executor(ctx), &userID, query, username, passwordHash, nullEmail)

	logQuery(ctx, query, []any{username, "[hash]", email}, userID, err)

	if err != nil {
		return uuid.Nil, classify(err)
	}
	return userID, nil
}

// UpdateLastLogin stamps the user's last successful login.
func (r *UserWriteRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	const query = `UPDATE users SET last_login = $2 WHERE user_id = $1`

	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	res, err := r.store.executor(ctx).ExecContext(ctx, query, userID, at.UTC())
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(ctx, query, []any{userID, at}, rowsAffected, err)

	return classify(err)
}
