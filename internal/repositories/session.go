package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/chat-forum/internal/models"
	"github.com/sbilibin2017/chat-forum/internal/tokens"
)

// SessionRepository persists opaque session tokens.
type SessionRepository struct {
	store *Store
}

func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store}
}

// Create inserts a session. A duplicate token yields ErrConflict.
func (r *SessionRepository) Create(ctx context.Context, userID uuid.UUID, token string) error {
	const query = `
		INSERT INTO user_sessions (session_token, user_id, created_at)
		VALUES ($1, $2, $3)
	`
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	createdAt := r.store.now().UTC()
	_, err := r.store.executor(ctx).ExecContext(ctx, query, token, userID, createdAt)

	logQuery(ctx, query, []any{tokens.Mask(token), userID, createdAt}, nil, err)

	return classify(err)
}

// FindByToken joins the session with its user. A missing token or a session
// whose user no longer exists both yield nil.
func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*models.SessionUser, error) {
	const query = `
		SELECT u.username, u.user_id, s.created_at
		FROM user_sessions s
		JOIN users u ON s.user_id = u.user_id
		WHERE s.session_token = $1
	`
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	var session models.SessionUser
	err := sqlx.GetContext(ctx, r.store.executor(ctx), &session, query, token)

	logQuery(ctx, query, []any{tokens.Mask(token)}, session.UserID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}

	return &session, nil
}

// Delete removes a session. Deleting an unknown token is not an error.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM user_sessions WHERE session_token = $1`

	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	res, err := r.store.executor(ctx).ExecContext(ctx, query, token)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(ctx, query, []any{tokens.Mask(token)}, rowsAffected, err)

	return classify(err)
}
