package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/chat-forum/internal/tokens"
)

// VerificationCodeRepository keeps at most one active code per email.
type VerificationCodeRepository struct {
	store *Store
	ttl   time.Duration
}

func NewVerificationCodeRepository(store *Store, ttl time.Duration) *VerificationCodeRepository {
	return &VerificationCodeRepository{store: store, ttl: ttl}
}

// Put creates or replaces the code for email in a single UPSERT.
// Concurrent puts for the same email leave exactly one row; the last writer wins.
func (r *VerificationCodeRepository) Put(ctx context.Context, email, code string) error {
	const query = `
		INSERT INTO email_verifications (email, code, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email)
		DO UPDATE SET code = EXCLUDED.code,
		              expires_at = EXCLUDED.expires_at,
		              created_at = EXCLUDED.created_at
	`
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	now := r.store.now().UTC()
	expiresAt := now.Add(r.ttl)

	_, err := r.store.executor(ctx).ExecContext(ctx, query, email, code, expiresAt, now)

	logQuery(ctx, query, []any{email, tokens.Mask(code), expiresAt, now}, nil, err)

	return classify(err)
}

// Check reports whether email has exactly this code and it has not expired.
// A code whose expiry equals the current instant is expired. Check never
// deletes the code.
func (r *VerificationCodeRepository) Check(ctx context.Context, email, code string) (bool, error) {
	const query = `
		SELECT 1
		FROM email_verifications
		WHERE email = $1 AND code = $2 AND expires_at > $3
	`
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	now := r.store.now().UTC()

	var found int
	err := sqlx.GetContext(ctx, r.store.executor(ctx), &found, query, email, code, now)

	logQuery(ctx, query, []any{email, tokens.Mask(code), now}, found == 1, err)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify(err)
	}

	return true, nil
}

// Delete removes the code for email. Deleting an absent code is not an error.
func (r *VerificationCodeRepository) Delete(ctx context.Context, email string) error {
	const query = `DELETE FROM email_verifications WHERE email = $1`

	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	res, err := r.store.executor(ctx).ExecContext(ctx, query, email)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(ctx, query, []any{email}, rowsAffected, err)

	return classify(err)
}
