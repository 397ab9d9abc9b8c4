package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/chat-forum/internal/hasher"
	"github.com/sbilibin2017/chat-forum/internal/logger"
	"github.com/sbilibin2017/chat-forum/internal/models"
	"github.com/sbilibin2017/chat-forum/internal/repositories"
)

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=services

// Error variables
var (
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrEmailTaken           = errors.New("email already registered")
	ErrPasswordTooLong      = errors.New("password too long")
	ErrRegistrationFailed   = errors.New("registration failed")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrSystem               = errors.New("system error")
	ErrStoreUnavailable     = errors.New("store unavailable")
	ErrNoSession            = errors.New("not authenticated")
	ErrSessionInvalid       = errors.New("session invalid")
	ErrSessionExpired       = errors.New("session expired")
)

// IsUnauthenticated reports whether err means the caller holds no valid session.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrNoSession) ||
		errors.Is(err, ErrSessionInvalid) ||
		errors.Is(err, ErrSessionExpired)
}

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
	GetByEmail(ctx context.Context, email string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Create(ctx context.Context, username, passwordHash, email string) (uuid.UUID, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// SessionStore persists opaque session tokens.
type SessionStore interface {
	Create(ctx context.Context, userID uuid.UUID, token string) error
	FindByToken(ctx context.Context, token string) (*models.SessionUser, error)
	Delete(ctx context.Context, token string) error
}

// CodeStore keeps one time-boxed verification code per email.
type CodeStore interface {
	Put(ctx context.Context, email, code string) error
	Check(ctx context.Context, email, code string) (bool, error)
	Delete(ctx context.Context, email string) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenGenerator produces session tokens and verification codes.
type TokenGenerator interface {
	SessionToken() (string, error)
	VerificationCode() (string, error)
}

// TxRunner runs fn inside a single database transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuthConfig holds the timing parameters of the auth flow.
type AuthConfig struct {
	SessionTTL      time.Duration
	LoginMinLatency time.Duration
}

// AuthService handles registration, login, logout and session validation.
type AuthService struct {
	tx       TxRunner
	reader   UserReader
	writer   UserWriter
	sessions SessionStore
	codes    CodeStore
	hasher   PasswordHasher
	tokens   TokenGenerator
	cfg      AuthConfig
	now      func() time.Time
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(
	tx TxRunner,
	reader UserReader,
	writer UserWriter,
	sessions SessionStore,
	codes CodeStore,
	passwords PasswordHasher,
	tokens TokenGenerator,
	cfg AuthConfig,
) *AuthService {
	return &AuthService{
		tx:       tx,
		reader:   reader,
		writer:   writer,
		sessions: sessions,
		codes:    codes,
		hasher:   passwords,
		tokens:   tokens,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SessionTTL returns the lifetime of a session.
func (svc *AuthService) SessionTTL() time.Duration {
	return svc.cfg.SessionTTL
}

// Register verifies the email code, creates the user and clears the code.
// The password is hashed before the transaction opens; the checks and the
// insert run in one transaction, so a failure leaves no user row.
func (svc *AuthService) Register(ctx context.Context, username, password, email, code string) (uuid.UUID, error) {
	log := logger.FromContext(ctx)

	hash, err := svc.hasher.Hash(password)
	switch {
	case errors.Is(err, hasher.ErrPasswordTooLong):
		log.Infow("registration rejected", "username", username, "reason", err)
		return uuid.Nil, ErrPasswordTooLong
	case err != nil:
		log.Errorw("failed to hash password", "username", username, "error", err)
		return uuid.Nil, ErrRegistrationFailed
	}

	var userID uuid.UUID
	err = svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := svc.codes.Check(ctx, email, code)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidOrExpiredCode
		}

		existing, err := svc.reader.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrUsernameTaken
		}

		existing, err = svc.reader.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailTaken
		}

		userID, err = svc.writer.Create(ctx, username, hash, email)
		return conflictError(err)
	})

	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidOrExpiredCode), errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrEmailTaken):
		log.Infow("registration rejected", "username", username, "email", email, "reason", err)
		return uuid.Nil, err
	case errors.Is(err, repositories.ErrStoreUnavailable):
		log.Errorw("registration failed, store unavailable", "username", username, "error", err)
		return uuid.Nil, ErrStoreUnavailable
	default:
		log.Errorw("registration failed", "username", username, "error", err)
		return uuid.Nil, ErrRegistrationFailed
	}

	if err := svc.codes.Delete(ctx, email); err != nil {
		log.Warnw("failed to delete used verification code", "email", email, "error", err)
	}

	log.Infow("user registered", "user_id", userID, "username", username)
	return userID, nil
}

// Login checks credentials and opens a new session.
// Every outcome takes at least LoginMinLatency measured from the call, and
// an unknown username and a wrong password both yield ErrInvalidCredentials.
func (svc *AuthService) Login(ctx context.Context, username, password string) (string, *models.SessionUser, error) {
	started := time.Now()
	defer svc.waitLatencyFloor(ctx, started)

	log := logger.FromContext(ctx)

	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		log.Errorw("failed to get user", "username", username, "error", err)
		return "", nil, storeError(err)
	}
	if user == nil {
		log.Infow("login failed", "username", username)
		return "", nil, ErrInvalidCredentials
	}

	if !svc.hasher.Verify(password, user.PasswordHash) {
		log.Infow("login failed", "username", username)
		return "", nil, ErrInvalidCredentials
	}

	token, err := svc.tokens.SessionToken()
	if err != nil {
		log.Errorw("failed to generate session token", "error", err)
		return "", nil, ErrSystem
	}

	if err := svc.sessions.Create(ctx, user.UserID, token); err != nil {
		log.Errorw("failed to create session", "user_id", user.UserID, "error", err)
		return "", nil, storeError(err)
	}

	now := svc.now().UTC()
	if err := svc.writer.UpdateLastLogin(ctx, user.UserID, now); err != nil {
		log.Warnw("failed to update last login", "user_id", user.UserID, "error", err)
	}

	log.Infow("user logged in", "user_id", user.UserID, "username", user.Username)
	return token, &models.SessionUser{
		Username:  user.Username,
		UserID:    user.UserID,
		CreatedAt: now,
	}, nil
}

// Logout deletes the session behind token. It never fails from the caller's
// point of view; store errors are only logged.
func (svc *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := svc.sessions.Delete(ctx, token); err != nil {
		logger.FromContext(ctx).Warnw("failed to delete session on logout", "error", err)
	}
}

// ValidateSession resolves token to its user. Expired sessions are deleted
// on detection.
func (svc *AuthService) ValidateSession(ctx context.Context, token string) (*models.SessionUser, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	log := logger.FromContext(ctx)

	session, err := svc.sessions.FindByToken(ctx, token)
	if err != nil {
		log.Errorw("failed to look up session", "error", err)
		return nil, storeError(err)
	}
	if session == nil {
		return nil, ErrSessionInvalid
	}

	if session.ExpiredAt(svc.now(), svc.cfg.SessionTTL) {
		if err := svc.sessions.Delete(ctx, token); err != nil {
			log.Warnw("failed to evict expired session", "user_id", session.UserID, "error", err)
		}
		log.Infow("session expired", "user_id", session.UserID)
		return nil, ErrSessionExpired
	}

	return session, nil
}

// storeError maps a repository failure to the service error surfaced to callers.
func storeError(err error) error {
	if errors.Is(err, repositories.ErrStoreUnavailable) {
		return ErrStoreUnavailable
	}
	return ErrSystem
}

func (svc *AuthService) waitLatencyFloor(ctx context.Context, started time.Time) {
	remaining := svc.cfg.LoginMinLatency - time.Since(started)
	if remaining <= 0 {
		return
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// conflictError maps a unique violation on username or email, left by a
// concurrent registration, onto the matching public error.
func conflictError(err error) error {
	switch repositories.ConflictConstraint(err) {
	case repositories.UsernameConstraint:
		return ErrUsernameTaken
	case repositories.EmailConstraint:
		return ErrEmailTaken
	}
	return err
}
