package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sbilibin2017/chat-forum/internal/hasher"
	"github.com/sbilibin2017/chat-forum/internal/models"
	"github.com/sbilibin2017/chat-forum/internal/repositories"
	"github.com/sbilibin2017/chat-forum/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authMocks struct {
	tx       *services.MockTxRunner
	reader   *services.MockUserReader
	writer   *services.MockUserWriter
	sessions *services.MockSessionStore
	codes    *services.MockCodeStore
	hasher   *services.MockPasswordHasher
	tokens   *services.MockTokenGenerator
}

func newAuthService(t *testing.T, cfg services.AuthConfig) (*services.AuthService, authMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := authMocks{
		tx:       services.NewMockTxRunner(ctrl),
		reader:   services.NewMockUserReader(ctrl),
		writer:   services.NewMockUserWriter(ctrl),
		sessions: services.NewMockSessionStore(ctrl),
		codes:    services.NewMockCodeStore(ctrl),
		hasher:   services.NewMockPasswordHasher(ctrl),
		tokens:   services.NewMockTokenGenerator(ctrl),
	}

	m.tx.EXPECT().
		WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).
		AnyTimes()

	svc := services.NewAuthService(m.tx, m.reader, m.writer, m.sessions, m.codes, m.hasher, m.tokens, cfg)
	return svc, m
}

var unavailable = fmt.Errorf("%w: %w", repositories.ErrStoreUnavailable, context.DeadlineExceeded)

func TestAuthService_Register(t *testing.T) {
	userID := uuid.New()
	hashed := func(m authMocks) {
		m.hasher.EXPECT().Hash("secret").Return("$2a$12$hash", nil)
	}
	conflictOn := func(constraint string) error {
		return fmt.Errorf("%w: %w", repositories.ErrConflict,
			&pgconn.PgError{Code: "23505", ConstraintName: constraint})
	}

	tests := []struct {
		name    string
		setup   func(m authMocks)
		wantID  uuid.UUID
		wantErr error
	}{
		{
			name: "successful registration",
			setup: func(m authMocks) {
				gomock.InOrder(
					m.hasher.EXPECT().Hash("secret").Return("$2a$12$hash", nil),
					m.codes.EXPECT().Check(gomock.Any(), "alice@example.com", "012345").Return(true, nil),
					m.reader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(nil, nil),
					m.reader.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(nil, nil),
					m.writer.EXPECT().Create(gomock.Any(), "alice", "$2a$12$hash", "alice@example.com").Return(userID, nil),
					m.codes.EXPECT().Delete(gomock.Any(), "alice@example.com").Return(nil),
				)
			},
			wantID: userID,
		},
		{
			name: "code delete failure is not surfaced",
			setup: func(m authMocks) {
				hashed(m)
				m.codes.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
				m.reader.EXPECT().GetByUsername(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.reader.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.writer.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(userID, nil)
				m.codes.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("delete failed"))
			},
			wantID: userID,
		},
		{
			name: "invalid code",
			setup: func(m authMocks) {
				hashed(m)
				m.codes.EXPECT().Check(gomock.Any(), "alice@example.com", "012345").Return(false, nil)
			},
			wantErr: services.ErrInvalidOrExpiredCode,
		},
		{
			name: "username taken",
			setup: func(m authMocks) {
				hashed(m)
				m.codes.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
				m.reader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(&models.UserDB{UserID: uuid.New()}, nil)
			},
			wantErr: services.ErrUsernameTaken,
		},
		{
			name: "email taken",
			setup: func(m authMocks) {
				hashed(m)
				m.codes.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
				m.reader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(nil, nil)
				m.reader.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(&models.UserDB{UserID: uuid.New()}, nil)
			},
			wantErr: services.ErrEmailTaken,
		},
		{
			name: "password longer than bcrypt accepts",
			setup: func(m authMocks) {
				m.hasher.EXPECT().Hash("secret").Return("", hasher.ErrPasswordTooLong)
			},
			wantErr: services.ErrPasswordTooLong,
		},
		{
			name: "hash failure",
			setup: func(m authMocks) {
				m.hasher.EXPECT().Hash(gomock.Any()).Return("", errors.New("cost out of range"))
			},
			wantErr: services.ErrRegistrationFailed,
		},
		{
			name: "concurrent insert on username",
			setup: func(m authMocks) {
				hashed(m)
				m.codes.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
				m.reader.EXPECT().GetByUsername(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.reader.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.writer.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(uuid.Nil, conflictOn(repositories.UsernameConstraint))
			},
			wantErr: services.ErrUsernameTaken,
		},
		{
			name: "concurrent insert on email",
			setup: func(m authMocks) {
				hashed(m)
				m.codes.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
				m.reader.EXPECT().GetByUsername(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.reader.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.writer.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(uuid.Nil, conflictOn(repositories.EmailConstraint))
			},
			wantErr: services.ErrEmailTaken,
		},
		{
			name: "conflict on unknown constraint",
			setup: func(m authMocks) {
				hashed(m)
				m.codes.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
				m.reader.EXPECT().GetByUsername(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.reader.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.writer.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(uuid.Nil, repositories.ErrConflict)
			},
			wantErr: services.ErrRegistrationFailed,
		},
		{
			name: "store unavailable",
			setup: func(m authMocks) {
				hashed(m)
				m.codes.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, unavailable)
			},
			wantErr: services.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAuthService(t, services.AuthConfig{SessionTTL: time.Hour})
			tt.setup(m)

			id, err := svc.Register(context.Background(), "alice", "secret", "alice@example.com", "012345")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, uuid.Nil, id)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestAuthService_Register_HashesOutsideTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	tx := services.NewMockTxRunner(ctrl)
	pw := services.NewMockPasswordHasher(ctrl)

	inTx := false
	pw.EXPECT().Hash("secret").DoAndReturn(func(string) (string, error) {
		assert.False(t, inTx, "hash must run before the transaction opens")
		return "$2a$12$hash", nil
	})
	tx.EXPECT().WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			inTx = true
			defer func() { inTx = false }()
			return errors.New("commit failed")
		})

	svc := services.NewAuthService(tx,
		services.NewMockUserReader(ctrl), services.NewMockUserWriter(ctrl),
		services.NewMockSessionStore(ctrl), services.NewMockCodeStore(ctrl),
		pw, services.NewMockTokenGenerator(ctrl),
		services.AuthConfig{})

	_, err := svc.Register(context.Background(), "alice", "secret", "alice@example.com", "012345")
	assert.ErrorIs(t, err, services.ErrRegistrationFailed)
}

func TestAuthService_Register_RealHasherRejectsLongMultibytePassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	bcryptHasher, err := hasher.NewBcrypt(4)
	require.NoError(t, err)

	// 40 runes, 120 bytes.
	password := strings.Repeat("€", 40)

	svc := services.NewAuthService(services.NewMockTxRunner(ctrl),
		services.NewMockUserReader(ctrl), services.NewMockUserWriter(ctrl),
		services.NewMockSessionStore(ctrl), services.NewMockCodeStore(ctrl),
		bcryptHasher, services.NewMockTokenGenerator(ctrl),
		services.AuthConfig{})

	id, err := svc.Register(context.Background(), "alice", password, "alice@example.com", "012345")
	assert.ErrorIs(t, err, services.ErrPasswordTooLong)
	assert.Equal(t, uuid.Nil, id)
}

func TestAuthService_Login(t *testing.T) {
	userID := uuid.New()
	user := &models.UserDB{UserID: userID, Username: "alice", PasswordHash: "$2a$12$hash"}

	tests := []struct {
		name      string
		setup     func(m authMocks)
		wantToken string
		wantErr   error
	}{
		{
			name: "successful login",
			setup: func(m authMocks) {
				m.reader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(user, nil)
				m.hasher.EXPECT().Verify("secret", "$2a$12$hash").Return(true)
				m.tokens.EXPECT().SessionToken().Return("token123", nil)
				m.sessions.EXPECT().Create(gomock.Any(), userID, "token123").Return(nil)
				m.writer.EXPECT().UpdateLastLogin(gomock.Any(), userID, gomock.Any()).Return(nil)
			},
			wantToken: "token123",
		},
		{
			name: "last login failure is not surfaced",
			setup: func(m authMocks) {
				m.reader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(user, nil)
				m.hasher.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(true)
				m.tokens.EXPECT().SessionToken().Return("token123", nil)
				m.sessions.EXPECT().Create(gomock.Any(), userID, "token123").Return(nil)
				m.writer.EXPECT().UpdateLastLogin(gomock.Any(), userID, gomock.Any()).Return(errors.New("update failed"))
			},
			wantToken: "token123",
		},
		{
			name: "unknown user",
			setup: func(m authMocks) {
				m.reader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(nil, nil)
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name: "wrong password",
			setup: func(m authMocks) {
				m.reader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(user, nil)
				m.hasher.EXPECT().Verify("secret", "$2a$12$hash").Return(false)
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name: "lookup store unavailable",
			setup: func(m authMocks) {
				m.reader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(nil, unavailable)
			},
			wantErr: services.ErrStoreUnavailable,
		},
		{
			name: "token generation failure",
			setup: func(m authMocks) {
				m.reader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(user, nil)
				m.hasher.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(true)
				m.tokens.EXPECT().SessionToken().Return("", errors.New("entropy"))
			},
			wantErr: services.ErrSystem,
		},
		{
			name: "session insert failure",
			setup: func(m authMocks) {
				m.reader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(user, nil)
				m.hasher.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(true)
				m.tokens.EXPECT().SessionToken().Return("token123", nil)
				m.sessions.EXPECT().Create(gomock.Any(), userID, "token123").Return(repositories.ErrConflict)
			},
			wantErr: services.ErrSystem,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAuthService(t, services.AuthConfig{SessionTTL: time.Hour})
			tt.setup(m)

			token, session, err := svc.Login(context.Background(), "alice", "secret")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				assert.Nil(t, session)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
			require.NotNil(t, session)
			assert.Equal(t, userID, session.UserID)
			assert.Equal(t, "alice", session.Username)
		})
	}
}

func TestAuthService_Login_MinLatency(t *testing.T) {
	const floor = 60 * time.Millisecond

	t.Run("failure waits for the floor", func(t *testing.T) {
		svc, m := newAuthService(t, services.AuthConfig{LoginMinLatency: floor})
		m.reader.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, nil)

		started := time.Now()
		_, _, err := svc.Login(context.Background(), "ghost", "secret")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
		assert.GreaterOrEqual(t, time.Since(started), floor)
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		svc, m := newAuthService(t, services.AuthConfig{LoginMinLatency: time.Hour})
		m.reader.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		started := time.Now()
		_, _, err := svc.Login(ctx, "ghost", "secret")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
		assert.Less(t, time.Since(started), time.Minute)
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("deletes session", func(t *testing.T) {
		svc, m := newAuthService(t, services.AuthConfig{})
		m.sessions.EXPECT().Delete(gomock.Any(), "token123").Return(nil)
		svc.Logout(context.Background(), "token123")
	})

	t.Run("no token is a no-op", func(t *testing.T) {
		svc, _ := newAuthService(t, services.AuthConfig{})
		svc.Logout(context.Background(), "")
	})

	t.Run("store error is swallowed", func(t *testing.T) {
		svc, m := newAuthService(t, services.AuthConfig{})
		m.sessions.EXPECT().Delete(gomock.Any(), "token123").Return(unavailable)
		svc.Logout(context.Background(), "token123")
	})
}
