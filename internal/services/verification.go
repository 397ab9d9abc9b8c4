package services

import (
	"context"
	"time"

	"github.com/sbilibin2017/chat-forum/internal/logger"
	"github.com/sbilibin2017/chat-forum/internal/models"
)

//go:generate mockgen -source=verification.go -destination=verification_mock.go -package=services

// NotificationDispatcher hands a notification to a detached worker.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, n models.Notification) error
}

// VerificationService issues and checks email verification codes.
type VerificationService struct {
	reader     UserReader
	codes      CodeStore
	tokens     TokenGenerator
	dispatcher NotificationDispatcher
	codeTTL    time.Duration
}

// NewVerificationService creates a new VerificationService instance.
func NewVerificationService(
	reader UserReader,
	codes CodeStore,
	tokens TokenGenerator,
	dispatcher NotificationDispatcher,
	codeTTL time.Duration,
) *VerificationService {
	return &VerificationService{
		reader:     reader,
		codes:      codes,
		tokens:     tokens,
		dispatcher: dispatcher,
		codeTTL:    codeTTL,
	}
}

// SendCode stores a fresh code for email and queues its delivery.
// Delivery is not awaited and its failure is only logged.
func (svc *VerificationService) SendCode(ctx context.Context, email string) error {
	log := logger.FromContext(ctx)

	existing, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		log.Errorw("failed to check email", "email", email, "error", err)
		return storeError(err)
	}
	if existing != nil {
		return ErrEmailTaken
	}

	code, err := svc.tokens.VerificationCode()
	if err != nil {
		log.Errorw("failed to generate verification code", "error", err)
		return ErrSystem
	}

	if err := svc.codes.Put(ctx, email, code); err != nil {
		log.Errorw("failed to store verification code", "email", email, "error", err)
		return storeError(err)
	}

	err = svc.dispatcher.Dispatch(ctx, models.Notification{
		Kind:      models.NotificationVerificationCode,
		Email:     email,
		Code:      code,
		ExpiresIn: int64(svc.codeTTL / time.Second),
	})
	if err != nil {
		log.Errorw("failed to queue verification email", "email", email, "error", err)
	}

	return nil
}

// CheckCode reports ErrInvalidOrExpiredCode unless email holds this live code.
// The code is not consumed.
func (svc *VerificationService) CheckCode(ctx context.Context, email, code string) error {
	ok, err := svc.codes.Check(ctx, email, code)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to check verification code", "email", email, "error", err)
		return storeError(err)
	}
	if !ok {
		return ErrInvalidOrExpiredCode
	}
	return nil
}
