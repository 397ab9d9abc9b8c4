package notifiers

import (
	"context"

	"github.com/sbilibin2017/chat-forum/internal/logger"
	"github.com/sbilibin2017/chat-forum/internal/models"
)

// LogNotifier writes notifications, codes included, to the log instead of
// sending them. It must be selected explicitly and is for local development only.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(ctx context.Context, notification models.Notification) error {
	logger.FromContext(ctx).Warnw("notification written to log, not delivered (log driver)",
		"kind", notification.Kind,
		"email", notification.Email,
		"code", notification.Code,
		"expires_in_seconds", notification.ExpiresIn,
	)
	return nil
}
