// Package notifiers delivers verification codes to users.
//
// A Notifier performs one delivery synchronously. The Dispatcher runs
// deliveries on a detached worker pool so that HTTP requests never wait on a
// mail server or broker.
package notifiers

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sbilibin2017/chat-forum/internal/models"
)

//go:generate mockgen -source=notifier.go -destination=notifier_mock.go -package=notifiers

// Notifier delivers a single notification.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

var (
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_forum_notifications_total",
			Help: "Notifications processed by the dispatcher, by outcome",
		},
		[]string{"kind", "status"},
	)

	notificationQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_forum_notification_queue_depth",
			Help: "Notifications waiting for a dispatcher worker",
		},
	)
)
