package notifiers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sbilibin2017/chat-forum/internal/logger"
	"github.com/sbilibin2017/chat-forum/internal/models"
)

var (
	ErrQueueFull        = errors.New("notification queue is full")
	ErrDispatcherClosed = errors.New("notification dispatcher is closed")
)

// Dispatcher delivers notifications on a fixed pool of workers.
// Dispatch never blocks: when the queue is full the notification is
// rejected and the caller decides what to do.
type Dispatcher struct {
	notifier Notifier
	workers  int
	timeout  time.Duration

	queue chan models.Notification
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(notifier Notifier, workers, queueSize int, timeout time.Duration) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Dispatcher{
		notifier: notifier,
		workers:  workers,
		timeout:  timeout,
		queue:    make(chan models.Notification, queueSize),
	}
}

// Start launches the workers. It must be called once.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

// Dispatch enqueues n. The request id from ctx travels with the
// notification; ctx cancellation does not affect delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, n models.Notification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	if n.RequestID == "" {
		n.RequestID = logger.RequestID(ctx)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	select {
	case d.queue <- n:
		notificationQueueDepth.Inc()
		return nil
	default:
		notificationsTotal.WithLabelValues(n.Kind, "dropped").Inc()
		return ErrQueueFull
	}
}

// Shutdown stops accepting notifications and waits for queued ones to be
// delivered or for ctx to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatcher shutdown: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for n := range d.queue {
		notificationQueueDepth.Dec()
		d.deliver(id, n)
	}
}

func (d *Dispatcher) deliver(worker int, n models.Notification) {
	ctx := logger.WithRequestID(context.Background(), n.RequestID)
	log := logger.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			notificationsTotal.WithLabelValues(n.Kind, "failed").Inc()
			log.Errorw("notifier panicked", "worker", worker, "kind", n.Kind, "email", n.Email, "panic", r)
		}
	}()

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := d.notifier.Notify(ctx, n); err != nil {
		notificationsTotal.WithLabelValues(n.Kind, "failed").Inc()
		log.Errorw("failed to deliver notification", "worker", worker, "kind", n.Kind, "email", n.Email, "error", err)
		return
	}

	notificationsTotal.WithLabelValues(n.Kind, "sent").Inc()
	log.Infow("notification delivered", "worker", worker, "kind", n.Kind, "email", n.Email)
}
