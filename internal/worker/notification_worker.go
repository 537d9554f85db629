package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/mente-aberta-api/internal/events"
	"github.com/spec-kit/mente-aberta-api/internal/service"
)

const defaultNotificationBuffer = 256

// NotificationWorker delivers notifications off the request path. The dispatcher only enqueues;
// a single goroutine hands events to the NotificationService.
type NotificationWorker struct {
	notifications *service.NotificationService
	queue         chan events.Event
	done          chan struct{}
	logger        *zap.Logger
}

// NewNotificationWorker creates a worker with a bounded queue.
func NewNotificationWorker(notifications *service.NotificationService, buffer int, logger *zap.Logger) *NotificationWorker {
	if buffer <= 0 {
		buffer = defaultNotificationBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		notifications: notifications,
		queue:         make(chan events.Event, buffer),
		done:          make(chan struct{}),
		logger:        logger,
	}
}

// StartNotificationWorker subscribes a worker to every notification event and starts delivery.
// Delivery stops when ctx is cancelled; Done is closed once queued events are flushed.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger) *NotificationWorker {
	w := NewNotificationWorker(notifications, defaultNotificationBuffer, logger)
	if dispatcher == nil || notifications == nil {
		close(w.done)
		return w
	}
	for _, eventType := range service.NotificationEvents {
		dispatcher.Subscribe(eventType, w.Enqueue)
	}
	go w.run(ctx)
	return w
}

// Enqueue is an events.EventHandler. Events are dropped when the queue is full.
func (w *NotificationWorker) Enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
		return nil
	default:
		return fmt.Errorf("notification queue full, dropped %s", event.Type)
	}
}

// Done is closed when the worker has stopped.
func (w *NotificationWorker) Done() <-chan struct{} {
	return w.done
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case event := <-w.queue:
			w.deliver(ctx, event)
		case <-ctx.Done():
			w.flush()
			return
		}
	}
}

func (w *NotificationWorker) flush() {
	for {
		select {
		case event := <-w.queue:
			w.deliver(context.Background(), event)
		default:
			return
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, event events.Event) {
	if err := w.notifications.Handle(ctx, event); err != nil {
		w.logger.Warn("notification failed",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
	}
}
