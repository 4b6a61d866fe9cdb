// Package notification persists notifications and fans them out to live
// subscribers off the request path.
package notification

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/agorahq/agora/internal/realtime"
	"go.uber.org/zap"
)

const (
	DefaultQueueSize    = 1024
	DefaultBatchSize    = 50
	DefaultTickInterval = time.Second

	restartDelay = time.Second
	flushTimeout = 5 * time.Second
)

// Store persists notifications.
type Store interface {
	InsertNotifications(ctx context.Context, notifications []*types.Notification) error
}

// Config tunes the dispatcher. Zero values take the defaults.
type Config struct {
	QueueSize    int
	BatchSize    int
	TickInterval time.Duration
}

// item is a queued unit of work. Ephemeral items carry only a message.
type item struct {
	notification *types.Notification
	event        string
	groups       []string
	message      *realtime.Message
}

// Dispatcher queues notifications and realtime messages and delivers them
// from a single background worker. Enqueueing never blocks.
type Dispatcher struct {
	store        Store
	publisher    realtime.Publisher
	queue        chan item
	batchSize    int
	tickInterval time.Duration
	metrics      *Metrics
	logger       *zap.Logger
}

// NewDispatcher creates a Dispatcher. Call Run to start delivery.
func NewDispatcher(
	store Store, publisher realtime.Publisher, cfg Config, metrics *Metrics, logger *zap.Logger,
) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &Dispatcher{
		store:        store,
		publisher:    publisher,
		queue:        make(chan item, cfg.QueueSize),
		batchSize:    cfg.BatchSize,
		tickInterval: cfg.TickInterval,
		metrics:      metrics,
		logger:       logger.Named("notification_dispatcher"),
	}
}

// Enqueue schedules a notification for persistence and a live push to
// groups, or to the recipient's own channel when no group is given.
func (d *Dispatcher) Enqueue(n *types.Notification, groups ...string) {
	if n == nil {
		return
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if len(groups) == 0 {
		groups = []string{realtime.UserChannel(n.RecipientID)}
	}

	d.offer(item{notification: n, event: eventFor(n), groups: groups})
}

// Push schedules an ephemeral realtime message that is never persisted.
func (d *Dispatcher) Push(msg *realtime.Message) {
	if msg == nil {
		return
	}
	d.offer(item{message: msg})
}

func (d *Dispatcher) offer(it item) {
	select {
	case d.queue <- it:
		d.metrics.Enqueued.Inc()
		d.metrics.QueueDepth.Set(float64(len(d.queue)))
	default:
		d.metrics.Dropped.Inc()
		d.logger.Warn("Notification queue full; dropping item",
			zap.Int("capacity", cap(d.queue)))
	}
}

// Run drains the queue on every tick until ctx is cancelled, restarting
// the loop after a panic. Remaining items are flushed on shutdown.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("Notification dispatcher started",
		zap.Int("batchSize", d.batchSize),
		zap.Duration("tickInterval", d.tickInterval))

	for {
		d.runSafely(ctx)
		if ctx.Err() != nil {
			break
		}

		d.logger.Info("Restarting notification dispatcher loop")
		select {
		case <-ctx.Done():
		case <-time.After(restartDelay):
		}
	}

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()

	for d.DrainOnce(flushCtx) > 0 { //nolint:revive // drain until empty
	}

	d.logger.Info("Notification dispatcher stopped")
}

// runSafely runs the tick loop and recovers a panic so Run can restart it.
func (d *Dispatcher) runSafely(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			d.metrics.Panics.Inc()
			d.logger.Error("Notification dispatcher panic",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())))
		}
	}()

	ticker := time.NewTicker(d.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.DrainOnce(ctx)
		}
	}
}

// DrainOnce processes up to one batch of queued items and returns how many
// it took. Failures are logged and counted, never returned.
func (d *Dispatcher) DrainOnce(ctx context.Context) int {
	batch := make([]item, 0, d.batchSize)

collect:
	for len(batch) < d.batchSize {
		select {
		case it := <-d.queue:
			batch = append(batch, it)
		default:
			break collect
		}
	}
	d.metrics.QueueDepth.Set(float64(len(d.queue)))

	if len(batch) == 0 {
		return 0
	}

	notifications := make([]*types.Notification, 0, len(batch))
	for _, it := range batch {
		if it.notification != nil {
			notifications = append(notifications, it.notification)
		}
	}

	saved := d.persist(ctx, notifications)

	for _, it := range batch {
		if it.message != nil {
			d.publish(ctx, it.message)
			continue
		}
		if _, ok := saved[it.notification]; !ok {
			continue
		}
		for _, group := range it.groups {
			d.publish(ctx, realtime.NewMessage(group, it.event, it.notification))
		}
	}

	return len(batch)
}

// persist stores the batch in one statement. When that fails it retries
// each notification alone so a single bad row only loses its own delivery.
// The returned set holds the notifications that were stored.
func (d *Dispatcher) persist(ctx context.Context, notifications []*types.Notification) map[*types.Notification]struct{} {
	saved := make(map[*types.Notification]struct{}, len(notifications))
	if len(notifications) == 0 {
		return saved
	}

	err := d.store.InsertNotifications(ctx, notifications)
	if err == nil {
		d.metrics.Persisted.Add(float64(len(notifications)))
		for _, n := range notifications {
			saved[n] = struct{}{}
		}
		return saved
	}

	d.logger.Warn("Batch insert failed, storing notifications one by one",
		zap.Error(err),
		zap.Int("count", len(notifications)))

	for _, n := range notifications {
		if err := d.store.InsertNotifications(ctx, []*types.Notification{n}); err != nil {
			d.metrics.PersistErrors.Inc()
			d.logger.Error("Failed to persist notification",
				zap.Error(err),
				zap.Int64("recipientID", n.RecipientID),
				zap.String("type", n.Type.String()))
			continue
		}
		d.metrics.Persisted.Inc()
		saved[n] = struct{}{}
	}

	return saved
}

func (d *Dispatcher) publish(ctx context.Context, msg *realtime.Message) {
	if err := d.publisher.Publish(ctx, msg); err != nil {
		d.metrics.PublishErrors.Inc()
		d.logger.Warn("Failed to publish realtime message",
			zap.Error(err),
			zap.String("channel", msg.Channel),
			zap.String("event", msg.Event))
		return
	}
	d.metrics.Published.Inc()
}

// eventFor maps a notification type to its realtime event name.
func eventFor(n *types.Notification) string {
	switch n.Type {
	case enum.NotificationTypeNewAnswer:
		return realtime.EventNewAnswer
	case enum.NotificationTypeNewComment:
		return realtime.EventNewComment
	case enum.NotificationTypeNewReply:
		return realtime.EventNewReply
	case enum.NotificationTypeVoteReceived:
		return realtime.EventVoteReceived
	case enum.NotificationTypeAnswerAccepted:
		return realtime.EventAnswerAccepted
	case enum.NotificationTypeReputationChanged:
		return realtime.EventReputationChanged
	case enum.NotificationTypeBadgeAwarded:
		return realtime.EventBadgeAwarded
	}
	return n.Type.String()
}
