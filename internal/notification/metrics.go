package notification

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts dispatcher activity.
type Metrics struct {
	Enqueued      prometheus.Counter
	Dropped       prometheus.Counter
	Persisted     prometheus.Counter
	PersistErrors prometheus.Counter
	Published     prometheus.Counter
	PublishErrors prometheus.Counter
	Panics        prometheus.Counter
	QueueDepth    prometheus.Gauge
}

// NewMetrics registers the dispatcher metrics with registry. A nil
// registry gets a private one so the counters still work.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)

	return &Metrics{
		Enqueued: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_notifications_enqueued_total",
			Help: "Total number of items accepted by the notification queue",
		}),
		Dropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_notifications_dropped_total",
			Help: "Total number of items dropped because the queue was full",
		}),
		Persisted: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_notifications_persisted_total",
			Help: "Total number of notifications written to the database",
		}),
		PersistErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_notifications_persist_errors_total",
			Help: "Total number of notifications lost to persistence errors",
		}),
		Published: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_realtime_published_total",
			Help: "Total number of realtime messages published",
		}),
		PublishErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_realtime_publish_errors_total",
			Help: "Total number of realtime messages that failed to publish",
		}),
		Panics: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_notification_worker_panics_total",
			Help: "Total number of recovered notification worker panics",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "agora_notification_queue_depth",
			Help: "Number of items waiting in the notification queue",
		}),
	}
}
