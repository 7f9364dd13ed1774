// Package metrics turns draft events into Prometheus series.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/events"
)

// Collector holds the bot's Prometheus metrics. Each collector owns its
// registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	DraftsAdded     prometheus.Counter
	DraftsRemoved   prometheus.Counter
	PublishStarted  prometheus.Counter
	PublishResults  *prometheus.CounterVec
	PublishDuration *prometheus.HistogramVec
	ReadOnlyNotices prometheus.Counter

	Interactions        *prometheus.CounterVec
	InteractionDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with metrics under namespace
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		DraftsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drafts_added_total",
			Help:      "Total number of drafts added",
		}),
		DraftsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drafts_removed_total",
			Help:      "Total number of drafts removed without publishing",
		}),
		PublishStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_attempts_total",
			Help:      "Total number of publish attempts",
		}),
		PublishResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_results_total",
			Help:      "Publish outcomes by result",
		}, []string{"result"}),
		PublishDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_duration_seconds",
			Help:      "Time from publish start to outcome",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		ReadOnlyNotices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "read_only_notices_total",
			Help:      "Publishes attempted from read-only accounts",
		}),
		Interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discord_interactions_total",
			Help:      "Discord interactions handled by kind, name and status",
		}, []string{"kind", "name", "status"}),
		InteractionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "discord_interaction_duration_seconds",
			Help:      "Handler latency for Discord interactions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "name"}),
	}

	c.registry.MustRegister(
		c.DraftsAdded,
		c.DraftsRemoved,
		c.PublishStarted,
		c.PublishResults,
		c.PublishDuration,
		c.ReadOnlyNotices,
		c.Interactions,
		c.InteractionDuration,
	)

	return c
}

// Attach subscribes the collector to every draft event on bus
func (c *Collector) Attach(bus *events.Bus) {
	bus.Subscribe(c,
		events.EventTypeDraftAdded,
		events.EventTypeDraftRemoved,
		events.EventTypePublishStarted,
		events.EventTypeDraftPublished,
		events.EventTypePublishFailed,
		events.EventTypeReadOnlyAccountNotice,
	)
}

// HandleEvent implements events.EventListener
func (c *Collector) HandleEvent(event events.Event) error {
	var e *events.DraftEvent
	if de, ok := event.(*events.DraftEvent); ok {
		e = de
	}

	switch event.GetType() {
	case events.EventTypeDraftAdded:
		c.DraftsAdded.Inc()
	case events.EventTypeDraftRemoved:
		c.DraftsRemoved.Inc()
	case events.EventTypePublishStarted:
		c.PublishStarted.Inc()
	case events.EventTypeDraftPublished:
		c.observe("published", e)
	case events.EventTypePublishFailed:
		c.observe("failed", e)
	case events.EventTypeReadOnlyAccountNotice:
		c.ReadOnlyNotices.Inc()
	}
	return nil
}

func (c *Collector) observe(result string, e *events.DraftEvent) {
	c.PublishResults.WithLabelValues(result).Inc()
	if e != nil {
		c.PublishDuration.WithLabelValues(result).Observe(e.Duration.Seconds())
	}
}

// ObserveInteraction records one handled Discord interaction
func (c *Collector) ObserveInteraction(kind, name string, duration time.Duration, failed bool) {
	status := "ok"
	if failed {
		status = "error"
	}
	c.Interactions.WithLabelValues(kind, name, status).Inc()
	c.InteractionDuration.WithLabelValues(kind, name).Observe(duration.Seconds())
}

// Priority runs metrics after the listeners that act on events
func (c *Collector) Priority() int { return 100 }

// ID implements events.EventListener
func (c *Collector) ID() string { return "metrics" }

// Registry returns the Prometheus registry for this collector
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
