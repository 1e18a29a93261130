// Package metrics exports session activity as Prometheus metrics.
package metrics

import (
	"context"

	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the session metrics.
type Collector struct {
	Ticks         *prometheus.CounterVec
	TickDuration  prometheus.Histogram
	SyncPushes    prometheus.Counter
	ConfigChanges *prometheus.CounterVec
}

// New creates the metrics and registers them on reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		Ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildsync_ticks_total",
				Help: "Total number of recalculation passes",
			},
			[]string{"reason", "result"},
		),
		TickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "buildsync_tick_duration_seconds",
				Help:    "Duration of recalculation passes",
				Buckets: prometheus.DefBuckets,
			},
		),
		SyncPushes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "buildsync_sync_pushes_total",
				Help: "Total number of build handles pushed to the sync target",
			},
		),
		ConfigChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildsync_config_changes_total",
				Help: "Total number of applied config option changes",
			},
			[]string{"action"},
		),
	}

	for _, col := range []prometheus.Collector{c.Ticks, c.TickDuration, c.SyncPushes, c.ConfigChanges} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns session hooks that record into c.
func (c *Collector) Hooks() domain.SessionHooks {
	return domain.SessionHooks{
		OnTick: func(ctx context.Context, e *domain.TickEvent) {
			c.Ticks.WithLabelValues(e.Reason, string(e.Result)).Inc()
			c.TickDuration.Observe(e.Duration.Seconds())
		},
		OnSync: func(ctx context.Context, e *domain.SyncEvent) {
			c.SyncPushes.Inc()
		},
		OnConfig: func(ctx context.Context, e *domain.ConfigEvent) {
			c.ConfigChanges.WithLabelValues(e.Action).Inc()
		},
	}
}
