package metrics_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/aretw0/buildsync/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg)
	require.NoError(t, err)

	hooks := c.Hooks()
	ctx := context.Background()

	hooks.OnTick(ctx, &domain.TickEvent{Reason: "SetLevel", Result: domain.TickDelivered, Duration: 5 * time.Millisecond})
	hooks.OnTick(ctx, &domain.TickEvent{Reason: "SetLevel", Result: domain.TickDelivered})
	hooks.OnTick(ctx, &domain.TickEvent{Reason: "SetConfigOption: remove", Result: domain.TickSkipped})
	hooks.OnSync(ctx, &domain.SyncEvent{HandleID: "x"})
	hooks.OnConfig(ctx, &domain.ConfigEvent{Key: "k", Action: "change"})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Ticks.WithLabelValues("SetLevel", "delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Ticks.WithLabelValues("SetConfigOption: remove", "skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SyncPushes))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ConfigChanges.WithLabelValues("change")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.TickDuration))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)

	_, err = metrics.New(reg)
	assert.Error(t, err)
}
