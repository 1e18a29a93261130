package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombineHooks(t *testing.T) {
	var calls []string
	a := SessionHooks{
		OnTick: func(ctx context.Context, e *TickEvent) { calls = append(calls, "a:"+e.Reason) },
	}
	b := SessionHooks{
		OnTick:   func(ctx context.Context, e *TickEvent) { calls = append(calls, "b:"+e.Reason) },
		OnConfig: func(ctx context.Context, e *ConfigEvent) { calls = append(calls, "b:"+e.Action) },
	}

	hooks := CombineHooks(a, b, SessionHooks{})
	ctx := context.Background()
	hooks.OnTick(ctx, &TickEvent{Reason: "SetLevel"})
	hooks.OnConfig(ctx, &ConfigEvent{Action: "remove"})
	hooks.OnSync(ctx, &SyncEvent{})

	assert.Equal(t, []string{"a:SetLevel", "b:SetLevel", "b:remove"}, calls)
}
