package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTick   EventType = "tick"
	EventSync   EventType = "sync"
	EventConfig EventType = "config"
)

// TickResult classifies how a tick ended.
type TickResult string

const (
	TickDelivered TickResult = "delivered" // Output handed to the callback
	TickSkipped   TickResult = "skipped"   // No build, no calculator or incomplete output
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// TickEvent describes one recalculation pass.
type TickEvent struct {
	EventBase
	Reason   string        `json:"reason"`
	Result   TickResult    `json:"result"`
	Duration time.Duration `json:"duration"`
}

// SyncEvent describes one push of the current build to the sync target.
type SyncEvent struct {
	EventBase
	HandleID string `json:"handle_id"`
}

// ConfigEvent describes the outcome of a SetConfigOption call.
type ConfigEvent struct {
	EventBase
	Key    string `json:"key"`
	Action string `json:"action"` // "change" or "remove"
}

// SessionHooks defines callbacks for session observability.
type SessionHooks struct {
	OnTick   func(context.Context, *TickEvent)
	OnSync   func(context.Context, *SyncEvent)
	OnConfig func(context.Context, *ConfigEvent)
}

// CombineHooks returns hooks that invoke each non-nil callback of hooks in order.
func CombineHooks(hooks ...SessionHooks) SessionHooks {
	return SessionHooks{
		OnTick: func(ctx context.Context, e *TickEvent) {
			for _, h := range hooks {
				if h.OnTick != nil {
					h.OnTick(ctx, e)
				}
			}
		},
		OnSync: func(ctx context.Context, e *SyncEvent) {
			for _, h := range hooks {
				if h.OnSync != nil {
					h.OnSync(ctx, e)
				}
			}
		},
		OnConfig: func(ctx context.Context, e *ConfigEvent) {
			for _, h := range hooks {
				if h.OnConfig != nil {
					h.OnConfig(ctx, e)
				}
			}
		},
	}
}
