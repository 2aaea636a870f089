package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts order_id and event_kind from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if orderID := GetOrderID(ctx); orderID != "" {
		e.Str("order_id", orderID)
	}

	if kind := GetEventKind(ctx); kind != "" {
		e.Str("event_kind", kind)
	}
}
