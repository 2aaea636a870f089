package logging

import "context"

type contextKey string

const (
	orderIDKey   contextKey = "order_id"
	eventKindKey contextKey = "event_kind"
)

// WithOrderID adds an order ID to the context.
func WithOrderID(ctx context.Context, orderID string) context.Context {
	return context.WithValue(ctx, orderIDKey, orderID)
}

// WithEventKind adds a notification event kind to the context.
func WithEventKind(ctx context.Context, kind string) context.Context {
	return context.WithValue(ctx, eventKindKey, kind)
}

// GetOrderID retrieves the order ID from the context.
// Returns empty string if not present.
func GetOrderID(ctx context.Context) string {
	if id, ok := ctx.Value(orderIDKey).(string); ok {
		return id
	}
	return ""
}

// GetEventKind retrieves the event kind from the context.
// Returns empty string if not present.
func GetEventKind(ctx context.Context) string {
	if kind, ok := ctx.Value(eventKindKey).(string); ok {
		return kind
	}
	return ""
}
