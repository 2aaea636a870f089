package notify

import (
	"context"
	"time"
)

// Record is a dispatched notification as kept in history.
type Record struct {
	ID        int64     `json:"id"`
	Kind      Kind      `json:"kind"`
	Level     Level     `json:"level"`
	Title     string    `json:"title,omitempty"`
	Message   string    `json:"message"`
	OrderID   string    `json:"orderId,omitempty"`
	Delivery  Delivery  `json:"delivery"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewRecord builds a history record from a finished delivery.
func NewRecord(d Delivery) Record {
	return Record{
		Kind:     d.Event.Kind,
		Level:    d.Event.Kind.Level(),
		Title:    d.Event.Title,
		Message:  d.Event.Message,
		OrderID:  d.Event.OrderID,
		Delivery: d,
	}
}

// Store persists notification history.
type Store interface {
	Save(ctx context.Context, r Record) (int64, error)
	List(ctx context.Context, limit int) ([]Record, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
	// Prune deletes records created before the cutoff and returns how many.
	Prune(ctx context.Context, before time.Time) (int64, error)
}
