package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Subscriber is a callback invoked when a record is published.
type Subscriber func(Record)

// Bus is a synchronous in-process notification bus. It persists records to a
// Store and then hands them to subscribers inline.
type Bus struct {
	store       Store
	log         zerolog.Logger
	subscribers []subscription
	nextID      int
	mu          sync.Mutex
}

type subscription struct {
	id int
	fn Subscriber
}

// NewBus creates a notification bus backed by the given store.
// If store is nil, records are dispatched to subscribers but not persisted.
func NewBus(store Store, log zerolog.Logger) *Bus {
	return &Bus{
		store: store,
		log:   log.With().Str("component", "notify-bus").Logger(),
	}
}

// Subscribe registers a callback that will be invoked on every Publish.
// The returned func removes it.
func (b *Bus) Subscribe(fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subscribers = append(b.subscribers, subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.subscribers {
			if sub.id == id {
				b.subscribers = append(b.subscribers[:i:i], b.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Publish persists r and dispatches it to all subscribers. A failed save is
// logged; subscribers still run.
func (b *Bus) Publish(ctx context.Context, r Record) Record {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	// Persist first so the record has an ID for subscribers.
	if b.store != nil {
		id, err := b.store.Save(ctx, r)
		if err != nil {
			b.log.Error().Err(err).Str("kind", string(r.Kind)).Msg("failed to persist notification")
		} else {
			r.ID = id
		}
	}

	b.mu.Lock()
	subs := make([]subscription, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.fn(r)
	}

	return r
}

// History returns persisted records, newest first. Returns nil if no store
// is configured. A limit of zero or less returns everything.
func (b *Bus) History(ctx context.Context, limit int) ([]Record, error) {
	if b.store == nil {
		return nil, nil
	}
	return b.store.List(ctx, limit)
}

// Clear deletes all persisted records.
func (b *Bus) Clear(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	return b.store.Clear(ctx)
}
