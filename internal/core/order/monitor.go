package order

import (
	"context"
	"sync"

	"github.com/colonyops/orderbell/internal/core/kv"
	"github.com/colonyops/orderbell/internal/core/logging"
	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/rs/zerolog"
)

// CheckpointKey is where the previous snapshot is stored, relative to the
// checkpoint namespace.
const (
	CheckpointNamespace = "orderWatcher"
	CheckpointKey       = "previous"
)

// Notifier is the part of the dispatcher the monitor drives.
type Notifier interface {
	NewOrder(ctx context.Context, orderID, orderNumber, customerName string) notify.Delivery
	StatusUpdate(ctx context.Context, orderID, orderNumber, status string) notify.Delivery
}

// Change is a known order whose status moved between two snapshots.
type Change struct {
	Order Order  `json:"order"`
	From  Status `json:"from"`
}

// Result is what one snapshot produced.
type Result struct {
	New     []Order  `json:"new"`
	Changed []Change `json:"changed,omitempty"`
}

// MonitorOptions toggles which notifications a Monitor emits.
type MonitorOptions struct {
	NotifyNew           bool
	NotifyStatusChanges bool
	// Checkpoint persists the previous snapshot between runs when set.
	Checkpoint kv.KV
}

type checkpoint struct {
	IDs      []string          `json:"ids"`
	Statuses map[string]Status `json:"statuses,omitempty"`
}

// Monitor feeds snapshots through a Watcher and notifies about new orders
// and, optionally, status changes. Snapshots are processed one at a time in
// the order Process is called.
type Monitor struct {
	notifier Notifier
	opts     MonitorOptions
	log      zerolog.Logger
	store    *kv.TypedKV[checkpoint]

	mu       sync.Mutex
	watcher  *Watcher
	statuses map[string]Status
}

// NewMonitor creates a monitor with an empty watcher. Call Restore to resume
// from a checkpoint.
func NewMonitor(notifier Notifier, opts MonitorOptions, log zerolog.Logger) *Monitor {
	m := &Monitor{
		notifier: notifier,
		opts:     opts,
		log:      log.With().Str("component", "order-monitor").Logger(),
		watcher:  NewWatcher(),
		statuses: map[string]Status{},
	}
	if opts.Checkpoint != nil {
		m.store = kv.Scoped[checkpoint](opts.Checkpoint, CheckpointNamespace)
	}
	return m
}

// Restore loads the previous snapshot from the checkpoint. A missing
// checkpoint is not an error.
func (m *Monitor) Restore(ctx context.Context) error {
	if m.store == nil {
		return nil
	}

	cp, err := m.store.GetOr(ctx, CheckpointKey, checkpoint{})
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.watcher = NewWatcher(cp.IDs...)
	m.statuses = cp.Statuses
	if m.statuses == nil {
		m.statuses = map[string]Status{}
	}

	m.log.Debug().Int("previous", len(cp.IDs)).Msg("restored order checkpoint")
	return nil
}

// Reset forgets the previous snapshot and deletes the checkpoint.
func (m *Monitor) Reset(ctx context.Context) error {
	m.mu.Lock()
	m.watcher = NewWatcher()
	m.statuses = map[string]Status{}
	m.mu.Unlock()

	if m.store == nil {
		return nil
	}
	return m.store.Delete(ctx, CheckpointKey)
}

// Previous returns the IDs of the last processed snapshot.
func (m *Monitor) Previous() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.watcher.Previous()
}

// Process observes s and dispatches notifications for what changed.
func (m *Monitor) Process(ctx context.Context, s Snapshot) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res Result
	if m.opts.NotifyStatusChanges {
		res.Changed = m.changes(s)
	}
	res.New = m.watcher.Observe(s)

	m.statuses = make(map[string]Status, len(s))
	for _, o := range s {
		m.statuses[o.ID] = o.Status
	}

	if m.opts.NotifyNew {
		for _, o := range res.New {
			m.notifier.NewOrder(logging.WithOrderID(ctx, o.ID), o.ID, o.Number(), o.CustomerInfo.Name)
		}
	}
	for _, c := range res.Changed {
		m.notifier.StatusUpdate(logging.WithOrderID(ctx, c.Order.ID), c.Order.ID, c.Order.Number(), string(c.Order.Status))
	}

	m.log.Debug().
		Int("orders", len(s)).
		Int("new", len(res.New)).
		Int("changed", len(res.Changed)).
		Msg("snapshot processed")

	m.save(ctx)
	return res
}

func (m *Monitor) changes(s Snapshot) []Change {
	var out []Change
	for _, o := range s {
		prev, known := m.statuses[o.ID]
		if known && prev != o.Status {
			out = append(out, Change{Order: o, From: prev})
		}
	}
	return out
}

func (m *Monitor) save(ctx context.Context) {
	if m.store == nil {
		return
	}
	cp := checkpoint{IDs: m.watcher.Previous(), Statuses: m.statuses}
	if err := m.store.Set(ctx, CheckpointKey, cp); err != nil {
		m.log.Error().Err(err).Msg("failed to save order checkpoint")
	}
}
