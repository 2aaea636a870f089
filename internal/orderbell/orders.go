package orderbell

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/colonyops/orderbell/internal/core/config"
	"github.com/colonyops/orderbell/internal/core/kv"
	"github.com/colonyops/orderbell/internal/core/order"
	"github.com/colonyops/orderbell/internal/store/jsonfile"
)

// OrderService feeds order snapshots from files, stdin or the API into the
// monitor.
type OrderService struct {
	cfg     config.OrdersConfig
	monitor *order.Monitor
	log     zerolog.Logger
}

// NewOrderService creates the service. The checkpoint is kept in store when
// the config asks for it.
func NewOrderService(cfg config.OrdersConfig, notifier order.Notifier, store kv.KV, log zerolog.Logger) *OrderService {
	opts := order.MonitorOptions{
		NotifyNew:           cfg.NotifyNew,
		NotifyStatusChanges: cfg.NotifyStatusChanges,
	}
	if cfg.Checkpoint {
		opts.Checkpoint = store
	}
	return &OrderService{
		cfg:     cfg,
		monitor: order.NewMonitor(notifier, opts, log),
		log:     log.With().Str("component", "orders").Logger(),
	}
}

// Restore resumes from the last checkpoint.
func (s *OrderService) Restore(ctx context.Context) error {
	if err := s.monitor.Restore(ctx); err != nil {
		return fmt.Errorf("restore order checkpoint: %w", err)
	}
	return nil
}

// Reset forgets every previously seen order.
func (s *OrderService) Reset(ctx context.Context) error {
	return s.monitor.Reset(ctx)
}

// Previous returns the order IDs of the last processed snapshot.
func (s *OrderService) Previous() []string {
	return s.monitor.Previous()
}

// Process runs one snapshot through the monitor.
func (s *OrderService) Process(ctx context.Context, snap order.Snapshot) order.Result {
	return s.monitor.Process(ctx, snap)
}

// IngestFile decodes the snapshot stored at path and processes it.
func (s *OrderService) IngestFile(ctx context.Context, path string) (order.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return order.Result{}, err
	}
	defer func() { _ = f.Close() }()

	snap, err := order.Decode(f)
	if err != nil {
		return order.Result{}, fmt.Errorf("%s: %w", path, err)
	}
	return s.Process(ctx, snap), nil
}

// WatchHandler receives the result of every snapshot file processed by Watch.
type WatchHandler func(path string, res order.Result)

// Watch processes the snapshot files already in the watch directory, then
// every file that settles after a change, until ctx is done. Unreadable
// snapshots are logged and skipped.
func (s *OrderService) Watch(ctx context.Context, onResult WatchHandler) error {
	w, err := jsonfile.NewSnapshotWatcher(s.cfg.WatchDir, jsonfile.WatcherOptions{
		Pattern:  s.cfg.Pattern,
		Debounce: s.cfg.Debounce,
		Logger:   s.log,
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", s.cfg.WatchDir, err)
	}
	defer func() { _ = w.Close() }()

	events := w.Watch(ctx)

	existing, err := w.Existing()
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	for _, path := range existing {
		s.ingest(ctx, path, onResult)
	}

	s.log.Info().Str("dir", s.cfg.WatchDir).Str("pattern", s.cfg.Pattern).Msg("watching for order snapshots")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.ingest(ctx, ev.Path, onResult)
		}
	}
}

func (s *OrderService) ingest(ctx context.Context, path string, onResult WatchHandler) {
	res, err := s.IngestFile(ctx, path)
	switch {
	case errors.Is(err, order.ErrEmptySnapshot), errors.Is(err, os.ErrNotExist):
		s.log.Debug().Str("path", path).Err(err).Msg("skipping snapshot")
		return
	case err != nil:
		s.log.Warn().Str("path", path).Err(err).Msg("failed to read snapshot")
		return
	}
	if onResult != nil {
		onResult(path, res)
	}
}
