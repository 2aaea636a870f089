package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/internal/data/db"
)

// NotifyStore implements notify.Store using SQLite.
type NotifyStore struct {
	db *db.DB
}

var _ notify.Store = (*NotifyStore)(nil)

// NewNotifyStore creates a new SQLite-backed notification store.
func NewNotifyStore(db *db.DB) *NotifyStore {
	return &NotifyStore{db: db}
}

// Save persists a notification and returns its auto-generated ID.
func (s *NotifyStore) Save(ctx context.Context, r notify.Record) (int64, error) {
	delivery, err := json.Marshal(r.Delivery)
	if err != nil {
		return 0, fmt.Errorf("marshal delivery: %w", err)
	}

	id, err := s.db.Queries().InsertNotification(ctx, db.InsertNotificationParams{
		Kind:      string(r.Kind),
		Level:     string(r.Level),
		Title:     r.Title,
		Message:   r.Message,
		OrderID:   sql.NullString{String: r.OrderID, Valid: r.OrderID != ""},
		Delivery:  string(delivery),
		CreatedAt: r.CreatedAt.UnixNano(),
	})
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}

	return id, nil
}

// List returns notifications ordered by newest first. A limit of zero or
// less returns all of them.
func (s *NotifyStore) List(ctx context.Context, limit int) ([]notify.Record, error) {
	n := int64(limit)
	if limit <= 0 {
		n = -1
	}

	rows, err := s.db.Queries().ListNotifications(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	result := make([]notify.Record, 0, len(rows))
	for _, row := range rows {
		result = append(result, rowToRecord(row))
	}

	return result, nil
}

// Clear deletes all notifications.
func (s *NotifyStore) Clear(ctx context.Context) error {
	if err := s.db.Queries().DeleteAllNotifications(ctx); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

// Count returns the total number of notifications.
func (s *NotifyStore) Count(ctx context.Context) (int64, error) {
	count, err := s.db.Queries().CountNotifications(ctx)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}

// Prune deletes notifications created before the cutoff.
func (s *NotifyStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.db.Queries().DeleteNotificationsBefore(ctx, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune notifications: %w", err)
	}
	return n, nil
}

func rowToRecord(row db.Notification) notify.Record {
	r := notify.Record{
		ID:        row.ID,
		Kind:      notify.Kind(row.Kind),
		Level:     notify.Level(row.Level),
		Title:     row.Title,
		Message:   row.Message,
		OrderID:   row.OrderID.String,
		CreatedAt: time.Unix(0, row.CreatedAt),
	}
	// A malformed delivery column leaves the zero value; the row is still
	// worth listing.
	_ = json.Unmarshal([]byte(row.Delivery), &r.Delivery)
	return r
}
