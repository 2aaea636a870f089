package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/internal/data/db"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifyStore(t *testing.T) *NotifyStore {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewNotifyStore(database)
}

func TestNotifyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and list", func(t *testing.T) {
		store := newTestNotifyStore(t)

		now := time.Now()
		id, err := store.Save(ctx, notify.Record{
			Kind:    notify.KindNewOrder,
			Level:   notify.LevelSuccess,
			Title:   "New Order #12",
			Message: "Customer: Ada",
			OrderID: "o-12",
			Delivery: notify.Delivery{
				Toast: notify.ChannelResult{Channel: notify.ChannelToast, Outcome: notify.OutcomeDelivered},
				Sound: notify.ChannelResult{Channel: notify.ChannelSound, Outcome: notify.OutcomeSkipped, Reason: "sound disabled"},
				Host:  notify.ChannelResult{Channel: notify.ChannelHost, Outcome: notify.OutcomeFailed, Reason: "bus closed", Err: errors.New("bus closed")},
			},
			CreatedAt: now,
		})
		require.NoError(t, err)
		assert.Positive(t, id)

		items, err := store.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, items, 1)

		got := items[0]
		assert.Equal(t, id, got.ID)
		assert.Equal(t, notify.KindNewOrder, got.Kind)
		assert.Equal(t, notify.LevelSuccess, got.Level)
		assert.Equal(t, "New Order #12", got.Title)
		assert.Equal(t, "o-12", got.OrderID)
		assert.Equal(t, now.UnixNano(), got.CreatedAt.UnixNano())
		assert.Equal(t, "toast=delivered sound=skipped host=failed", got.Delivery.Summary())
		assert.Equal(t, "sound disabled", got.Delivery.Sound.Reason)
		assert.NoError(t, got.Delivery.Host.Err, "errors are not persisted")
	})

	t.Run("list returns newest first with limit", func(t *testing.T) {
		store := newTestNotifyStore(t)

		base := time.Now()
		for i, msg := range []string{"first", "second", "third"} {
			_, err := store.Save(ctx, notify.Record{
				Kind:      notify.KindInfo,
				Level:     notify.LevelInfo,
				Message:   msg,
				CreatedAt: base.Add(time.Duration(i) * time.Second),
			})
			require.NoError(t, err)
		}

		items, err := store.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "third", items[0].Message)
		assert.Equal(t, "second", items[1].Message)
		assert.Equal(t, "first", items[2].Message)

		items, err = store.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "third", items[0].Message)
	})

	t.Run("clear deletes all", func(t *testing.T) {
		store := newTestNotifyStore(t)

		_, err := store.Save(ctx, notify.Record{
			Kind:      notify.KindWarning,
			Level:     notify.LevelWarning,
			Message:   "warn",
			CreatedAt: time.Now(),
		})
		require.NoError(t, err)

		require.NoError(t, store.Clear(ctx))

		items, err := store.List(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("count", func(t *testing.T) {
		store := newTestNotifyStore(t)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		for i := range 3 {
			_, err := store.Save(ctx, notify.Record{
				Kind:      notify.KindInfo,
				Level:     notify.LevelInfo,
				Message:   "msg",
				CreatedAt: time.Now().Add(time.Duration(i) * time.Millisecond),
			})
			require.NoError(t, err)
		}

		count, err = store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("prune removes old records", func(t *testing.T) {
		store := newTestNotifyStore(t)

		now := time.Now()
		for _, age := range []time.Duration{48 * time.Hour, 25 * time.Hour, time.Hour} {
			_, err := store.Save(ctx, notify.Record{
				Kind:      notify.KindInfo,
				Level:     notify.LevelInfo,
				Message:   age.String(),
				CreatedAt: now.Add(-age),
			})
			require.NoError(t, err)
		}

		n, err := store.Prune(ctx, now.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		items, err := store.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "1h0m0s", items[0].Message)
	})

	t.Run("empty list returns empty slice", func(t *testing.T) {
		store := newTestNotifyStore(t)

		items, err := store.List(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.NotNil(t, items)
	})
}

func TestNotifyStore_WithBus(t *testing.T) {
	ctx := context.Background()
	bus := notify.NewBus(newTestNotifyStore(t), zerolog.Nop())

	r := bus.Publish(ctx, notify.Record{Kind: notify.KindError, Level: notify.LevelError, Message: "oven offline"})
	assert.Positive(t, r.ID)

	hist, err := bus.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, r.ID, hist[0].ID)
}
