package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/orderbell/internal/core/config"
	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/internal/core/order"
	"github.com/colonyops/orderbell/internal/orderbell"
	"github.com/colonyops/orderbell/pkg/executil"
)

type testEnv struct {
	flags *Flags
	app   *orderbell.App
	exec  *executil.RecordingExecutor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Orders.WatchDir = filepath.Join(cfg.DataDir, "orders")
	cfg.Desktop.Enabled = false

	database, err := orderbell.OpenDatabase(&cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	env := &testEnv{
		flags: &Flags{DataDir: cfg.DataDir, Config: &cfg},
		exec:  &executil.RecordingExecutor{},
	}
	env.app = orderbell.New(context.Background(), &cfg, database, orderbell.Options{
		Out:      &bytes.Buffer{},
		Executor: env.exec,
		Logger:   zerolog.Nop(),
	})
	t.Cleanup(env.app.Close)
	return env
}

// run executes args against a fresh command tree and returns stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := &cli.Command{Name: "orderbell", Writer: &out}
	root = NewConfigCmd(e.flags, e.app).Register(root)
	root = NewPermissionCmd(e.flags, e.app).Register(root)
	root = NewNotifyCmd(e.flags, e.app).Register(root)
	root = NewTestSoundCmd(e.flags, e.app).Register(root)
	root = NewIngestCmd(e.flags, e.app).Register(root)
	root = NewHistoryCmd(e.flags, e.app).Register(root)

	err := root.Run(context.Background(), append([]string{"orderbell"}, args...))
	return out.String(), err
}

func TestNotifyNewOrder_JSON(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "notify", "new-order", "--number", "42", "--customer", "Ada", "--format", "json")
	require.NoError(t, err)

	var d notify.Delivery
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, notify.OutcomeDelivered, d.Toast.Outcome)
	assert.Equal(t, notify.OutcomeDelivered, d.Sound.Outcome)
	assert.Equal(t, notify.OutcomeSkipped, d.Host.Outcome, "desktop is disabled")
	assert.Len(t, env.exec.Recorded(), 1)
}

func TestNotifyMessage_RequiresText(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "notify", "warning")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message is required")
}

func TestConfigSetAndShow(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "config", "set", "--volume", "0.3", "--sound=false")
	require.NoError(t, err)

	out, err := env.run(t, "config", "show", "--format", "json")
	require.NoError(t, err)

	var got preferencesJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 0.3, got.SoundVolume, 1e-9)
	assert.False(t, got.EnableSound)
	assert.True(t, got.EnableBrowser)
	assert.False(t, got.HasPermission)
}

func TestConfigSet_Rejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "nothing to update", args: []string{"config", "set"}, want: "nothing to update"},
		{name: "volume out of range", args: []string{"config", "set", "--volume", "2"}, want: "soundVolume"},
		{name: "unknown position", args: []string{"config", "set", "--position", "middle"}, want: "position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			_, err := env.run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, notify.DefaultConfig(), env.app.Prefs.Config())
		})
	}
}

func TestPermissionStatus_NoDaemon(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "permission", "status", "--format", "json")
	require.NoError(t, err)

	var got permissionJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.Supported)
	assert.Equal(t, notify.PermissionDenied, got.State)
	assert.False(t, got.HasPermission)
}

func TestTestSound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "test-sound", "success")
	require.NoError(t, err)
	assert.Len(t, env.exec.Recorded(), 1)

	_, err = env.run(t, "test-sound", "trumpet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sound")
}

func TestIngest_UsesCheckpoint(t *testing.T) {
	env := newTestEnv(t)

	path := filepath.Join(t.TempDir(), "orders.json")
	snapshot := `{"orders":[{"id":"a","orderNumber":"7","status":"pending","customerInfo":{"name":"Ada"}}]}`
	require.NoError(t, os.WriteFile(path, []byte(snapshot), 0o644))

	out, err := env.run(t, "ingest", "-f", path, "--format", "json")
	require.NoError(t, err)
	var first order.Result
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	require.Len(t, first.New, 1)
	assert.Equal(t, "7", first.New[0].OrderNumber)

	out, err = env.run(t, "ingest", "-f", path, "--format", "json")
	require.NoError(t, err)
	var second order.Result
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.Empty(t, second.New, "the same snapshot is not new twice")

	out, err = env.run(t, "ingest", "-f", path, "--reset", "--format", "json")
	require.NoError(t, err)
	var third order.Result
	require.NoError(t, json.Unmarshal([]byte(out), &third))
	assert.Len(t, third.New, 1, "reset forgets seen orders")
}

func TestIngest_MissingFile(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "ingest", "-f", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read snapshot")
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "notify", "success", "dough", "ready")
	require.NoError(t, err)
	_, err = env.run(t, "notify", "info", "oven", "on")
	require.NoError(t, err)

	out, err := env.run(t, "history", "--format", "json")
	require.NoError(t, err)

	var records []notify.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "oven on", records[0].Message)
	assert.Equal(t, notify.KindSuccess, records[1].Kind)

	_, err = env.run(t, "history", "--clear")
	require.NoError(t, err)

	out, err = env.run(t, "history", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}
