package api_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/orderbell/internal/api"
	"github.com/colonyops/orderbell/internal/core/kv"
	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/internal/core/notify/notifytest"
	"github.com/colonyops/orderbell/internal/core/order"
	"github.com/colonyops/orderbell/pkg/iojson"
)

type harness struct {
	srv        *httptest.Server
	toasts     *notifytest.Toasts
	player     *notifytest.Player
	host       *notifytest.HostSink
	permission *notifytest.Permission
	history    *notifytest.Store
	prefs      *notify.Preferences
}

// newTestServer spins up a full router with in-memory host capabilities.
func newTestServer(t *testing.T) *harness {
	t.Helper()

	log := zerolog.Nop()
	h := &harness{
		toasts:     &notifytest.Toasts{},
		player:     &notifytest.Player{},
		host:       &notifytest.HostSink{},
		permission: notifytest.NewPermission(notify.PermissionDefault),
		history:    &notifytest.Store{},
	}

	h.prefs = notify.NewPreferences(kv.NewMemory(), log)
	gate := notify.NewGate(h.permission, h.prefs, log)
	bus := notify.NewBus(h.history, log)
	dispatcher := notify.NewDispatcher(notify.Channels{
		Toasts: h.toasts,
		Sound:  h.player,
		Host:   h.host,
	}, h.prefs, gate, bus, log)
	monitor := order.NewMonitor(dispatcher, order.MonitorOptions{NotifyNew: true}, log)

	router := api.NewRouter(api.Service{
		Prefs:        h.prefs,
		Gate:         gate,
		Dispatcher:   dispatcher,
		Bus:          bus,
		Orders:       monitor,
		HistoryLimit: 2,
	}, log)

	h.srv = httptest.NewServer(router)
	t.Cleanup(h.srv.Close)
	return h
}

// do is a convenience helper for making requests to the test server.
func do(t *testing.T, h *harness, method, path, body string) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, bodyReader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := h.srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

// decodeJSON reads and decodes a JSON response body into v.
func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func requireStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		require.Failf(t, "unexpected status", "got %d want %d: %s", resp.StatusCode, expected, body)
	}
}

func TestGetConfig_Defaults(t *testing.T) {
	h := newTestServer(t)

	resp := do(t, h, http.MethodGet, "/api/notifications/config", "")
	requireStatus(t, resp, http.StatusOK)

	var got api.ConfigResponse
	decodeJSON(t, resp, &got)
	assert.Equal(t, notify.DefaultConfig(), got.Config)
	assert.False(t, got.HasPermission, "permission is still default")
}

func TestPatchConfig(t *testing.T) {
	h := newTestServer(t)

	resp := do(t, h, http.MethodPatch, "/api/notifications/config", `{"soundVolume":0.25,"position":"bottom-center"}`)
	requireStatus(t, resp, http.StatusOK)

	var got api.ConfigResponse
	decodeJSON(t, resp, &got)
	assert.InDelta(t, 0.25, got.Config.SoundVolume, 1e-9)
	assert.Equal(t, notify.PositionBottomCenter, got.Config.Position)
	assert.True(t, got.Config.EnableSound, "untouched fields keep their value")
	assert.Equal(t, got.Config, h.prefs.Config())
}

func TestPatchConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "volume above range", body: `{"soundVolume":1.5}`, field: "soundVolume"},
		{name: "negative volume", body: `{"soundVolume":-0.1}`, field: "soundVolume"},
		{name: "unknown position", body: `{"position":"middle"}`, field: "position"},
		{name: "empty patch", body: `{}`, field: "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t)

			resp := do(t, h, http.MethodPatch, "/api/notifications/config", tt.body)
			requireStatus(t, resp, http.StatusBadRequest)

			var got iojson.Error
			decodeJSON(t, resp, &got)
			assert.Equal(t, "validation failed", got.Message)
			assert.Contains(t, got.Data, tt.field)
			assert.Equal(t, notify.DefaultConfig(), h.prefs.Config())
		})
	}
}

func TestPatchConfig_UnknownField(t *testing.T) {
	h := newTestServer(t)

	resp := do(t, h, http.MethodPatch, "/api/notifications/config", `{"volume":0.5}`)
	requireStatus(t, resp, http.StatusBadRequest)

	var got iojson.Error
	decodeJSON(t, resp, &got)
	assert.Contains(t, got.Message, "invalid JSON")
}

func TestPermission_RequestGrants(t *testing.T) {
	h := newTestServer(t)

	resp := do(t, h, http.MethodGet, "/api/notifications/permission", "")
	requireStatus(t, resp, http.StatusOK)
	var before api.PermissionResponse
	decodeJSON(t, resp, &before)
	assert.True(t, before.Supported)
	assert.Equal(t, notify.PermissionDefault, before.State)

	resp = do(t, h, http.MethodPost, "/api/notifications/permission", "")
	requireStatus(t, resp, http.StatusOK)
	var after api.PermissionResponse
	decodeJSON(t, resp, &after)
	assert.Equal(t, notify.PermissionGranted, after.State)
	assert.True(t, after.Granted)
	assert.True(t, after.HasPermission)

	// A decided permission is never prompted again.
	resp = do(t, h, http.MethodPost, "/api/notifications/permission", "")
	requireStatus(t, resp, http.StatusOK)
	_ = resp.Body.Close()
	assert.Equal(t, 1, h.permission.PromptCount())
}

func TestPermission_DisabledPreference(t *testing.T) {
	h := newTestServer(t)
	h.permission.Current = notify.PermissionGranted
	h.prefs.Update(context.Background(), notify.PartialConfig{EnableBrowser: notify.Ptr(false)})

	resp := do(t, h, http.MethodGet, "/api/notifications/permission", "")
	requireStatus(t, resp, http.StatusOK)

	var got api.PermissionResponse
	decodeJSON(t, resp, &got)
	assert.True(t, got.Granted)
	assert.False(t, got.HasPermission)
}

func TestTestSound(t *testing.T) {
	h := newTestServer(t)

	resp := do(t, h, http.MethodPost, "/api/notifications/test-sound", `{"kind":"success"}`)
	requireStatus(t, resp, http.StatusOK)

	var got notify.ChannelResult
	decodeJSON(t, resp, &got)
	assert.Equal(t, notify.OutcomeDelivered, got.Outcome)
	require.Equal(t, 1, h.player.Calls())
	assert.Equal(t, 0, h.toasts.Calls(), "test sound shows no toast")
}

func TestTestSound_SoundDisabled(t *testing.T) {
	h := newTestServer(t)
	h.prefs.Update(context.Background(), notify.PartialConfig{EnableSound: notify.Ptr(false)})

	resp := do(t, h, http.MethodPost, "/api/notifications/test-sound", `{"kind":"newOrder"}`)
	requireStatus(t, resp, http.StatusOK)

	var got notify.ChannelResult
	decodeJSON(t, resp, &got)
	assert.Equal(t, notify.OutcomeSkipped, got.Outcome)
	assert.Equal(t, 0, h.player.Calls())
}

func TestTestSound_DefaultsAndRejectsUnknown(t *testing.T) {
	h := newTestServer(t)

	resp := do(t, h, http.MethodPost, "/api/notifications/test-sound", `{}`)
	requireStatus(t, resp, http.StatusOK)
	_ = resp.Body.Close()
	require.Equal(t, 1, h.player.Calls())
	assert.Equal(t, notify.SoundNewOrder, h.player.Played[0].Sound)

	for _, body := range []string{`{"kind":"bogus"}`, `{"kind":"info"}`} {
		resp := do(t, h, http.MethodPost, "/api/notifications/test-sound", body)
		requireStatus(t, resp, http.StatusBadRequest)

		var got iojson.Error
		decodeJSON(t, resp, &got)
		assert.Contains(t, got.Data, "kind", body)
	}
	assert.Equal(t, 1, h.player.Calls(), "rejected kinds play nothing")
}

func TestDispatch_NewOrder(t *testing.T) {
	h := newTestServer(t)
	h.permission.Current = notify.PermissionGranted

	resp := do(t, h, http.MethodPost, "/api/notifications/dispatch",
		`{"kind":"new-order","orderId":"o-1","orderNumber":"42","customerName":"Ada"}`)
	requireStatus(t, resp, http.StatusOK)

	var got notify.Delivery
	decodeJSON(t, resp, &got)
	assert.Equal(t, notify.OutcomeDelivered, got.Toast.Outcome)
	assert.Equal(t, notify.OutcomeDelivered, got.Sound.Outcome)
	assert.Equal(t, notify.OutcomeDelivered, got.Host.Outcome)

	require.Len(t, h.host.Shown, 1)
	assert.Equal(t, "New Order #42", h.host.Shown[0].Title)
	assert.Equal(t, notify.NewOrderTag, h.host.Shown[0].Tag)
	require.Len(t, h.history.Records, 1)
	assert.Equal(t, "o-1", h.history.Records[0].OrderID)
}

func TestDispatch_InfoHasNoSound(t *testing.T) {
	h := newTestServer(t)

	resp := do(t, h, http.MethodPost, "/api/notifications/dispatch", `{"kind":"info","message":"oven preheated"}`)
	requireStatus(t, resp, http.StatusOK)

	var got notify.Delivery
	decodeJSON(t, resp, &got)
	assert.Equal(t, notify.OutcomeDelivered, got.Toast.Outcome)
	assert.Equal(t, notify.OutcomeSkipped, got.Sound.Outcome)
	assert.Equal(t, notify.OutcomeSkipped, got.Host.Outcome, "permission is still default")
	assert.Equal(t, 0, h.player.Calls())
}

func TestDispatch_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "unknown kind", body: `{"kind":"pizza"}`, field: "kind"},
		{name: "new order without number", body: `{"kind":"new-order","customerName":"Ada"}`, field: "orderNumber"},
		{name: "status update without status", body: `{"kind":"status-update","orderNumber":"7"}`, field: "status"},
		{name: "success without message", body: `{"kind":"success"}`, field: "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t)

			resp := do(t, h, http.MethodPost, "/api/notifications/dispatch", tt.body)
			requireStatus(t, resp, http.StatusBadRequest)

			var got iojson.Error
			decodeJSON(t, resp, &got)
			assert.Contains(t, got.Data, tt.field)
			assert.Equal(t, 0, h.toasts.Calls())
		})
	}
}

func TestClearToasts(t *testing.T) {
	h := newTestServer(t)

	for _, msg := range []string{"one", "two"} {
		resp := do(t, h, http.MethodPost, "/api/notifications/dispatch", `{"kind":"warning","message":"`+msg+`"}`)
		requireStatus(t, resp, http.StatusOK)
		_ = resp.Body.Close()
	}

	resp := do(t, h, http.MethodDelete, "/api/notifications/toasts", "")
	requireStatus(t, resp, http.StatusOK)

	var got map[string]int
	decodeJSON(t, resp, &got)
	assert.Equal(t, 2, got["dismissed"])
	assert.Equal(t, 0, h.toasts.Active)
}

func TestHistory(t *testing.T) {
	h := newTestServer(t)

	for _, msg := range []string{"first", "second", "third"} {
		resp := do(t, h, http.MethodPost, "/api/notifications/dispatch", `{"kind":"success","message":"`+msg+`"}`)
		requireStatus(t, resp, http.StatusOK)
		_ = resp.Body.Close()
	}

	t.Run("default limit", func(t *testing.T) {
		resp := do(t, h, http.MethodGet, "/api/notifications/history", "")
		requireStatus(t, resp, http.StatusOK)

		var got []notify.Record
		decodeJSON(t, resp, &got)
		require.Len(t, got, 2)
		assert.Equal(t, "third", got[0].Message, "newest first")
	})

	t.Run("explicit limit", func(t *testing.T) {
		resp := do(t, h, http.MethodGet, "/api/notifications/history?limit=0", "")
		requireStatus(t, resp, http.StatusOK)

		var got []notify.Record
		decodeJSON(t, resp, &got)
		assert.Len(t, got, 3)
	})

	t.Run("bad limit", func(t *testing.T) {
		resp := do(t, h, http.MethodGet, "/api/notifications/history?limit=abc", "")
		requireStatus(t, resp, http.StatusBadRequest)
		_ = resp.Body.Close()
	})

	t.Run("clear", func(t *testing.T) {
		resp := do(t, h, http.MethodDelete, "/api/notifications/history", "")
		requireStatus(t, resp, http.StatusNoContent)
		_ = resp.Body.Close()

		resp = do(t, h, http.MethodGet, "/api/notifications/history", "")
		requireStatus(t, resp, http.StatusOK)
		var got []notify.Record
		decodeJSON(t, resp, &got)
		assert.Empty(t, got)
		assert.NotNil(t, got, "an empty history is a JSON array")
	})
}

func TestPostSnapshot(t *testing.T) {
	h := newTestServer(t)

	first := `[{"id":"a","orderNumber":"1","status":"preparing","customerInfo":{"name":"Ada"}}]`
	resp := do(t, h, http.MethodPost, "/api/orders/snapshot", first)
	requireStatus(t, resp, http.StatusOK)

	var got order.Result
	decodeJSON(t, resp, &got)
	assert.Empty(t, got.New, "only pending orders are new")
	assert.Equal(t, 0, h.toasts.Calls())

	second := `[{"id":"a","orderNumber":"1","status":"preparing","customerInfo":{"name":"Ada"}},` +
		`{"id":"b","orderNumber":"2","status":"pending","customerInfo":{"name":"Grace"}}]`
	resp = do(t, h, http.MethodPost, "/api/orders/snapshot", second)
	requireStatus(t, resp, http.StatusOK)

	decodeJSON(t, resp, &got)
	require.Len(t, got.New, 1)
	assert.Equal(t, "b", got.New[0].ID)
	require.Len(t, h.toasts.Shown, 1)
	assert.Contains(t, h.toasts.Shown[0].Message, "Grace")
}

func TestPostSnapshot_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "not json", body: "pepperoni"},
		{name: "order without id", body: `[{"orderNumber":"1"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t)

			resp := do(t, h, http.MethodPost, "/api/orders/snapshot", tt.body)
			requireStatus(t, resp, http.StatusBadRequest)
			_ = resp.Body.Close()
		})
	}
}

func TestSubscribe(t *testing.T) {
	h := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.srv.URL+"/api/notifications/subscribe", nil)
	require.NoError(t, err)

	resp, err := h.srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	requireStatus(t, resp, http.StatusOK)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"))

	scanner := bufio.NewScanner(resp.Body)
	nextEvent := func() (string, string) {
		t.Helper()
		var event, data string
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "" && event != "":
				return event, data
			}
		}
		require.NoError(t, scanner.Err())
		return event, data
	}

	// The config frame is written after the subscription is registered.
	event, _ := nextEvent()
	require.Equal(t, "config", event)

	post := do(t, h, http.MethodPost, "/api/notifications/dispatch", `{"kind":"error","message":"oven offline"}`)
	requireStatus(t, post, http.StatusOK)
	_ = post.Body.Close()

	event, data := nextEvent()
	require.Equal(t, "notification", event)

	var rec notify.Record
	require.NoError(t, json.Unmarshal([]byte(data), &rec))
	assert.Equal(t, notify.KindError, rec.Kind)
	assert.Equal(t, "oven offline", rec.Message)
	assert.Equal(t, int64(1), rec.ID)
}

func TestProfiler_OnlyWhenEnabled(t *testing.T) {
	h := newTestServer(t)

	resp := do(t, h, http.MethodGet, "/debug/pprof/", "")
	requireStatus(t, resp, http.StatusNotFound)
	_ = resp.Body.Close()

	srv := httptest.NewServer(api.NewRouter(api.Service{Profiler: true}, zerolog.Nop()))
	t.Cleanup(srv.Close)

	resp, err := srv.Client().Get(srv.URL + "/debug/pprof/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
