package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/colonyops/orderbell/internal/core/kv"
	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/internal/core/notify/notifytest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newGate(p notify.PermissionProvider) (*notify.Gate, *notify.Preferences) {
	prefs := notify.NewPreferences(kv.NewMemory(), zerolog.Nop())
	return notify.NewGate(p, prefs, zerolog.Nop()), prefs
}

func TestGate_RequestPermission(t *testing.T) {
	tests := []struct {
		name        string
		host        *notifytest.Permission
		want        bool
		wantPrompts int
	}{
		{
			name:        "unsupported host",
			host:        &notifytest.Permission{Unsupported: true},
			want:        false,
			wantPrompts: 0,
		},
		{
			name:        "already granted",
			host:        notifytest.NewPermission(notify.PermissionGranted),
			want:        true,
			wantPrompts: 0,
		},
		{
			name:        "already denied",
			host:        notifytest.NewPermission(notify.PermissionDenied),
			want:        false,
			wantPrompts: 0,
		},
		{
			name:        "default then granted",
			host:        &notifytest.Permission{Current: notify.PermissionDefault, Answer: notify.PermissionGranted},
			want:        true,
			wantPrompts: 1,
		},
		{
			name:        "default then denied",
			host:        &notifytest.Permission{Current: notify.PermissionDefault, Answer: notify.PermissionDenied},
			want:        false,
			wantPrompts: 1,
		},
		{
			name:        "default then dismissed",
			host:        &notifytest.Permission{Current: notify.PermissionDefault, Answer: notify.PermissionDefault},
			want:        false,
			wantPrompts: 1,
		},
		{
			name:        "prompt error",
			host:        &notifytest.Permission{Current: notify.PermissionDefault, Err: errors.New("no tty")},
			want:        false,
			wantPrompts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate, _ := newGate(tt.host)

			assert.Equal(t, tt.want, gate.RequestPermission(context.Background()))
			assert.Equal(t, tt.wantPrompts, tt.host.PromptCount())
		})
	}
}

func TestGate_NilProviderIsUnsupported(t *testing.T) {
	gate, _ := newGate(nil)
	ctx := context.Background()

	assert.False(t, gate.Supported(ctx))
	assert.False(t, gate.RequestPermission(ctx))
	assert.Equal(t, notify.PermissionDenied, gate.State(ctx))
}

func TestGate_HasPermissionNeedsGrantAndPreference(t *testing.T) {
	ctx := context.Background()
	host := notifytest.NewPermission(notify.PermissionGranted)
	gate, prefs := newGate(host)

	assert.True(t, gate.HasPermission(ctx))

	prefs.Update(ctx, notify.PartialConfig{EnableBrowser: notify.Ptr(false)})
	assert.False(t, gate.HasPermission(ctx))

	prefs.Update(ctx, notify.PartialConfig{EnableBrowser: notify.Ptr(true)})
	host.Current = notify.PermissionDenied
	assert.False(t, gate.HasPermission(ctx))
}
