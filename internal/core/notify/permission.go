package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Gate tracks the host notification permission and combines it with the
// user's enableBrowser preference.
type Gate struct {
	provider PermissionProvider
	prefs    *Preferences
	log      zerolog.Logger
}

// NewGate creates a permission gate. A nil provider behaves like a host
// without a notification API.
func NewGate(provider PermissionProvider, prefs *Preferences, log zerolog.Logger) *Gate {
	return &Gate{
		provider: provider,
		prefs:    prefs,
		log:      log.With().Str("component", "permission").Logger(),
	}
}

// Supported reports whether the host offers notifications at all.
func (g *Gate) Supported(ctx context.Context) bool {
	return g.provider != nil && g.provider.Supported(ctx)
}

// State returns the host permission, or denied when unsupported.
func (g *Gate) State(ctx context.Context) PermissionState {
	if !g.Supported(ctx) {
		return PermissionDenied
	}
	return g.provider.State(ctx)
}

// Granted reports whether the host permission is granted.
func (g *Gate) Granted(ctx context.Context) bool {
	return g.State(ctx) == PermissionGranted
}

// RequestPermission asks the host for permission. Hosts that already
// decided are not prompted again; the prompt happens at most once per call.
func (g *Gate) RequestPermission(ctx context.Context) bool {
	if !g.Supported(ctx) {
		g.log.Warn().Msg("host does not support notifications")
		return false
	}

	switch g.provider.State(ctx) {
	case PermissionGranted:
		return true
	case PermissionDenied:
		return false
	}

	state, err := g.provider.Request(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("permission request failed")
		return false
	}

	g.log.Info().Str("state", string(state)).Msg("permission requested")
	return state == PermissionGranted
}

// HasPermission is the "enabled" signal shown to users: the host permission
// is granted and the user has host notifications switched on.
func (g *Gate) HasPermission(ctx context.Context) bool {
	return g.Granted(ctx) && g.prefs.Config().EnableBrowser
}
