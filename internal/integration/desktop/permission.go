package desktop

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog"

	"github.com/colonyops/orderbell/internal/core/kv"
	"github.com/colonyops/orderbell/internal/core/notify"
)

// PermissionKey is where the decision is remembered.
const PermissionKey = "notificationPermission"

// ErrDismissed is returned by a Prompter when the user closed the prompt
// without answering.
var ErrDismissed = errors.New("permission prompt dismissed")

// Prompter asks the user whether desktop notifications may be shown.
type Prompter interface {
	Prompt(ctx context.Context) (bool, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context) (bool, error)

func (f PrompterFunc) Prompt(ctx context.Context) (bool, error) { return f(ctx) }

// HuhPrompter asks with an interactive confirm on the terminal.
type HuhPrompter struct{}

func (HuhPrompter) Prompt(context.Context) (bool, error) {
	allow := true
	err := huh.NewConfirm().
		Title("Show desktop notifications?").
		Description("orderbell alerts you about new orders and status changes.").
		Affirmative("Allow").
		Negative("Block").
		Value(&allow).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, ErrDismissed
	}
	if err != nil {
		return false, err
	}
	return allow, nil
}

// StaticPrompter answers without asking, for scripted use.
type StaticPrompter bool

func (p StaticPrompter) Prompt(context.Context) (bool, error) { return bool(p), nil }

// availability is satisfied by *Sink.
type availability interface {
	Available(ctx context.Context) bool
}

// Permission is a notify.PermissionProvider that remembers the user's
// answer in the key/value store. The host is supported only while a
// notification daemon is reachable.
type Permission struct {
	host     availability
	store    kv.KV
	prompter Prompter
	log      zerolog.Logger
}

var _ notify.PermissionProvider = (*Permission)(nil)

// NewPermission creates a provider. host may be nil, meaning unsupported.
func NewPermission(host availability, store kv.KV, prompter Prompter, log zerolog.Logger) *Permission {
	return &Permission{
		host:     host,
		store:    store,
		prompter: prompter,
		log:      log.With().Str("component", "desktop-permission").Logger(),
	}
}

func (p *Permission) Supported(ctx context.Context) bool {
	if p.host == nil {
		return false
	}
	return p.host.Available(ctx)
}

func (p *Permission) State(ctx context.Context) notify.PermissionState {
	var state notify.PermissionState
	err := p.store.Get(ctx, PermissionKey, &state)
	switch {
	case err == nil:
	case kv.IsNotFound(err):
		return notify.PermissionDefault
	default:
		p.log.Warn().Err(err).Msg("failed to read permission state")
		return notify.PermissionDefault
	}

	switch state {
	case notify.PermissionGranted, notify.PermissionDenied:
		return state
	default:
		return notify.PermissionDefault
	}
}

// Request prompts the user and remembers a definite answer. A dismissed
// prompt leaves the state at default.
func (p *Permission) Request(ctx context.Context) (notify.PermissionState, error) {
	if p.prompter == nil {
		return notify.PermissionDefault, errors.New("no permission prompter configured")
	}

	allow, err := p.prompter.Prompt(ctx)
	if errors.Is(err, ErrDismissed) {
		return notify.PermissionDefault, nil
	}
	if err != nil {
		return notify.PermissionDefault, fmt.Errorf("prompt: %w", err)
	}

	state := notify.PermissionDenied
	if allow {
		state = notify.PermissionGranted
	}
	if err := p.store.Set(ctx, PermissionKey, state); err != nil {
		p.log.Error().Err(err).Msg("failed to persist permission state")
	}
	return state, nil
}

// Reset forgets the remembered answer so the next request prompts again.
func (p *Permission) Reset(ctx context.Context) error {
	return p.store.Delete(ctx, PermissionKey)
}
