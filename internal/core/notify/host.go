package notify

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by host capabilities that do not exist on the
// current platform.
var ErrUnsupported = errors.New("not supported by host")

// ToastSink renders transient in-app messages.
type ToastSink interface {
	Show(ctx context.Context, t Toast) error
	// Dismiss removes every visible toast and returns how many were removed.
	Dismiss(ctx context.Context) (int, error)
}

// SoundPlayer synthesizes and plays an audio cue.
type SoundPlayer interface {
	Play(ctx context.Context, t Tone) error
}

// NotificationSink displays OS-level notifications.
type NotificationSink interface {
	Show(ctx context.Context, n HostNotification) error
}

// PermissionState mirrors the host's notification permission.
type PermissionState string

const (
	PermissionDefault PermissionState = "default"
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

// PermissionProvider exposes the host's notification permission.
type PermissionProvider interface {
	// Supported reports whether the host has a notification API at all.
	Supported(ctx context.Context) bool
	// State returns the current permission without prompting.
	State(ctx context.Context) PermissionState
	// Request prompts the user and returns the resulting state.
	Request(ctx context.Context) (PermissionState, error)
}
