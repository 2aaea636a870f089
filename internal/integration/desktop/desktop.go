// Package desktop delivers host notifications through the freedesktop
// notification service on the session D-Bus.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/colonyops/orderbell/internal/core/notify"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	iface      = "org.freedesktop.Notifications"

	urgencyNormal   byte = 1
	urgencyCritical byte = 2
)

// Caller is the slice of dbus.BusObject the sink uses.
type Caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call
}

// Options configures how notifications are labelled.
type Options struct {
	AppName string
	Icon    string
}

// Sink sends notifications to org.freedesktop.Notifications. Notifications
// sharing a tag replace the previous one instead of stacking.
//
// Availability is checked once and cached. A failed Notify drops the cached
// answer so the next check asks the daemon again.
type Sink struct {
	obj  Caller
	opts Options
	log  zerolog.Logger

	mu        sync.Mutex
	tags      map[string]uint32
	checked   bool
	available bool
}

var _ notify.NotificationSink = (*Sink)(nil)

// NewSink wraps a notification service object.
func NewSink(obj Caller, opts Options, log zerolog.Logger) *Sink {
	if opts.AppName == "" {
		opts.AppName = "orderbell"
	}
	return &Sink{
		obj:  obj,
		opts: opts,
		log:  log.With().Str("component", "desktop").Logger(),
		tags: make(map[string]uint32),
	}
}

// Connect opens the session bus and returns a sink for its notification
// service along with a function that closes the connection.
func Connect(opts Options, log zerolog.Logger) (*Sink, func(), error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, func() {}, fmt.Errorf("connect session bus: %w", err)
	}
	closer := func() { _ = conn.Close() }
	return NewSink(conn.Object(busName, objectPath), opts, log), closer, nil
}

// ServerInfo identifies the running notification daemon.
type ServerInfo struct {
	Name        string `json:"name"`
	Vendor      string `json:"vendor"`
	Version     string `json:"version"`
	SpecVersion string `json:"specVersion"`
}

// ServerInformation asks the daemon to identify itself. It fails when no
// notification service is running.
func (s *Sink) ServerInformation(ctx context.Context) (ServerInfo, error) {
	if s == nil || s.obj == nil {
		return ServerInfo{}, notify.ErrUnsupported
	}

	var info ServerInfo
	call := s.obj.CallWithContext(ctx, iface+".GetServerInformation", 0)
	if err := call.Store(&info.Name, &info.Vendor, &info.Version, &info.SpecVersion); err != nil {
		return ServerInfo{}, fmt.Errorf("get server information: %w", err)
	}
	return info, nil
}

// Available reports whether a notification daemon answers on the bus.
func (s *Sink) Available(ctx context.Context) bool {
	if s == nil {
		return false
	}

	s.mu.Lock()
	if s.checked {
		ok := s.available
		s.mu.Unlock()
		return ok
	}
	s.mu.Unlock()

	_, err := s.ServerInformation(ctx)
	s.setAvailable(err == nil)
	return err == nil
}

func (s *Sink) setAvailable(ok bool) {
	s.mu.Lock()
	s.checked, s.available = true, ok
	s.mu.Unlock()
}

func (s *Sink) forgetAvailability() {
	s.mu.Lock()
	s.checked = false
	s.mu.Unlock()
}

// Show sends n. Persistent notifications never expire and are marked
// critical so daemons keep them on screen.
func (s *Sink) Show(ctx context.Context, n notify.HostNotification) error {
	if s == nil || s.obj == nil {
		return notify.ErrUnsupported
	}

	urgency := urgencyNormal
	timeout := int32(n.AutoClose.Milliseconds())
	if n.RequireInteraction {
		urgency = urgencyCritical
		timeout = 0
	}

	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(urgency),
		"desktop-entry": dbus.MakeVariant(s.opts.AppName),
	}

	s.mu.Lock()
	replaces := s.tags[n.Tag]
	s.mu.Unlock()

	call := s.obj.CallWithContext(ctx, iface+".Notify", 0,
		s.opts.AppName,
		replaces,
		s.opts.Icon,
		n.Title,
		n.Body,
		[]string{},
		hints,
		timeout,
	)

	var id uint32
	if err := call.Store(&id); err != nil {
		s.forgetAvailability()
		var dbusErr dbus.Error
		if errors.As(err, &dbusErr) {
			return fmt.Errorf("notify %s: %w", dbusErr.Name, err)
		}
		return fmt.Errorf("notify: %w", err)
	}

	s.mu.Lock()
	if n.Tag != "" {
		s.tags[n.Tag] = id
	}
	s.checked, s.available = true, true
	s.mu.Unlock()

	s.log.Debug().Uint32("id", id).Str("tag", n.Tag).Msg("desktop notification sent")
	return nil
}
