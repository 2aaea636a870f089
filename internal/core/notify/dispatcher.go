package notify

import (
	"context"
	"fmt"

	"github.com/colonyops/orderbell/internal/core/logging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NewOrderTag groups host notifications about new orders so a newer one
// replaces the previous.
const NewOrderTag = "new-order"

var statusMessages = map[string]string{
	"confirmed":        "Order confirmed",
	"preparing":        "Preparing",
	"ready":            "Ready for delivery",
	"out_for_delivery": "Out for delivery",
	"delivered":        "Delivered",
	"canceled":         "Canceled",
}

// StatusMessage returns the notification text for an order status, falling
// back to the raw status.
func StatusMessage(status string) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return status
}

// Channels groups the host capabilities a Dispatcher fans out to. Any of
// them may be nil, in which case that channel is reported as skipped.
type Channels struct {
	Toasts ToastSink
	Sound  SoundPlayer
	Host   NotificationSink
}

// Dispatcher fans a notification event out to the toast, sound and host
// channels according to the current preferences and permission.
type Dispatcher struct {
	channels Channels
	prefs    *Preferences
	gate     *Gate
	bus      *Bus
	log      zerolog.Logger
	newID    func() string
}

// NewDispatcher creates a dispatcher. bus may be nil.
func NewDispatcher(channels Channels, prefs *Preferences, gate *Gate, bus *Bus, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		prefs:    prefs,
		gate:     gate,
		bus:      bus,
		log:      log.With().Str("component", "dispatcher").Logger(),
		newID:    uuid.NewString,
	}
}

// Dispatch delivers ev on every eligible channel. Channel failures are
// recorded in the returned Delivery and never abort the other channels.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) Delivery {
	ctx = logging.WithEventKind(ctx, string(ev.Kind))
	if ev.OrderID != "" {
		ctx = logging.WithOrderID(ctx, ev.OrderID)
	}

	cfg := d.prefs.Config()

	delivery := Delivery{
		Event: ev,
		Toast: d.showToast(ctx, ev, cfg),
		Sound: d.playSound(ctx, ev, cfg),
		Host:  d.showHost(ctx, ev, cfg),
	}

	for _, r := range delivery.Failed() {
		d.log.Warn().Ctx(ctx).Err(r.Err).Str("channel", string(r.Channel)).Msg("notification channel failed")
	}
	d.log.Debug().Ctx(ctx).Str("delivery", delivery.Summary()).Msg("notification dispatched")

	if d.bus != nil {
		d.bus.Publish(ctx, NewRecord(delivery))
	}

	return delivery
}

// NewOrder announces a freshly placed order.
func (d *Dispatcher) NewOrder(ctx context.Context, orderID, orderNumber, customerName string) Delivery {
	return d.Dispatch(ctx, Event{
		Kind:    KindNewOrder,
		Title:   fmt.Sprintf("New Order #%s", orderNumber),
		Message: fmt.Sprintf("Customer: %s", customerName),
		OrderID: orderID,
	})
}

// StatusUpdate announces an order status change.
func (d *Dispatcher) StatusUpdate(ctx context.Context, orderID, orderNumber, status string) Delivery {
	return d.Dispatch(ctx, Event{
		Kind:    KindStatusUpdate,
		Title:   "Order update",
		Message: fmt.Sprintf("Order #%s: %s", orderNumber, StatusMessage(status)),
		OrderID: orderID,
	})
}

func (d *Dispatcher) Success(ctx context.Context, msg string) Delivery {
	return d.Dispatch(ctx, Event{Kind: KindSuccess, Message: msg})
}

func (d *Dispatcher) Error(ctx context.Context, msg string) Delivery {
	return d.Dispatch(ctx, Event{Kind: KindError, Message: msg})
}

func (d *Dispatcher) Warning(ctx context.Context, msg string) Delivery {
	return d.Dispatch(ctx, Event{Kind: KindWarning, Message: msg})
}

func (d *Dispatcher) Info(ctx context.Context, msg string) Delivery {
	return d.Dispatch(ctx, Event{Kind: KindInfo, Message: msg})
}

// Clear dismisses every visible toast.
func (d *Dispatcher) Clear(ctx context.Context) (int, error) {
	if d.channels.Toasts == nil {
		return 0, nil
	}
	return d.channels.Toasts.Dismiss(ctx)
}

// TestSound plays the cue for s, honouring enableSound and the volume.
func (d *Dispatcher) TestSound(ctx context.Context, s Sound) ChannelResult {
	r := d.play(ctx, s, d.prefs.Config())
	if r.Outcome == OutcomeFailed {
		d.log.Warn().Ctx(ctx).Err(r.Err).Str("sound", string(s)).Msg("test sound failed")
	}
	return r
}

func (d *Dispatcher) showToast(ctx context.Context, ev Event, cfg Config) ChannelResult {
	if d.channels.Toasts == nil {
		return skipped(ChannelToast, "no toast surface")
	}

	message := ev.Message
	if ev.Kind == KindNewOrder && ev.Title != "" {
		message = ev.Title + " · " + ev.Message
	}

	toast := Toast{
		ID:                 d.newID(),
		Kind:               ev.Kind,
		Level:              ev.Kind.Level(),
		Message:            message,
		Icon:               ev.Kind.Icon(),
		Color:              ev.Kind.Color(),
		Position:           cfg.Position,
		Duration:           ev.Kind.ToastDuration(),
		RequireInteraction: ev.Kind == KindNewOrder,
	}

	if err := attempt(func() error { return d.channels.Toasts.Show(ctx, toast) }); err != nil {
		return failed(ChannelToast, err)
	}
	return delivered(ChannelToast)
}

func (d *Dispatcher) playSound(ctx context.Context, ev Event, cfg Config) ChannelResult {
	s, ok := ev.Kind.Sound()
	if !ok {
		return skipped(ChannelSound, "no cue for "+string(ev.Kind))
	}
	return d.play(ctx, s, cfg)
}

func (d *Dispatcher) play(ctx context.Context, s Sound, cfg Config) ChannelResult {
	switch {
	case !cfg.EnableSound:
		return skipped(ChannelSound, "sound disabled")
	case d.channels.Sound == nil:
		return skipped(ChannelSound, "no audio output")
	}

	tone := ToneFor(s, cfg.SoundVolume)
	if err := attempt(func() error { return d.channels.Sound.Play(ctx, tone) }); err != nil {
		return failed(ChannelSound, err)
	}
	return delivered(ChannelSound)
}

func (d *Dispatcher) showHost(ctx context.Context, ev Event, cfg Config) ChannelResult {
	switch {
	case !cfg.EnableBrowser:
		return skipped(ChannelHost, "host notifications disabled")
	case d.channels.Host == nil:
		return skipped(ChannelHost, "no host notification service")
	case d.gate == nil || !d.gate.Granted(ctx):
		return skipped(ChannelHost, "permission not granted")
	}

	n := HostNotification{
		Title:     ev.Title,
		Body:      ev.Message,
		AutoClose: HostAutoClose,
	}
	if n.Title == "" {
		n.Title = defaultTitle(ev.Kind)
	}
	if ev.Kind == KindNewOrder {
		n.Tag = NewOrderTag
		n.RequireInteraction = true
		n.AutoClose = 0
	}

	if err := attempt(func() error { return d.channels.Host.Show(ctx, n) }); err != nil {
		return failed(ChannelHost, err)
	}
	return delivered(ChannelHost)
}

func defaultTitle(k Kind) string {
	switch k {
	case KindSuccess:
		return "Success"
	case KindError:
		return "Error"
	case KindWarning:
		return "Warning"
	case KindStatusUpdate:
		return "Order update"
	default:
		return "Info"
	}
}

// attempt runs fn, converting a panic into an error.
func attempt(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
