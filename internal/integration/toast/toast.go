// Package toast renders in-app toasts as styled lines on a terminal.
package toast

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/colonyops/orderbell/internal/core/notify"
)

const defaultWidth = 80

// Sink writes one styled line per toast to out and keeps track of which
// toasts are still on screen. Toasts that require interaction stay active
// until Dismiss.
type Sink struct {
	out      io.Writer
	renderer *lipgloss.Renderer
	width    func() int
	now      func() time.Time

	mu     sync.Mutex
	active map[string]time.Time
}

var _ notify.ToastSink = (*Sink)(nil)

// New creates a toast sink writing to out. The available width is read
// from the terminal when out is one.
func New(out io.Writer) *Sink {
	return &Sink{
		out:      out,
		renderer: lipgloss.NewRenderer(out),
		width:    widthOf(out),
		now:      time.Now,
		active:   make(map[string]time.Time),
	}
}

func widthOf(out io.Writer) func() int {
	f, ok := out.(*os.File)
	if !ok {
		return func() int { return defaultWidth }
	}
	return func() int {
		if !term.IsTerminal(int(f.Fd())) {
			return defaultWidth
		}
		w, _, err := term.GetSize(int(f.Fd()))
		if err != nil || w <= 0 {
			return defaultWidth
		}
		return w
	}
}

// Show renders t and marks it active for its duration.
func (s *Sink) Show(_ context.Context, t notify.Toast) error {
	line := s.render(t)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire()
	if t.RequireInteraction {
		s.active[t.ID] = time.Time{}
	} else {
		s.active[t.ID] = s.now().Add(t.Duration)
	}

	_, err := fmt.Fprintln(s.out, line)
	return err
}

// Dismiss clears every active toast and returns how many there were.
func (s *Sink) Dismiss(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire()
	n := len(s.active)
	clear(s.active)
	return n, nil
}

// Active returns the number of toasts still on screen.
func (s *Sink) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expire()
	return len(s.active)
}

// expire drops timed-out toasts. Callers hold s.mu.
func (s *Sink) expire() {
	now := s.now()
	for id, until := range s.active {
		if !until.IsZero() && !now.Before(until) {
			delete(s.active, id)
		}
	}
}

func (s *Sink) render(t notify.Toast) string {
	color := lipgloss.Color(t.Color)

	icon := s.renderer.NewStyle().Foreground(color).Render(t.Icon)
	body := s.renderer.NewStyle().Bold(t.RequireInteraction).Render(t.Message)

	box := s.renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Render(icon + " " + body)

	return lipgloss.PlaceHorizontal(s.width(), align(t.Position), box)
}

func align(p notify.Position) lipgloss.Position {
	switch p {
	case notify.PositionTopCenter, notify.PositionBottomCenter:
		return lipgloss.Center
	default:
		return lipgloss.Right
	}
}
