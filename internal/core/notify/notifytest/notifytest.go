// Package notifytest provides in-memory host capabilities for tests.
package notifytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/colonyops/orderbell/internal/core/notify"
)

// Toasts records toasts instead of rendering them.
type Toasts struct {
	mu     sync.Mutex
	Shown  []notify.Toast
	Active int
	Err    error
}

func (t *Toasts) Show(_ context.Context, toast notify.Toast) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return t.Err
	}
	t.Shown = append(t.Shown, toast)
	t.Active++
	return nil
}

func (t *Toasts) Dismiss(_ context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.Active
	t.Active = 0
	return n, nil
}

// Calls returns how many toasts were shown.
func (t *Toasts) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Shown)
}

// Player records tones instead of playing them.
type Player struct {
	mu     sync.Mutex
	Played []notify.Tone
	Err    error
	Panic  any
}

func (p *Player) Play(_ context.Context, tone notify.Tone) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Panic != nil {
		panic(p.Panic)
	}
	if p.Err != nil {
		return p.Err
	}
	p.Played = append(p.Played, tone)
	return nil
}

// Calls returns how many tones were played.
func (p *Player) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Played)
}

// HostSink records host notifications instead of displaying them.
type HostSink struct {
	mu    sync.Mutex
	Shown []notify.HostNotification
	Err   error
}

func (h *HostSink) Show(_ context.Context, n notify.HostNotification) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Err != nil {
		return h.Err
	}
	h.Shown = append(h.Shown, n)
	return nil
}

// Calls returns how many notifications were shown.
func (h *HostSink) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Shown)
}

// Permission is a scripted host permission. Request moves the state to
// Answer and counts prompts.
type Permission struct {
	mu          sync.Mutex
	Unsupported bool
	Current     notify.PermissionState
	Answer      notify.PermissionState
	Err         error
	Prompts     int
}

// NewPermission returns a supported host in the given state.
func NewPermission(state notify.PermissionState) *Permission {
	return &Permission{Current: state, Answer: notify.PermissionGranted}
}

func (p *Permission) Supported(context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.Unsupported
}

func (p *Permission) State(context.Context) notify.PermissionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Current == "" {
		return notify.PermissionDefault
	}
	return p.Current
}

func (p *Permission) Request(context.Context) (notify.PermissionState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Prompts++
	if p.Err != nil {
		return notify.PermissionDefault, p.Err
	}
	p.Current = p.Answer
	return p.Current, nil
}

// PromptCount returns how many times the user was prompted.
func (p *Permission) PromptCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Prompts
}

// Store is an in-memory notify.Store.
type Store struct {
	mu      sync.Mutex
	Records []notify.Record
	nextID  int64
	SaveErr error
}

func (s *Store) Save(_ context.Context, r notify.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return 0, s.SaveErr
	}
	s.nextID++
	r.ID = s.nextID
	s.Records = append(s.Records, r)
	return r.ID, nil
}

func (s *Store) List(_ context.Context, limit int) ([]notify.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]notify.Record, len(s.Records))
	copy(out, s.Records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = nil
	return nil
}

func (s *Store) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.Records)), nil
}

func (s *Store) Prune(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.Records[:0]
	var n int64
	for _, r := range s.Records {
		if r.CreatedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.Records = kept
	return n, nil
}
