package jsonfile

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	// DefaultPattern matches every JSON file below the watched directory.
	DefaultPattern  = "**/*.json"
	DefaultDebounce = 250 * time.Millisecond
	eventBufferSize = 100
)

// SnapshotEvent reports a snapshot file that settled after a change.
type SnapshotEvent struct {
	Path      string
	Timestamp time.Time
}

// WatcherOptions configures a SnapshotWatcher.
type WatcherOptions struct {
	// Pattern is a doublestar glob matched against paths relative to the
	// watched directory.
	Pattern  string
	Debounce time.Duration
	Logger   zerolog.Logger
}

// SnapshotWatcher watches a directory tree for snapshot files using
// fsnotify. Bursts of writes to one file collapse into a single event.
type SnapshotWatcher struct {
	dir      string
	pattern  string
	debounce time.Duration
	log      zerolog.Logger
	watcher  *fsnotify.Watcher

	mu          sync.Mutex
	subscribers []chan<- SnapshotEvent
	timers      map[string]*time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSnapshotWatcher starts watching dir and every directory below it. The
// directory is created if it doesn't exist.
func NewSnapshotWatcher(dir string, opts WatcherOptions) (*SnapshotWatcher, error) {
	if opts.Pattern == "" {
		opts.Pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(opts.Pattern) {
		return nil, fmt.Errorf("invalid snapshot pattern %q", opts.Pattern)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	sw := &SnapshotWatcher{
		dir:      dir,
		pattern:  opts.Pattern,
		debounce: opts.Debounce,
		log:      opts.Logger.With().Str("component", "snapshot-watcher").Logger(),
		watcher:  watcher,
		timers:   make(map[string]*time.Timer),
		ctx:      ctx,
		cancel:   cancel,
	}

	if err := sw.addTree(dir); err != nil {
		cancel()
		_ = watcher.Close()
		return nil, err
	}

	sw.wg.Add(1)
	go sw.run()

	return sw, nil
}

// Matches reports whether path, relative to the watched directory, is a
// snapshot file.
func (sw *SnapshotWatcher) Matches(rel string) bool {
	base := filepath.Base(rel)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".tmp") {
		return false
	}
	ok, err := doublestar.Match(sw.pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

// Existing lists the snapshot files already present, sorted by path.
func (sw *SnapshotWatcher) Existing() ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(sw.dir), sw.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if sw.Matches(m) {
			out = append(out, filepath.Join(sw.dir, filepath.FromSlash(m)))
		}
	}
	return out, nil
}

// Watch returns a channel that receives an event whenever a snapshot file
// settles. The channel is closed when ctx is done or the watcher closes.
func (sw *SnapshotWatcher) Watch(ctx context.Context) <-chan SnapshotEvent {
	ch := make(chan SnapshotEvent, eventBufferSize)

	sw.mu.Lock()
	sw.subscribers = append(sw.subscribers, ch)
	sw.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sw.unsubscribe(ch)
		case <-sw.ctx.Done():
			// channel is closed by Close
		}
	}()

	return ch
}

// Close stops watching and closes all subscriber channels.
func (sw *SnapshotWatcher) Close() error {
	sw.cancel()

	sw.mu.Lock()
	for _, timer := range sw.timers {
		timer.Stop()
	}
	for _, ch := range sw.subscribers {
		close(ch)
	}
	sw.subscribers = nil
	sw.mu.Unlock()

	err := sw.watcher.Close()
	sw.wg.Wait()
	return err
}

func (sw *SnapshotWatcher) unsubscribe(ch chan<- SnapshotEvent) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	for i, sub := range sw.subscribers {
		if sub == ch {
			sw.subscribers = append(sw.subscribers[:i], sw.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (sw *SnapshotWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return sw.watcher.Add(path)
	})
}

func (sw *SnapshotWatcher) run() {
	defer sw.wg.Done()

	for {
		select {
		case <-sw.ctx.Done():
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			sw.handleEvent(event)
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (sw *SnapshotWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := sw.addTree(event.Name); err != nil {
				sw.log.Warn().Err(err).Str("dir", event.Name).Msg("failed to watch new directory")
			}
			return
		}
	}

	rel, err := filepath.Rel(sw.dir, event.Name)
	if err != nil || !sw.Matches(rel) {
		return
	}

	// A rename away from the path leaves nothing to read.
	if _, err := os.Stat(event.Name); err != nil {
		return
	}

	path := event.Name
	sw.mu.Lock()
	if timer, exists := sw.timers[path]; exists {
		timer.Stop()
	}
	sw.timers[path] = time.AfterFunc(sw.debounce, func() {
		sw.notify(path)
	})
	sw.mu.Unlock()
}

func (sw *SnapshotWatcher) notify(path string) {
	event := SnapshotEvent{Path: path, Timestamp: time.Now()}

	sw.mu.Lock()
	defer sw.mu.Unlock()

	for _, ch := range sw.subscribers {
		select {
		case ch <- event:
		default:
			sw.log.Warn().Str("path", path).Msg("subscriber full, dropping snapshot event")
		}
	}

	delete(sw.timers, path)
}
