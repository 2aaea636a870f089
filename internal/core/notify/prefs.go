package notify

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/colonyops/orderbell/internal/core/kv"
	"github.com/rs/zerolog"
)

// PreferencesKey is the key the config blob is stored under.
const PreferencesKey = "notificationConfig"

// Preferences loads, merges and persists the notification config. The
// in-memory value is authoritative for the session: persistence is best
// effort and a failed write never rolls it back.
type Preferences struct {
	store kv.KV
	log   zerolog.Logger

	mu  sync.RWMutex
	cfg Config
}

// NewPreferences creates a preference store over the given backend. The
// in-memory config starts at defaults until Load is called.
func NewPreferences(store kv.KV, log zerolog.Logger) *Preferences {
	return &Preferences{
		store: store,
		log:   log.With().Str("component", "preferences").Logger(),
		cfg:   DefaultConfig(),
	}
}

// Load reads the persisted config and merges it over the defaults. A missing
// or corrupt blob yields the defaults; Load never fails.
func (p *Preferences) Load(ctx context.Context) Config {
	cfg := DefaultConfig()

	var raw json.RawMessage
	err := p.store.Get(ctx, PreferencesKey, &raw)
	switch {
	case err == nil:
		var saved PartialConfig
		if err := json.Unmarshal(raw, &saved); err != nil {
			p.log.Warn().Err(err).Msg("stored notification config is corrupt, using defaults")
			break
		}
		cfg = cfg.Merge(saved)
	case kv.IsNotFound(err):
		// nothing saved yet
	default:
		p.log.Warn().Err(err).Msg("failed to read notification config, using defaults")
	}

	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()

	return cfg
}

// Config returns the current in-memory config.
func (p *Preferences) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// Update merges partial into the current config and persists the full
// result. A persistence failure is logged and otherwise ignored.
func (p *Preferences) Update(ctx context.Context, partial PartialConfig) Config {
	p.mu.Lock()
	p.cfg = p.cfg.Merge(partial)
	cfg := p.cfg
	p.mu.Unlock()

	if err := p.store.Set(ctx, PreferencesKey, cfg); err != nil {
		p.log.Error().Err(err).Msg("failed to persist notification config")
	}

	return cfg
}
