// Package config handles configuration loading and validation for orderbell.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/orderbell/internal/core/styles"
)

// Preference backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config holds the application configuration.
type Config struct {
	Theme       string            `yaml:"theme"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Audio       AudioConfig       `yaml:"audio"`
	Desktop     DesktopConfig     `yaml:"desktop"`
	Orders      OrdersConfig      `yaml:"orders"`
	HTTP        HTTPConfig        `yaml:"http"`
	History     HistoryConfig     `yaml:"history"`
	Database    DatabaseConfig    `yaml:"database"`
	DataDir     string            `yaml:"-"` // set by caller, not from config file
}

// PreferencesConfig selects where notification preferences are persisted.
type PreferencesConfig struct {
	Backend string `yaml:"backend"` // sqlite or file
}

// AudioConfig controls how notification tones are played.
type AudioConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Player     []string `yaml:"player"` // command that reads a WAV file from stdin
	SampleRate int      `yaml:"sample_rate"`
}

// DesktopConfig controls host notifications on the session bus.
type DesktopConfig struct {
	Enabled bool   `yaml:"enabled"`
	AppName string `yaml:"app_name"`
	Icon    string `yaml:"icon"`
}

// OrdersConfig controls the order snapshot watcher.
type OrdersConfig struct {
	WatchDir            string        `yaml:"watch_dir"`
	Pattern             string        `yaml:"pattern"`
	Debounce            time.Duration `yaml:"debounce"`
	NotifyNew           bool          `yaml:"notify_new"`
	NotifyStatusChanges bool          `yaml:"notify_status_changes"`
	Checkpoint          bool          `yaml:"checkpoint"` // remember seen orders between runs
}

// HTTPConfig holds the API server settings.
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// HistoryConfig controls notification history retention.
type HistoryConfig struct {
	Retention     time.Duration `yaml:"retention"` // 0 keeps history forever
	SweepInterval time.Duration `yaml:"sweep_interval"`
	ListLimit     int           `yaml:"list_limit"`
}

// DatabaseConfig holds SQLite connection pool settings.
type DatabaseConfig struct {
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Theme:       styles.DefaultTheme,
		Preferences: PreferencesConfig{
			Backend: BackendSQLite,
		},
		Audio: AudioConfig{
			Enabled:    true,
			Player:     []string{"aplay", "-q"},
			SampleRate: 22050,
		},
		Desktop: DesktopConfig{
			Enabled: true,
			AppName: "orderbell",
			Icon:    "dialog-information",
		},
		Orders: OrdersConfig{
			Pattern:    "**/*.json",
			Debounce:   250 * time.Millisecond,
			NotifyNew:  true,
			Checkpoint: true,
		},
		HTTP: HTTPConfig{
			Listen: "127.0.0.1:7420",
		},
		History: HistoryConfig{
			Retention:     30 * 24 * time.Hour,
			SweepInterval: 5 * time.Minute,
			ListLimit:     50,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5 * time.Second,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
	if c.Preferences.Backend == "" {
		c.Preferences.Backend = defaults.Preferences.Backend
	}
	if len(c.Audio.Player) == 0 {
		c.Audio.Player = defaults.Audio.Player
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = defaults.Audio.SampleRate
	}
	if c.Desktop.AppName == "" {
		c.Desktop.AppName = defaults.Desktop.AppName
	}
	if c.Orders.Pattern == "" {
		c.Orders.Pattern = defaults.Orders.Pattern
	}
	if c.Orders.WatchDir == "" && c.DataDir != "" {
		c.Orders.WatchDir = filepath.Join(c.DataDir, "orders")
	}
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = defaults.HTTP.Listen
	}
	if c.History.SweepInterval == 0 {
		c.History.SweepInterval = defaults.History.SweepInterval
	}
	if c.History.ListLimit == 0 {
		c.History.ListLimit = defaults.History.ListLimit
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if _, ok := styles.GetPalette(c.Theme); !ok {
		return fmt.Errorf("theme %q is not one of %v", c.Theme, styles.ThemeNames())
	}

	switch c.Preferences.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("preferences.backend must be %q or %q, got %q", BackendSQLite, BackendFile, c.Preferences.Backend)
	}

	if len(c.Audio.Player) == 0 || c.Audio.Player[0] == "" {
		return fmt.Errorf("audio.player cannot be empty")
	}
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return fmt.Errorf("audio.sample_rate must be between 8000 and 192000")
	}

	if c.Orders.Debounce < 0 {
		return fmt.Errorf("orders.debounce cannot be negative")
	}

	if c.History.Retention < 0 {
		return fmt.Errorf("history.retention cannot be negative")
	}
	if c.History.SweepInterval < time.Second {
		return fmt.Errorf("history.sweep_interval must be at least 1s")
	}
	if c.History.ListLimit < 1 {
		return fmt.Errorf("history.list_limit must be at least 1")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	return nil
}

// PreferencesFile returns the path of the file preference backend.
func (c *Config) PreferencesFile() string {
	return filepath.Join(c.DataDir, "preferences.json")
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "orderbell.log")
}
