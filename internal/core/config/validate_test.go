package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Orders.WatchDir = filepath.Join(cfg.DataDir, "orders")
	return &cfg
}

// stubLookPath makes every executable except missing resolvable.
func stubLookPath(t *testing.T, missing ...string) {
	t.Helper()
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(file string) (string, error) {
		for _, m := range missing {
			if m == file {
				return "", errors.New("not found")
			}
		}
		return "/usr/bin/" + file, nil
	}
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	stubLookPath(t)
	cfg := validConfig(t)

	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_MissingPlayer(t *testing.T) {
	stubLookPath(t, "aplay")
	cfg := validConfig(t)

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 1)
	assert.Equal(t, "audio.player", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "executable not found")
}

func TestValidateDeep_PlayerIgnoredWhenAudioDisabled(t *testing.T) {
	stubLookPath(t, "aplay")
	cfg := validConfig(t)
	cfg.Audio.Enabled = false

	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_InvalidPattern(t *testing.T) {
	stubLookPath(t)
	cfg := validConfig(t)
	cfg.Orders.Pattern = "orders/[.json"

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 1)
	assert.Equal(t, "orders.pattern", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "invalid glob")
}

func TestValidateDeep_InvalidListen(t *testing.T) {
	stubLookPath(t)
	cfg := validConfig(t)
	cfg.HTTP.Listen = "localhost"

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 1)
	assert.Equal(t, "http.listen", fieldErrs[0].Field)
}

func TestValidateDeep_WatchDirIsFile(t *testing.T) {
	stubLookPath(t)
	cfg := validConfig(t)
	file := filepath.Join(cfg.DataDir, "orders")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 1)
	assert.Equal(t, "orders.watch_dir", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "not a directory")
}

func TestValidateDeep_ConfigFileIsDirectory(t *testing.T) {
	stubLookPath(t)
	cfg := validConfig(t)

	err := cfg.ValidateDeep(t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 1)
	assert.Equal(t, "config_file", fieldErrs[0].Field)
}

func TestValidateDeep_MultipleErrors(t *testing.T) {
	stubLookPath(t, "aplay")
	cfg := validConfig(t)
	cfg.Orders.Pattern = "[x"
	cfg.HTTP.Listen = "nope"

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 3)
}

func TestValidateDeep_StructuralErrorFirst(t *testing.T) {
	cfg := validConfig(t)
	cfg.Preferences.Backend = "redis"

	err := cfg.ValidateDeep("")
	require.Error(t, err)

	var fieldErrs criterio.FieldErrors
	assert.False(t, errors.As(err, &fieldErrs))
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	assert.Empty(t, cfg.Warnings())

	cfg.Orders.NotifyNew = false
	cfg.History.Retention = 0
	cfg.Audio.Enabled = false
	cfg.Desktop.Enabled = false

	warnings := cfg.Warnings()
	require.Len(t, warnings, 3)
	assert.Equal(t, "Orders", warnings[0].Category)
	assert.Equal(t, "History", warnings[1].Category)
	assert.Equal(t, "Channels", warnings[2].Category)
}

func TestWarnings_StatusChangesWithoutCheckpoint(t *testing.T) {
	cfg := validConfig(t)
	cfg.Orders.NotifyStatusChanges = true
	cfg.Orders.Checkpoint = false

	warnings := cfg.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "checkpoint", warnings[0].Item)
}
