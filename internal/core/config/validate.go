package config

import (
	"fmt"
	"net"
	"os"
	"os/exec"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// the audio player executable, directory accessibility, the watch glob and the
// listen address. The configPath argument specifies the config file location to
// validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateOrders(),
		criterio.Run("http.listen", c.HTTP.Listen, validListenAddr),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if !c.Orders.NotifyNew && !c.Orders.NotifyStatusChanges {
		warnings = append(warnings, ValidationWarning{
			Category: "Orders",
			Message:  "notify_new and notify_status_changes are both off, watched snapshots never notify",
		})
	}
	if c.Orders.NotifyStatusChanges && !c.Orders.Checkpoint {
		warnings = append(warnings, ValidationWarning{
			Category: "Orders",
			Item:     "checkpoint",
			Message:  "checkpoint is off, one-shot ingests cannot detect status changes",
		})
	}
	if c.History.Retention == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "History",
			Item:     "retention",
			Message:  "retention is 0, notification history is never pruned",
		})
	}
	if !c.Audio.Enabled && !c.Desktop.Enabled {
		warnings = append(warnings, ValidationWarning{
			Category: "Channels",
			Message:  "audio and desktop are both disabled, only terminal toasts are shown",
		})
	}

	return warnings
}

// validateFileAccess checks config file, directories, and the audio player.
func (c *Config) validateFileAccess(configPath string) error {
	var player string
	if len(c.Audio.Player) > 0 {
		player = c.Audio.Player[0]
	}

	errs := []error{
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("orders.watch_dir", c.Orders.WatchDir, isDirectoryOrNotExist),
	}
	if c.Audio.Enabled {
		errs = append(errs, criterio.Run("audio.player", player, executableExists))
	}
	return criterio.ValidateStruct(errs...)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func (c *Config) validateOrders() error {
	var errs criterio.FieldErrorsBuilder
	if !doublestar.ValidatePattern(c.Orders.Pattern) {
		errs = errs.Append("orders.pattern", fmt.Errorf("invalid glob %q", c.Orders.Pattern))
	}
	return errs.ToError()
}

// executableExists validates that the path resolves to an executable.
func executableExists(path string) error {
	if path == "" {
		return nil
	}
	if _, err := lookPath(path); err != nil {
		return fmt.Errorf("executable not found: %s", path)
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func validListenAddr(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	return nil
}
