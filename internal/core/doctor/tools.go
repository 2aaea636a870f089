package doctor

import (
	"context"
	"os/exec"
	"strings"
)

// lookPathFunc is the function used to find executables on PATH.
// Package-level variable to allow test overrides.
var lookPathFunc = exec.LookPath

// ToolsCheck verifies that the audio player command is available on $PATH.
type ToolsCheck struct {
	player  []string
	enabled bool
}

// NewToolsCheck creates a new tools check for the configured player command.
func NewToolsCheck(player []string, enabled bool) *ToolsCheck {
	return &ToolsCheck{player: player, enabled: enabled}
}

func (c *ToolsCheck) Name() string {
	return "Audio"
}

func (c *ToolsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if !c.enabled {
		result.Items = append(result.Items, CheckItem{
			Label:  "player",
			Status: StatusWarn,
			Detail: "audio disabled in config, sound cues are skipped",
		})
		return result
	}

	if len(c.player) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "player",
			Status: StatusFail,
			Detail: "no player command configured",
		})
		return result
	}

	label := strings.Join(c.player, " ")
	if path, err := lookPathFunc(c.player[0]); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusFail,
			Detail: "not found on PATH (sound cues will fail)",
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusPass,
			Detail: path,
		})
	}

	return result
}
