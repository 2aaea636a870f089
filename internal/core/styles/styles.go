// Package styles provides shared lipgloss styles for CLI output.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Text styles used by command output.
var (
	TextPrimaryStyle        lipgloss.Style
	TextPrimaryBoldStyle    lipgloss.Style
	TextForegroundBoldStyle lipgloss.Style
	TextMutedStyle          lipgloss.Style
	TextSuccessStyle        lipgloss.Style
	TextWarningStyle        lipgloss.Style
	TextErrorStyle          lipgloss.Style

	// Notification history levels.
	LevelInfoStyle    lipgloss.Style
	LevelSuccessStyle lipgloss.Style
	LevelWarningStyle lipgloss.Style
	LevelErrorStyle   lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	TextPrimaryStyle = lipgloss.NewStyle().Foreground(p.Primary)
	TextPrimaryBoldStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	TextForegroundBoldStyle = lipgloss.NewStyle().Foreground(p.Foreground).Bold(true)
	TextMutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	TextSuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	TextWarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	TextErrorStyle = lipgloss.NewStyle().Foreground(p.Error)

	LevelInfoStyle = lipgloss.NewStyle().Foreground(p.Secondary)
	LevelSuccessStyle = TextSuccessStyle
	LevelWarningStyle = TextWarningStyle
	LevelErrorStyle = TextErrorStyle.Bold(true)
}

// LevelStyle returns the style for a notification level name.
func LevelStyle(level string) lipgloss.Style {
	switch level {
	case "success":
		return LevelSuccessStyle
	case "warning":
		return LevelWarningStyle
	case "error":
		return LevelErrorStyle
	default:
		return LevelInfoStyle
	}
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
