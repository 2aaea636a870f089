package notify

import (
	"fmt"
	"math"
)

// Position is where toasts are anchored on the host surface.
type Position string

const (
	PositionTopCenter    Position = "top-center"
	PositionTopRight     Position = "top-right"
	PositionBottomCenter Position = "bottom-center"
	PositionBottomRight  Position = "bottom-right"
)

// Positions returns every supported toast position.
func Positions() []Position {
	return []Position{PositionTopCenter, PositionTopRight, PositionBottomCenter, PositionBottomRight}
}

// IsValid reports whether p is one of the supported positions.
func (p Position) IsValid() bool {
	switch p {
	case PositionTopCenter, PositionTopRight, PositionBottomCenter, PositionBottomRight:
		return true
	default:
		return false
	}
}

// Config holds the user's notification preferences. It is persisted as a
// single JSON blob, so the field names are part of the storage format.
type Config struct {
	EnableSound   bool     `json:"enableSound"`
	EnableBrowser bool     `json:"enableBrowser"`
	SoundVolume   float64  `json:"soundVolume"`
	Position      Position `json:"position"`
}

// DefaultConfig returns the preferences used when nothing is persisted.
func DefaultConfig() Config {
	return Config{
		EnableSound:   true,
		EnableBrowser: true,
		SoundVolume:   0.7,
		Position:      PositionTopRight,
	}
}

// PartialConfig is a sparse update to Config. Nil fields are left untouched.
type PartialConfig struct {
	EnableSound   *bool     `json:"enableSound,omitempty"`
	EnableBrowser *bool     `json:"enableBrowser,omitempty"`
	SoundVolume   *float64  `json:"soundVolume,omitempty"`
	Position      *Position `json:"position,omitempty"`
}

// IsEmpty reports whether the partial carries no fields.
func (p PartialConfig) IsEmpty() bool {
	return p.EnableSound == nil && p.EnableBrowser == nil && p.SoundVolume == nil && p.Position == nil
}

// Validate rejects values outside the accepted domain. The preference store
// tolerates such values (it clamps or ignores them); callers at the edge of
// the system use Validate to report them instead.
func (p PartialConfig) Validate() error {
	if p.SoundVolume != nil {
		v := *p.SoundVolume
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("soundVolume must be between 0 and 1, got %v", v)
		}
	}
	if p.Position != nil && !p.Position.IsValid() {
		return fmt.Errorf("position %q is not one of %v", *p.Position, Positions())
	}
	return nil
}

// Merge returns c with every field present in p overwritten. Out of range
// volumes are clamped and unknown positions keep the current value.
func (c Config) Merge(p PartialConfig) Config {
	out := c
	if p.EnableSound != nil {
		out.EnableSound = *p.EnableSound
	}
	if p.EnableBrowser != nil {
		out.EnableBrowser = *p.EnableBrowser
	}
	if p.SoundVolume != nil {
		out.SoundVolume = ClampVolume(*p.SoundVolume, c.SoundVolume)
	}
	if p.Position != nil && p.Position.IsValid() {
		out.Position = *p.Position
	}
	return out
}

// ClampVolume limits v to [0,1]. NaN yields fallback.
func ClampVolume(v, fallback float64) float64 {
	switch {
	case math.IsNaN(v):
		return fallback
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Ptr returns a pointer to v. It keeps PartialConfig literals short.
func Ptr[T any](v T) *T {
	return &v
}
