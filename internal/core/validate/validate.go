// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Required validates a value is non-empty after trimming whitespace.
func Required(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("is required")
	}
	return nil
}

// Volume validates a sound volume is a number in [0,1].
func Volume(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("must be between 0 and 1, got %v", v)
	}
	return nil
}

// OneOf returns a validator that accepts only the listed values.
func OneOf[T ~string](allowed ...T) func(T) error {
	return func(v T) error {
		if slices.Contains(allowed, v) {
			return nil
		}
		return fmt.Errorf("must be one of %v, got %q", allowed, v)
	}
}
