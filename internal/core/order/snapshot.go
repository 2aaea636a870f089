package order

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrEmptySnapshot is returned when a snapshot document has no content.
var ErrEmptySnapshot = errors.New("empty snapshot document")

type envelope struct {
	Orders *Snapshot `json:"orders"`
}

// Decode reads a snapshot document. Both a bare array of orders and an
// object with an "orders" array are accepted.
func Decode(r io.Reader) (Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Parse(data)
}

// Parse decodes a snapshot from raw JSON.
func Parse(data []byte) (Snapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptySnapshot
	}

	switch data[0] {
	case '[':
		var s Snapshot
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		return s, validate(s)
	case '{':
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		if env.Orders == nil {
			return nil, errors.New(`decode snapshot: missing "orders" field`)
		}
		return *env.Orders, validate(*env.Orders)
	default:
		return nil, fmt.Errorf("decode snapshot: expected array or object, got %q", data[0])
	}
}

func validate(s Snapshot) error {
	for i, o := range s {
		if o.ID == "" {
			return fmt.Errorf("decode snapshot: order %d has no id", i)
		}
	}
	return nil
}
