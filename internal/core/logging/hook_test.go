package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextHook_Run(t *testing.T) {
	tests := []struct {
		name      string
		setupCtx  func() context.Context
		wantKeys  []string
		wantEmpty []string
	}{
		{
			name: "order and kind",
			setupCtx: func() context.Context {
				ctx := context.Background()
				ctx = WithOrderID(ctx, "o-123")
				ctx = WithEventKind(ctx, "new-order")
				return ctx
			},
			wantKeys: []string{"order_id", "event_kind"},
		},
		{
			name: "only order_id",
			setupCtx: func() context.Context {
				return WithOrderID(context.Background(), "o-123")
			},
			wantKeys:  []string{"order_id"},
			wantEmpty: []string{"event_kind"},
		},
		{
			name: "only event_kind",
			setupCtx: func() context.Context {
				return WithEventKind(context.Background(), "error")
			},
			wantKeys:  []string{"event_kind"},
			wantEmpty: []string{"order_id"},
		},
		{
			name:      "no context values",
			setupCtx:  context.Background,
			wantEmpty: []string{"order_id", "event_kind"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := tt.setupCtx()

			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(ctx).Msg("test")

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				t.Fatalf("failed to parse log: %v", err)
			}

			for _, key := range tt.wantKeys {
				if _, ok := logEntry[key]; !ok {
					t.Errorf("expected %s to be present in log", key)
				}
			}

			for _, key := range tt.wantEmpty {
				if _, ok := logEntry[key]; ok {
					t.Errorf("expected %s to be absent from log", key)
				}
			}
		})
	}
}
