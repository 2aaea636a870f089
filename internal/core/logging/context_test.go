package logging

import (
	"context"
	"testing"
)

func TestWithOrderID(t *testing.T) {
	ctx := WithOrderID(context.Background(), "order-123")

	if got := GetOrderID(ctx); got != "order-123" {
		t.Errorf("GetOrderID() = %q, want %q", got, "order-123")
	}
}

func TestWithEventKind(t *testing.T) {
	ctx := WithEventKind(context.Background(), "new-order")

	if got := GetEventKind(ctx); got != "new-order" {
		t.Errorf("GetEventKind() = %q, want %q", got, "new-order")
	}
}

func TestGetOrderID_NotPresent(t *testing.T) {
	if got := GetOrderID(context.Background()); got != "" {
		t.Errorf("GetOrderID() = %q, want empty string", got)
	}
}

func TestGetEventKind_NotPresent(t *testing.T) {
	if got := GetEventKind(context.Background()); got != "" {
		t.Errorf("GetEventKind() = %q, want empty string", got)
	}
}
