package telegram

import (
	"context"
	"testing"
	"time"
)

func TestChainOrder(t *testing.T) {
	var trace []string
	mw := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, msg Inbound) error {
				trace = append(trace, name)
				return next(ctx, msg)
			}
		}
	}
	h := Chain(func(context.Context, Inbound) error {
		trace = append(trace, "handler")
		return nil
	}, mw("outer"), mw("inner"))

	if err := h(context.Background(), Inbound{}); err != nil {
		t.Fatalf("handler: %v", err)
	}
	want := []string{"outer", "inner", "handler"}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, expected %v", trace, want)
		}
	}
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(func(context.Context, Inbound) error {
		panic("handler exploded")
	})
	if err := h(context.Background(), Inbound{ChatID: 1}); err != nil {
		t.Fatalf("recovered panic should not surface as error, got %v", err)
	}
}

func TestRateLimitMiddlewareDropsBursts(t *testing.T) {
	var handled []int64
	h := RateLimitMiddleware(time.Hour)(func(_ context.Context, msg Inbound) error {
		handled = append(handled, msg.ChatID)
		return nil
	})

	for _, chatID := range []int64{1, 1, 2} {
		if err := h(context.Background(), Inbound{ChatID: chatID}); err != nil {
			t.Fatalf("handle chat %d: %v", chatID, err)
		}
	}
	if len(handled) != 2 || handled[0] != 1 || handled[1] != 2 {
		t.Fatalf("handled = %v, expected one message per chat", handled)
	}
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	var handled int
	h := RateLimitMiddleware(0)(func(context.Context, Inbound) error {
		handled++
		return nil
	})

	for i := 0; i < 3; i++ {
		if err := h(context.Background(), Inbound{ChatID: 1}); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}
	if handled != 3 {
		t.Fatalf("handled = %d, expected all messages", handled)
	}
}
