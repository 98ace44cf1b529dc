package telegram

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/m3rciful/goalbot/core/logger"
	"log/slog"
)

// Handler processes one decoded inbound message.
type Handler func(ctx context.Context, msg Inbound) error

// Middleware wraps a Handler with cross-cutting behaviour.
type Middleware func(next Handler) Handler

// Chain applies middlewares so the first one listed is outermost.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RecoverMiddleware catches panics in handlers and prevents the loop from crashing.
func RecoverMiddleware(next Handler) Handler {
	return func(ctx context.Context, msg Inbound) error {
		defer func() {
			if r := recover(); r != nil {
				logger.TG.Error("panic recovered",
					slog.String("event", "tg.panic"),
					slog.Int64("chat_id", msg.ChatID),
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(ctx, msg)
	}
}

// RateLimitMiddleware enforces a minimum interval between handled messages
// from the same chat. Messages inside the interval are dropped with a log
// line; interval <= 0 disables limiting.
func RateLimitMiddleware(interval time.Duration) Middleware {
	var (
		chatLastSeen   = make(map[int64]time.Time)
		chatLastSeenMu sync.Mutex
	)
	return func(next Handler) Handler {
		return func(ctx context.Context, msg Inbound) error {
			if interval <= 0 {
				return next(ctx, msg)
			}

			now := time.Now()
			chatLastSeenMu.Lock()
			if last, ok := chatLastSeen[msg.ChatID]; ok && now.Sub(last) < interval {
				chatLastSeenMu.Unlock()
				logger.TG.Warn("rate limit",
					slog.String("event", "tg.rate_limit"),
					slog.String("status", "rate_limited"),
					slog.Int64("chat_id", msg.ChatID),
				)
				return nil
			}
			chatLastSeen[msg.ChatID] = now
			chatLastSeenMu.Unlock()
			return next(ctx, msg)
		}
	}
}
