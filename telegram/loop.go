package telegram

import (
	"context"
	"errors"
	"time"

	"github.com/m3rciful/goalbot/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

const defaultFetchBackoff = 3 * time.Second

// LoopOptions configure the long-poll run loop.
type LoopOptions struct {
	Client  Client
	Handler Handler
	// Middlewares wrap the handler; the first listed is outermost.
	Middlewares []Middleware
	// FetchBackoff is the pause after a failed fetch before retrying.
	FetchBackoff time.Duration
}

// Loop drives the long-poll update cycle: fetch a batch, process it
// strictly in arrival order, advance the offset past each processed
// update, repeat. A failed fetch never advances the offset, so the next
// iteration re-requests the same window.
type Loop struct {
	client  Client
	handler Handler
	backoff time.Duration
	offset  int
}

// NewLoop builds a Loop with the middleware chain applied.
func NewLoop(opts LoopOptions) *Loop {
	backoff := opts.FetchBackoff
	if backoff <= 0 {
		backoff = defaultFetchBackoff
	}
	return &Loop{
		client:  opts.Client,
		handler: Chain(opts.Handler, opts.Middlewares...),
		backoff: backoff,
	}
}

// Offset reports the next getUpdates offset. Exposed for tests.
func (l *Loop) Offset() int {
	return l.offset
}

// Run polls until ctx is cancelled. No handler or transport error
// terminates the loop; cancellation is the only exit and yields nil.
func (l *Loop) Run(ctx context.Context) error {
	logger.TG.Info("polling started",
		slog.String("event", "poll.start"),
		slog.Int("offset", l.offset),
	)

	for {
		if err := ctx.Err(); err != nil {
			logger.TG.Info("polling stopped",
				slog.String("event", "poll.stop"),
				slog.Int("offset", l.offset),
			)
			return nil
		}

		updates, err := l.client.FetchUpdates(ctx, l.offset)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}
			logger.TG.Error("fetch failed",
				slog.String("event", "poll.fetch"),
				slog.String("status", "fail"),
				slog.Int("offset", l.offset),
				slog.String("err", SanitizeErrorMessage(err)),
				slog.String("err_code", ClassifyError(err)),
			)
			l.sleep(ctx)
			continue
		}

		for _, u := range updates {
			l.process(ctx, u)
			l.offset = u.ID + 1
		}
	}
}

func (l *Loop) process(ctx context.Context, u tele.Update) {
	msg, err := Decode(u)
	if err != nil {
		logger.TG.Warn("update skipped",
			slog.String("event", "update.skip"),
			slog.String("status", "skip"),
			slog.Int("update_id", u.ID),
			slog.String("err", err.Error()),
		)
		return
	}

	rid := logger.BuildRID(msg.UpdateID, msg.ChatID, 0)
	mctx := logger.WithRID(ctx, rid)
	mctx = logger.WithUpdateMeta(mctx, msg.UpdateID, 0, msg.ChatID)
	mctx = logger.WithLogger(mctx, logger.Component("tg"))

	if logger.ShouldSampleDebug() {
		attrs := []slog.Attr{
			slog.String("status", "ok"),
			slog.Int64("chat_id", msg.ChatID),
		}
		if msg.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(msg.Username, 64)))
		}
		if msg.Text != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(msg.Text, 256)))
		}
		logger.LogEvent(mctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
	}

	start := time.Now()
	err = l.handler(mctx, msg)

	status := "ok"
	attrs := []slog.Attr{
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	}
	if err != nil {
		status = "fail"
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(SanitizeErrorMessage(err), 256)),
		)
	}
	attrs = append([]slog.Attr{slog.String("status", status)}, attrs...)
	logger.LogEvent(mctx, logger.Component("tg"), slog.LevelInfo, "update.handled", attrs...)
}

func (l *Loop) sleep(ctx context.Context) {
	timer := time.NewTimer(l.backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
