// Package telegram implements the transport boundary of the bot: an
// offset-based long-poll client over the Telegram Bot API, update decoding,
// and the run loop that feeds decoded messages to a handler.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollSeconds = 60

// Client is the outbound surface the run loop and dispatcher depend on.
type Client interface {
	// FetchUpdates long-polls for updates strictly after offset-1.
	// Callers must not advance their offset when an error is returned.
	FetchUpdates(ctx context.Context, offset int) ([]tele.Update, error)
	// SendText delivers a single plain-text message to a chat.
	SendText(ctx context.Context, chatID int64, text string) error
}

// TransportError wraps a failed Telegram API call.
type TransportError struct {
	Op  string
	Err error
}

// Error describes the failed operation.
func (e *TransportError) Error() string {
	return fmt.Sprintf("telegram %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIClient is a stateless Telegram Bot API client. It keeps no state
// between calls; the offset protocol is owned entirely by the caller.
type APIClient struct {
	bot     *tele.Bot
	timeout int
}

// NewAPIClient builds a client for the given bot token. The long-poll
// timeout bounds a single fetch round trip, not conversation lifetime.
func NewAPIClient(token string, longPollTimeoutSeconds int) (*APIClient, error) {
	if longPollTimeoutSeconds <= 0 {
		longPollTimeoutSeconds = defaultLongPollSeconds
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Client: BuildHTTPClient(longPollTimeoutSeconds),
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	return &APIClient{bot: bot, timeout: longPollTimeoutSeconds}, nil
}

type getUpdatesResult struct {
	Result []tele.Update `json:"result"`
}

// FetchUpdates calls getUpdates with the caller's offset.
func (c *APIClient) FetchUpdates(ctx context.Context, offset int) ([]tele.Update, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := c.bot.Raw("getUpdates", map[string]any{
		"offset":  offset,
		"timeout": c.timeout,
	})
	if err != nil {
		return nil, &TransportError{Op: "getUpdates", Err: err}
	}

	var resp getUpdatesResult
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &TransportError{Op: "getUpdates", Err: fmt.Errorf("decode response: %w", err)}
	}
	return resp.Result, nil
}

// SendText sends one text message. No retry beyond the HTTP transport's
// transient-failure retries; the caller decides what a failure means.
func (c *APIClient) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.bot.Send(tele.ChatID(chatID), text); err != nil {
		return &TransportError{Op: "sendMessage", Err: err}
	}
	return nil
}
