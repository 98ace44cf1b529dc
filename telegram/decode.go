package telegram

import (
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v4"
)

// ErrNoPayload indicates an update that carries neither a message nor an
// edited message.
var ErrNoPayload = errors.New("update has no message payload")

// DecodeError wraps a malformed inbound update. The loop skips the update
// and continues the batch.
type DecodeError struct {
	UpdateID int
	Err      error
}

// Error describes the malformed update.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode update %d: %v", e.UpdateID, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Inbound is the normalized shape of one inbound chat message.
type Inbound struct {
	UpdateID int
	ChatID   int64
	Username string
	Text     string
}

// Decode normalizes an update into an Inbound message. A "message" payload
// takes precedence over an "edited_message" payload; both produce the same
// shape. Absent text is an empty string, not an error.
func Decode(u tele.Update) (Inbound, error) {
	msg := u.Message
	if msg == nil {
		msg = u.EditedMessage
	}
	if msg == nil {
		return Inbound{}, &DecodeError{UpdateID: u.ID, Err: ErrNoPayload}
	}
	if msg.Chat == nil {
		return Inbound{}, &DecodeError{UpdateID: u.ID, Err: errors.New("message has no chat")}
	}

	return Inbound{
		UpdateID: u.ID,
		ChatID:   msg.Chat.ID,
		Username: msg.Chat.Username,
		Text:     msg.Text,
	}, nil
}
