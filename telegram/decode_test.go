package telegram

import (
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestDecodeMessage(t *testing.T) {
	u := tele.Update{
		ID: 42,
		Message: &tele.Message{
			Text: "hello",
			Chat: &tele.Chat{ID: 111, Username: "bob"},
		},
	}

	got, err := Decode(u)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Inbound{UpdateID: 42, ChatID: 111, Username: "bob", Text: "hello"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDecodePrefersMessageOverEdited(t *testing.T) {
	u := tele.Update{
		ID:            1,
		Message:       &tele.Message{Text: "original", Chat: &tele.Chat{ID: 111}},
		EditedMessage: &tele.Message{Text: "edited", Chat: &tele.Chat{ID: 222}},
	}

	got, err := Decode(u)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Text != "original" || got.ChatID != 111 {
		t.Fatalf("got %+v, expected the message payload to win", got)
	}
}

func TestDecodeEditedMessage(t *testing.T) {
	u := tele.Update{
		ID:            2,
		EditedMessage: &tele.Message{Text: "edited", Chat: &tele.Chat{ID: 222}},
	}

	got, err := Decode(u)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ChatID != 222 || got.Text != "edited" {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodeMissingText(t *testing.T) {
	u := tele.Update{
		ID:      3,
		Message: &tele.Message{Chat: &tele.Chat{ID: 111}},
	}

	got, err := Decode(u)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Text != "" {
		t.Fatalf("text = %q, expected empty", got.Text)
	}
}

func TestDecodeFailures(t *testing.T) {
	cases := []struct {
		name string
		u    tele.Update
	}{
		{name: "no payload", u: tele.Update{ID: 4}},
		{name: "no chat", u: tele.Update{ID: 5, Message: &tele.Message{Text: "x"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.u)
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("err = %v, expected DecodeError", err)
			}
			if decodeErr.UpdateID != tc.u.ID {
				t.Fatalf("update id = %d, expected %d", decodeErr.UpdateID, tc.u.ID)
			}
		})
	}

	_, err := Decode(tele.Update{ID: 4})
	if !errors.Is(err, ErrNoPayload) {
		t.Fatalf("err = %v, expected ErrNoPayload", err)
	}
}
