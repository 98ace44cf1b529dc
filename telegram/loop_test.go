package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

type fetchStep struct {
	updates []tele.Update
	err     error
}

// scriptedClient serves one fetchStep per FetchUpdates call and cancels the
// loop once the script runs out.
type scriptedClient struct {
	steps   []fetchStep
	call    int
	offsets []int
	cancel  context.CancelFunc
}

func (c *scriptedClient) FetchUpdates(_ context.Context, offset int) ([]tele.Update, error) {
	c.offsets = append(c.offsets, offset)
	if c.call >= len(c.steps) {
		c.cancel()
		return nil, nil
	}
	step := c.steps[c.call]
	c.call++
	return step.updates, step.err
}

func (c *scriptedClient) SendText(context.Context, int64, string) error {
	return nil
}

func textUpdate(id int, chatID int64, text string) tele.Update {
	return tele.Update{
		ID:      id,
		Message: &tele.Message{Text: text, Chat: &tele.Chat{ID: chatID}},
	}
}

func runScripted(t *testing.T, steps []fetchStep, handler Handler) (*Loop, *scriptedClient) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &scriptedClient{steps: steps, cancel: cancel}
	loop := NewLoop(LoopOptions{
		Client:       client,
		Handler:      handler,
		FetchBackoff: time.Millisecond,
	})
	if err := loop.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	return loop, client
}

func TestLoopProcessesBatchInOrderAndAdvancesOffset(t *testing.T) {
	var got []string
	handler := func(_ context.Context, msg Inbound) error {
		got = append(got, msg.Text)
		return nil
	}

	loop, client := runScripted(t, []fetchStep{
		{updates: []tele.Update{
			textUpdate(10, 111, "first"),
			textUpdate(11, 111, "second"),
		}},
		{updates: []tele.Update{
			textUpdate(12, 222, "third"),
		}},
	}, handler)

	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("handled %d messages, expected %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("message %d = %q, expected %q", i, got[i], want[i])
		}
	}
	if loop.Offset() != 13 {
		t.Fatalf("offset = %d, expected 13", loop.Offset())
	}
	if client.offsets[0] != 0 || client.offsets[1] != 12 {
		t.Fatalf("fetch offsets = %v", client.offsets)
	}
}

func TestLoopKeepsOffsetOnFetchFailure(t *testing.T) {
	handler := func(context.Context, Inbound) error { return nil }

	loop, client := runScripted(t, []fetchStep{
		{updates: []tele.Update{textUpdate(5, 111, "ok")}},
		{err: errors.New("telegram unavailable")},
		{updates: []tele.Update{textUpdate(6, 111, "after retry")}},
	}, handler)

	// The failed fetch is retried with the same offset.
	wantOffsets := []int{0, 6, 6, 7}
	if len(client.offsets) != len(wantOffsets) {
		t.Fatalf("fetch offsets = %v, expected %v", client.offsets, wantOffsets)
	}
	for i, want := range wantOffsets {
		if client.offsets[i] != want {
			t.Fatalf("fetch offsets = %v, expected %v", client.offsets, wantOffsets)
		}
	}
	if loop.Offset() != 7 {
		t.Fatalf("offset = %d, expected 7", loop.Offset())
	}
}

func TestLoopSkipsMalformedUpdates(t *testing.T) {
	var handled int
	handler := func(context.Context, Inbound) error {
		handled++
		return nil
	}

	loop, _ := runScripted(t, []fetchStep{
		{updates: []tele.Update{
			{ID: 7}, // no payload
			textUpdate(8, 111, "fine"),
		}},
	}, handler)

	if handled != 1 {
		t.Fatalf("handled = %d, expected the malformed update to be skipped", handled)
	}
	if loop.Offset() != 9 {
		t.Fatalf("offset = %d, expected 9 (skipped updates are acknowledged)", loop.Offset())
	}
}

func TestLoopSurvivesHandlerErrors(t *testing.T) {
	handler := func(_ context.Context, msg Inbound) error {
		if msg.Text == "boom" {
			return errors.New("handler failure")
		}
		return nil
	}

	loop, _ := runScripted(t, []fetchStep{
		{updates: []tele.Update{
			textUpdate(1, 111, "boom"),
			textUpdate(2, 111, "still running"),
		}},
	}, handler)

	if loop.Offset() != 3 {
		t.Fatalf("offset = %d, expected 3", loop.Offset())
	}
}

func TestLoopStopsImmediatelyWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &scriptedClient{cancel: func() {}}
	loop := NewLoop(LoopOptions{
		Client:  client,
		Handler: func(context.Context, Inbound) error { return nil },
	})
	if err := loop.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(client.offsets) != 0 {
		t.Fatalf("fetches = %v, expected none after cancellation", client.offsets)
	}
}
