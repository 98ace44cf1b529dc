package bot

import (
	"context"
	"testing"

	"github.com/m3rciful/goalbot/storage"
	"github.com/m3rciful/goalbot/telegram"
)

func noopHandler(context.Context, telegram.Inbound, *storage.TgUser) error { return nil }

func TestRegistryMatchOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Command{Name: "/goals", Description: "a", Handler: noopHandler})
	reg.Register(Command{Name: "/create", Description: "b", Handler: noopHandler})

	cmd, ok := reg.Match("run /create and /goals")
	if !ok {
		t.Fatal("expected a match")
	}
	if cmd.Name != "/goals" {
		t.Fatalf("matched %s, expected the earlier registration to win", cmd.Name)
	}

	if _, ok := reg.Match("nothing here"); ok {
		t.Fatal("expected no match")
	}
}

func TestRegistrySkipsInvalidRegistrations(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Command{Name: "goals", Description: "no slash", Handler: noopHandler})
	reg.Register(Command{Name: "/ok", Description: "", Handler: noopHandler})
	reg.Register(Command{Name: "/ok", Description: "fine", Handler: nil})

	if got := len(reg.List()); got != 0 {
		t.Fatalf("registered %d commands, expected 0", got)
	}

	reg.Register(Command{Name: "/ok", Description: "fine", Handler: noopHandler})
	reg.Register(Command{Name: "/ok", Description: "duplicate", Handler: noopHandler})
	if got := len(reg.List()); got != 1 {
		t.Fatalf("registered %d commands, expected 1", got)
	}
}
