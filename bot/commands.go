package bot

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/m3rciful/goalbot/core/logger"
	"github.com/m3rciful/goalbot/storage"
	"github.com/m3rciful/goalbot/telegram"
)

// CommandHandler runs a command for an already-linked user.
type CommandHandler func(ctx context.Context, msg telegram.Inbound, user *storage.TgUser) error

// Command is one registered bot command.
type Command struct {
	Name        string
	Description string
	Handler     CommandHandler
}

// Registry holds bot commands in registration order. Matching is by
// substring containment, so "/create" fires for "please /create" too;
// earlier registrations win when a message mentions several commands.
type Registry struct {
	ordered []Command
	byName  map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Command)}
}

// Register adds a command. Invalid or duplicate registrations are skipped
// with a log line.
func (r *Registry) Register(cmd Command) {
	if cmd.Name == "" || cmd.Handler == nil || cmd.Description == "" {
		logger.BOT.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", cmd.Name),
			slog.String("reason", "invalid"),
		)
		return
	}
	if cmd.Name[0] != '/' {
		logger.BOT.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", cmd.Name),
			slog.String("reason", "no_slash_prefix"),
		)
		return
	}
	if _, exists := r.byName[cmd.Name]; exists {
		logger.BOT.LogAttrs(context.Background(), slog.LevelWarn, "register.command.duplicate",
			slog.String("name", cmd.Name),
		)
		return
	}
	r.byName[cmd.Name] = cmd
	r.ordered = append(r.ordered, cmd)
}

// Match finds the first registered command whose name occurs anywhere in
// the text.
func (r *Registry) Match(text string) (Command, bool) {
	for _, cmd := range r.ordered {
		if strings.Contains(text, cmd.Name) {
			return cmd, true
		}
	}
	return Command{}, false
}

// List returns the registered commands sorted by name, for help output.
func (r *Registry) List() []Command {
	list := make([]Command, len(r.ordered))
	copy(list, r.ordered)
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}
