package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/goalbot/core/logger"
	"github.com/m3rciful/goalbot/storage"
	"github.com/m3rciful/goalbot/telegram"
)

const cancelKeyword = "/cancel"

// Options wire the dispatcher to its collaborators.
type Options struct {
	Sender     Sender
	TgUsers    TgUserStore
	Categories CategoryStore
	Goals      GoalStore
	// WebAppURL, when set, is prepended to the link sent after a goal is
	// created.
	WebAppURL string
}

// Dispatcher drives the per-chat conversation: verification for unlinked
// chats, command routing for linked ones, and the goal-creation dialog.
// It owns the session store; nothing else mutates dialog state.
type Dispatcher struct {
	sender     Sender
	tgUsers    TgUserStore
	categories CategoryStore
	goals      GoalStore
	sessions   *SessionStore
	codes      *CodeIssuer
	registry   *Registry
	webAppURL  string
}

func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		sender:     opts.Sender,
		tgUsers:    opts.TgUsers,
		categories: opts.Categories,
		goals:      opts.Goals,
		sessions:   NewSessionStore(),
		codes:      NewCodeIssuer(opts.TgUsers),
		registry:   NewRegistry(),
		webAppURL:  opts.WebAppURL,
	}
	d.registry.Register(Command{Name: "/goals", Description: "list your active goals", Handler: d.cmdGoals})
	d.registry.Register(Command{Name: "/create", Description: "create a new goal", Handler: d.cmdCreate})
	d.registry.Register(Command{Name: "/cancel", Description: "cancel the current operation", Handler: d.cmdCancel})
	return d
}

// Sessions exposes the dialog store for tests.
func (d *Dispatcher) Sessions() *SessionStore {
	return d.sessions
}

// Handle processes one decoded inbound message. It satisfies
// telegram.Handler.
func (d *Dispatcher) Handle(ctx context.Context, msg telegram.Inbound) error {
	user, created, err := d.tgUsers.GetOrCreateByChatID(ctx, msg.ChatID)
	if err != nil {
		return fmt.Errorf("load tg user for chat %d: %w", msg.ChatID, err)
	}
	if created {
		logger.Info(ctx, "bot", "chat.first_contact",
			slog.Int64("chat_id", msg.ChatID),
		)
	}

	if msg.Username != "" && (!user.TgUsername.Valid || user.TgUsername.String != msg.Username) {
		if err := d.tgUsers.UpdateUsername(ctx, msg.ChatID, msg.Username); err != nil {
			logger.Warn(ctx, "bot", "chat.username_update",
				slog.String("status", "fail"),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
	}

	if !user.Linked() {
		return d.handleUnlinked(logger.WithHandler(ctx, "verify"), msg)
	}

	userID := user.UserID.Int64
	ctx = logger.WithUpdateMeta(ctx, msg.UpdateID, userID, msg.ChatID)

	if sess, ok := d.sessions.Get(msg.ChatID); ok {
		if strings.Contains(msg.Text, cancelKeyword) {
			return d.cancel(logger.WithHandler(ctx, "/cancel"), msg.ChatID)
		}
		switch sess.State() {
		case StateAwaitingCategory:
			return d.selectCategory(logger.WithHandler(ctx, "category"), msg, sess)
		case StateAwaitingTitle:
			return d.captureTitle(logger.WithHandler(ctx, "title"), msg, sess)
		}
	}

	if cmd, ok := d.registry.Match(msg.Text); ok {
		return cmd.Handler(logger.WithHandler(ctx, cmd.Name), msg, user)
	}

	logger.Debug(ctx, "bot", "command.unknown",
		slog.String("payload", logger.SanitizeLimit(msg.Text, 128)),
	)
	return d.sender.SendText(ctx, msg.ChatID, unknownCommandText(d.registry))
}

// handleUnlinked greets the chat and hands out a fresh verification code.
// A new code is issued on every message until the account is linked through
// the web application.
func (d *Dispatcher) handleUnlinked(ctx context.Context, msg telegram.Inbound) error {
	if err := d.sender.SendText(ctx, msg.ChatID, textGreeting); err != nil {
		return err
	}

	code, err := d.codes.Issue(ctx, msg.ChatID)
	if err != nil {
		return fmt.Errorf("issue verification code for chat %d: %w", msg.ChatID, err)
	}
	logger.Info(ctx, "bot", "verify.code_issued",
		slog.Int64("chat_id", msg.ChatID),
	)
	return d.sender.SendText(ctx, msg.ChatID, verificationText(code))
}

func (d *Dispatcher) cmdGoals(ctx context.Context, msg telegram.Inbound, user *storage.TgUser) error {
	goals, err := d.goals.ListActive(ctx, user.UserID.Int64)
	if err != nil {
		return fmt.Errorf("list goals: %w", err)
	}
	logger.Info(ctx, "bot", "goals.list",
		slog.Int("goals", len(goals)),
	)

	if len(goals) == 0 {
		return d.sender.SendText(ctx, msg.ChatID, textNoGoals)
	}
	for _, g := range goals {
		if err := d.sender.SendText(ctx, msg.ChatID, g.Title); err != nil {
			return err
		}
	}
	return d.sender.SendText(ctx, msg.ChatID, textGoalsTrailer)
}

func (d *Dispatcher) cmdCreate(ctx context.Context, msg telegram.Inbound, user *storage.TgUser) error {
	cats, err := d.categories.ListVisible(ctx, user.UserID.Int64)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	if len(cats) == 0 {
		return d.sender.SendText(ctx, msg.ChatID, textNoCategories)
	}

	options := make([]CategoryOption, len(cats))
	for i, c := range cats {
		options[i] = CategoryOption{Ordinal: i + 1, ID: c.ID, Title: c.Title}
	}

	if err := d.sessions.Begin(msg.ChatID, user.UserID.Int64, options); err != nil {
		if errors.Is(err, ErrAlreadyInProgress) {
			logger.Info(ctx, "bot", "session.already_in_progress",
				slog.Int64("chat_id", msg.ChatID),
			)
			return nil
		}
		return err
	}
	logger.Info(ctx, "bot", "session.begin",
		slog.String("state", string(StateAwaitingCategory)),
		slog.Int("categories", len(options)),
	)
	return d.sender.SendText(ctx, msg.ChatID, categoriesPromptText(options))
}

func (d *Dispatcher) cmdCancel(ctx context.Context, msg telegram.Inbound, _ *storage.TgUser) error {
	return d.cancel(ctx, msg.ChatID)
}

// cancel clears the chat's dialog, if any, and always confirms.
func (d *Dispatcher) cancel(ctx context.Context, chatID int64) error {
	d.sessions.Cancel(chatID)
	logger.Info(ctx, "bot", "session.cancel",
		slog.Int64("chat_id", chatID),
	)
	return d.sender.SendText(ctx, chatID, textCancelled)
}

// selectCategory resolves the reply against the listing snapshot carried by
// the session. Anything that is not a listed ordinal or an exact title
// leaves the dialog untouched.
func (d *Dispatcher) selectCategory(ctx context.Context, msg telegram.Inbound, sess Session) error {
	choice, ok := resolveCategory(sess.Categories, msg.Text)
	if !ok {
		logger.Debug(ctx, "bot", "category.invalid",
			slog.String("payload", logger.SanitizeLimit(msg.Text, 128)),
		)
		return d.sender.SendText(ctx, msg.ChatID, textInvalidCategory)
	}

	if err := d.sessions.SetCategory(msg.ChatID, choice); err != nil {
		return fmt.Errorf("set category for chat %d: %w", msg.ChatID, err)
	}
	logger.Info(ctx, "bot", "session.category",
		slog.Int64("category_id", choice.ID),
		slog.String("state", string(StateAwaitingTitle)),
	)
	return d.sender.SendText(ctx, msg.ChatID, categorySelectedText(choice.Title))
}

// captureTitle persists the goal and only then closes the dialog, so a
// storage failure leaves the session open for another attempt.
func (d *Dispatcher) captureTitle(ctx context.Context, msg telegram.Inbound, sess Session) error {
	title := strings.TrimSpace(msg.Text)
	if title == "" {
		return d.sender.SendText(ctx, msg.ChatID, textEmptyTitle)
	}

	goal, err := d.goals.Create(ctx, sess.UserID, sess.CategoryID, title)
	if err != nil {
		if sendErr := d.sender.SendText(ctx, msg.ChatID, textCreateFailed); sendErr != nil {
			logger.Warn(ctx, "bot", "goal.create_notify",
				slog.String("status", "fail"),
				slog.String("err", logger.SanitizeLimit(sendErr.Error(), 256)),
			)
		}
		return fmt.Errorf("create goal for chat %d: %w", msg.ChatID, err)
	}

	if _, err := d.sessions.Complete(msg.ChatID, title); err != nil {
		logger.Warn(ctx, "bot", "session.complete",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	logger.Info(ctx, "bot", "goal.created",
		slog.Int64("goal_id", goal.ID),
		slog.Int64("category_id", sess.CategoryID),
	)
	return d.sender.SendText(ctx, msg.ChatID, goalCreatedText(goal.Title, goal.ID, d.webAppURL))
}

// resolveCategory matches user input against the listing the user was
// shown: the printed ordinal or the exact title.
func resolveCategory(options []CategoryOption, input string) (CategoryOption, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return CategoryOption{}, false
	}
	if n, err := strconv.Atoi(input); err == nil {
		for _, opt := range options {
			if opt.Ordinal == n {
				return opt, true
			}
		}
		return CategoryOption{}, false
	}
	for _, opt := range options {
		if opt.Title == input {
			return opt, true
		}
	}
	return CategoryOption{}, false
}
