// Package bot implements the conversation state machine of the goal bot:
// per-chat sessions, command routing, account verification, and the
// dispatcher that turns inbound messages into store calls and replies.
package bot

import (
	"context"

	"github.com/m3rciful/goalbot/storage"
)

// Sender delivers outbound text messages. Satisfied by telegram.APIClient.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// TgUserStore persists chat-to-account links. Satisfied by storage.TgUserRepo.
type TgUserStore interface {
	GetOrCreateByChatID(ctx context.Context, chatID int64) (*storage.TgUser, bool, error)
	UpdateUsername(ctx context.Context, chatID int64, username string) error
	AssignVerificationCode(ctx context.Context, chatID int64, code string) error
	CodeInUse(ctx context.Context, code string) (bool, error)
}

// CategoryStore reads goal categories. Satisfied by storage.CategoryRepo.
type CategoryStore interface {
	ListVisible(ctx context.Context, userID int64) ([]storage.Category, error)
}

// GoalStore reads and creates goals. Satisfied by storage.GoalRepo.
type GoalStore interface {
	ListActive(ctx context.Context, userID int64) ([]storage.Goal, error)
	Create(ctx context.Context, userID, categoryID int64, title string) (*storage.Goal, error)
}
