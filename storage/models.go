// Package storage implements the Postgres-backed repositories consumed by
// the bot: Telegram account links, goal categories, and goals.
package storage

import (
	"database/sql"
	"time"
)

// Goal status values as stored in goals.status.
const (
	GoalStatusToDo       = 1
	GoalStatusInProgress = 2
	GoalStatusDone       = 3
	GoalStatusArchived   = 4
)

// Goal priority values as stored in goals.priority.
const (
	GoalPriorityLow      = 1
	GoalPriorityMedium   = 2
	GoalPriorityHigh     = 3
	GoalPriorityCritical = 4
)

// Board participant roles.
const (
	BoardRoleOwner  = 1
	BoardRoleWriter = 2
	BoardRoleReader = 3
)

// TgUser links a Telegram chat to an application user.
// UserID stays NULL until the verification code is consumed in the web app.
type TgUser struct {
	ID               int64          `db:"id"`
	TgChatID         int64          `db:"tg_chat_id"`
	TgUsername       sql.NullString `db:"tg_username"`
	UserID           sql.NullInt64  `db:"user_id"`
	VerificationCode sql.NullString `db:"verification_code"`
	Created          time.Time      `db:"created"`
	Updated          time.Time      `db:"updated"`
}

// Linked reports whether the chat has an established application account.
func (u *TgUser) Linked() bool {
	return u.UserID.Valid
}

// Category is a goal category on a board.
type Category struct {
	ID        int64     `db:"id"`
	BoardID   int64     `db:"board_id"`
	Title     string    `db:"title"`
	UserID    int64     `db:"user_id"`
	IsDeleted bool      `db:"is_deleted"`
	Created   time.Time `db:"created"`
	Updated   time.Time `db:"updated"`
}

// Goal is a user goal, optionally attached to a category.
type Goal struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	UserID      int64          `db:"user_id"`
	CategoryID  sql.NullInt64  `db:"category_id"`
	Status      int            `db:"status"`
	Priority    int            `db:"priority"`
	DueDate     sql.NullTime   `db:"due_date"`
	IsDeleted   bool           `db:"is_deleted"`
	Created     time.Time      `db:"created"`
	Updated     time.Time      `db:"updated"`
}
