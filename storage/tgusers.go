package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/goalbot/core/logger"
	"log/slog"
)

// ErrCodeNotFound is returned when no chat carries the given verification code.
var ErrCodeNotFound = errors.New("storage: verification code not found")

// TgUserRepo persists Telegram chat links.
type TgUserRepo struct {
	db *sqlx.DB
}

// NewTgUserRepo constructs a TgUserRepo over the shared connection pool.
func NewTgUserRepo(db *sqlx.DB) *TgUserRepo {
	return &TgUserRepo{db: db}
}

// GetOrCreateByChatID returns the TgUser row for a chat, creating an empty
// (unlinked) one on first contact. The bool reports whether a row was created.
func (r *TgUserRepo) GetOrCreateByChatID(ctx context.Context, chatID int64) (*TgUser, bool, error) {
	start := time.Now()

	var u TgUser
	err := r.db.GetContext(ctx, &u, `SELECT * FROM tg_users WHERE tg_chat_id = $1`, chatID)
	if err == nil {
		return &u, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("get tg_user: %w", err)
	}

	err = r.db.GetContext(ctx, &u, `
		INSERT INTO tg_users (tg_chat_id)
		VALUES ($1)
		ON CONFLICT (tg_chat_id) DO UPDATE SET updated = now()
		RETURNING *`, chatID)
	if err != nil {
		return nil, false, fmt.Errorf("create tg_user: %w", err)
	}

	logger.SVCTgUsers.Info("tg user created",
		slog.String("event", "tg_user.create"),
		slog.Int64("chat_id", chatID),
		slog.Duration("duration", logger.Took(start)),
	)
	return &u, true, nil
}

// UpdateUsername stores the chat username observed on the latest message.
func (r *TgUserRepo) UpdateUsername(ctx context.Context, chatID int64, username string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tg_users SET tg_username = $2, updated = now() WHERE tg_chat_id = $1`,
		chatID, username)
	if err != nil {
		return fmt.Errorf("update tg_user username: %w", err)
	}
	return nil
}

// AssignVerificationCode overwrites the chat's verification code.
// A previous unused code is discarded.
func (r *TgUserRepo) AssignVerificationCode(ctx context.Context, chatID int64, code string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tg_users SET verification_code = $2, updated = now() WHERE tg_chat_id = $1`,
		chatID, code)
	if err != nil {
		return fmt.Errorf("assign verification code: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("assign verification code: chat %d not found", chatID)
	}
	logger.SVCTgUsers.Debug("verification code assigned",
		slog.String("event", "tg_user.assign_code"),
		slog.Int64("chat_id", chatID),
	)
	return nil
}

// CodeInUse reports whether any chat currently holds the given code.
func (r *TgUserRepo) CodeInUse(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM tg_users WHERE verification_code = $1)`, code)
	if err != nil {
		return false, fmt.Errorf("check verification code: %w", err)
	}
	return exists, nil
}

// LinkByCode consumes a verification code and attaches the application user
// to the chat that carries it. Called from the companion web application.
func (r *TgUserRepo) LinkByCode(ctx context.Context, code string, userID int64) (*TgUser, error) {
	var u TgUser
	err := r.db.GetContext(ctx, &u, `
		UPDATE tg_users
		SET user_id = $2, verification_code = NULL, updated = now()
		WHERE verification_code = $1
		RETURNING *`, code, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("link tg_user: %w", err)
	}

	logger.SVCTgUsers.Info("tg user linked",
		slog.String("event", "tg_user.link"),
		slog.Int64("chat_id", u.TgChatID),
		slog.Int64("user_id", userID),
	)
	return &u, nil
}
