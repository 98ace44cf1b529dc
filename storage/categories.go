package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/goalbot/core/logger"
	"log/slog"
)

// CategoryRepo reads goal categories.
type CategoryRepo struct {
	db *sqlx.DB
}

// NewCategoryRepo constructs a CategoryRepo over the shared connection pool.
func NewCategoryRepo(db *sqlx.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// ListVisible returns the non-deleted categories on boards where the user
// participates, ordered by title for stable numbered listings.
func (r *CategoryRepo) ListVisible(ctx context.Context, userID int64) ([]Category, error) {
	start := time.Now()

	var cats []Category
	err := r.db.SelectContext(ctx, &cats, `
		SELECT c.*
		FROM goal_categories c
		JOIN board_participants p ON p.board_id = c.board_id
		WHERE p.user_id = $1
		  AND NOT c.is_deleted
		ORDER BY c.title, c.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	logger.SVCCategories.Debug("categories listed",
		slog.String("event", "category.list"),
		slog.Int64("user_id", userID),
		slog.Int("categories", len(cats)),
		slog.Duration("duration", logger.Took(start)),
	)
	return cats, nil
}
