package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/goalbot/core/logger"
	"log/slog"
)

// GoalRepo persists goals.
type GoalRepo struct {
	db *sqlx.DB
}

// NewGoalRepo constructs a GoalRepo over the shared connection pool.
func NewGoalRepo(db *sqlx.DB) *GoalRepo {
	return &GoalRepo{db: db}
}

// ListActive returns the user's goals that are neither archived nor deleted,
// newest first.
func (r *GoalRepo) ListActive(ctx context.Context, userID int64) ([]Goal, error) {
	start := time.Now()

	var goals []Goal
	err := r.db.SelectContext(ctx, &goals, `
		SELECT *
		FROM goals
		WHERE user_id = $1
		  AND status <> $2
		  AND NOT is_deleted
		ORDER BY created DESC`, userID, GoalStatusArchived)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	logger.SVCGoals.Debug("goals listed",
		slog.String("event", "goal.list"),
		slog.Int64("user_id", userID),
		slog.Int("goals", len(goals)),
		slog.Duration("duration", logger.Took(start)),
	)
	return goals, nil
}

// Create inserts a goal with default status and priority.
func (r *GoalRepo) Create(ctx context.Context, userID, categoryID int64, title string) (*Goal, error) {
	start := time.Now()

	var g Goal
	err := r.db.GetContext(ctx, &g, `
		INSERT INTO goals (title, user_id, category_id, status, priority)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`,
		title, userID, categoryID, GoalStatusToDo, GoalPriorityMedium)
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}

	logger.SVCGoals.Info("goal created",
		slog.String("event", "goal.create"),
		slog.Int64("user_id", userID),
		slog.Int64("goal_id", g.ID),
		slog.Int64("category_id", categoryID),
		slog.Duration("duration", logger.Took(start)),
	)
	return &g, nil
}
