package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"dayspend-server/src/budget"
	"dayspend-server/src/models"
)

func (s *Store) GetSettings(ctx context.Context, userID int, day string) (*models.BudgetSettings, error) {
	query := `
		SELECT id, user_id, day::text, daily_budget_limit, auto_savings_percent, auto_goals_percent, updated_at
		FROM budget_settings WHERE user_id = $1 AND day = $2::date
	`
	var bs models.BudgetSettings
	err := s.pool.QueryRow(ctx, query, userID, day).
		Scan(&bs.ID, &bs.UserID, &bs.Day, &bs.DailyBudgetLimit, &bs.AutoSavingsPercent, &bs.AutoGoalsPercent, &bs.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get budget settings")
	}
	return &bs, nil
}

// InsertSettings returns budget.ErrDuplicateDay when the (user_id, day)
// uniqueness constraint rejects the row; the engine uses that signal to
// resolve the creation race.
func (s *Store) InsertSettings(ctx context.Context, bs *models.BudgetSettings) error {
	query := `
		INSERT INTO budget_settings (user_id, day, daily_budget_limit, auto_savings_percent, auto_goals_percent, updated_at)
		VALUES ($1, $2::date, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.pool.QueryRow(ctx, query, bs.UserID, bs.Day, bs.DailyBudgetLimit, bs.AutoSavingsPercent, bs.AutoGoalsPercent, bs.UpdatedAt).
		Scan(&bs.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return budget.ErrDuplicateDay
		}
		return errors.Wrap(err, "insert budget settings")
	}
	return nil
}

func (s *Store) UpdateSettings(ctx context.Context, bs *models.BudgetSettings) error {
	query := `
		UPDATE budget_settings
		SET daily_budget_limit = $1, auto_savings_percent = $2, auto_goals_percent = $3, updated_at = NOW()
		WHERE user_id = $4 AND day = $5::date
	`
	cmd, err := s.pool.Exec(ctx, query, bs.DailyBudgetLimit, bs.AutoSavingsPercent, bs.AutoGoalsPercent, bs.UserID, bs.Day)
	if err != nil {
		return errors.Wrap(err, "update budget settings")
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("budget settings not found")
	}
	return nil
}
