package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"dayspend-server/src/models"
)

const goalColumns = `id, user_id, name, target_amount, current_amount, auto_savings_percent, is_currently_selected, created_at`

func scanGoals(rows pgx.Rows) ([]models.Goal, error) {
	defer rows.Close()
	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.AutoSavingsPercent, &g.IsCurrentlySelected, &g.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan goal")
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "read goals")
	}
	return goals, nil
}

// ListSelectedGoals feeds the goal allocator: selected goals with a positive
// auto-savings percent, ordered by percent descending for deterministic
// iteration.
func (s *Store) ListSelectedGoals(ctx context.Context, userID int) ([]models.Goal, error) {
	if cached, ok := s.cache.GetSelectedGoals(userID); ok {
		if goals, ok := cached.([]models.Goal); ok {
			return goals, nil
		}
	}

	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1 AND is_currently_selected = TRUE AND auto_savings_percent > 0
		ORDER BY auto_savings_percent DESC, id
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list selected goals")
	}
	goals, err := scanGoals(rows)
	if err != nil {
		return nil, err
	}
	s.cache.SetSelectedGoals(userID, goals)
	return goals, nil
}

func (s *Store) ListGoals(ctx context.Context, userID int) ([]models.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list goals")
	}
	return scanGoals(rows)
}

func (s *Store) GetGoalByID(ctx context.Context, userID, goalID int) (*models.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals WHERE id = $1 AND user_id = $2
	`
	var g models.Goal
	err := s.pool.QueryRow(ctx, query, goalID, userID).
		Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.AutoSavingsPercent, &g.IsCurrentlySelected, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get goal")
	}
	return &g, nil
}

func (s *Store) CreateGoal(ctx context.Context, g *models.Goal) error {
	query := `
		INSERT INTO goals (user_id, name, target_amount, current_amount, auto_savings_percent, is_currently_selected)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := s.pool.QueryRow(ctx, query, g.UserID, g.Name, g.TargetAmount, g.CurrentAmount, g.AutoSavingsPercent, g.IsCurrentlySelected).
		Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "create goal")
	}
	s.cache.InvalidateSelectedGoals(g.UserID)
	return nil
}

func (s *Store) UpdateGoal(ctx context.Context, g *models.Goal) error {
	query := `
		UPDATE goals
		SET name = $1, target_amount = $2, auto_savings_percent = $3, is_currently_selected = $4
		WHERE id = $5 AND user_id = $6
	`
	cmd, err := s.pool.Exec(ctx, query, g.Name, g.TargetAmount, g.AutoSavingsPercent, g.IsCurrentlySelected, g.ID, g.UserID)
	if err != nil {
		return errors.Wrap(err, "update goal")
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("goal not found")
	}
	s.cache.InvalidateSelectedGoals(g.UserID)
	return nil
}

func (s *Store) UpdateGoalAmount(ctx context.Context, userID, goalID int, newAmount float64) error {
	query := `
		UPDATE goals SET current_amount = $1
		WHERE id = $2 AND user_id = $3
	`
	cmd, err := s.pool.Exec(ctx, query, newAmount, goalID, userID)
	if err != nil {
		return errors.Wrap(err, "update goal amount")
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("goal not found")
	}
	s.cache.InvalidateSelectedGoals(userID)
	return nil
}

// SelectDashboardGoal marks a single goal as the one shown on the dashboard.
// This is the UI's singular selection and is separate from the allocator's
// multi-goal selection semantics.
func (s *Store) SelectDashboardGoal(ctx context.Context, userID, goalID int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE goals SET is_currently_selected = FALSE WHERE user_id = $1 AND is_currently_selected = TRUE`,
		userID)
	if err != nil {
		return errors.Wrap(err, "unselect goals")
	}
	cmd, err := s.pool.Exec(ctx,
		`UPDATE goals SET is_currently_selected = TRUE WHERE id = $1 AND user_id = $2`,
		goalID, userID)
	if err != nil {
		return errors.Wrap(err, "select goal")
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("goal not found")
	}
	s.cache.InvalidateSelectedGoals(userID)
	return nil
}

func (s *Store) DeleteGoal(ctx context.Context, userID, goalID int) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if err != nil {
		return errors.Wrap(err, "delete goal")
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("goal not found")
	}
	s.cache.InvalidateSelectedGoals(userID)
	return nil
}
