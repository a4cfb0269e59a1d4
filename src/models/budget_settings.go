package models

import "time"

// BudgetSettings is the per-user, per-day budget row. At most one row exists
// per (user_id, day); the storage layer enforces this with a unique constraint.
// DailyBudgetLimit is the base limit before auto-deductions are subtracted.
type BudgetSettings struct {
	ID                 int       `json:"id"`
	UserID             int       `json:"user_id"`
	Day                string    `json:"day"`
	DailyBudgetLimit   float64   `json:"daily_budget_limit"`
	AutoSavingsPercent float64   `json:"auto_savings_percent"`
	AutoGoalsPercent   float64   `json:"auto_goals_percent"`
	UpdatedAt          time.Time `json:"updated_at"`
}
