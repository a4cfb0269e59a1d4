package models

// DailyBudgetInfo is the public view returned to clients. DailyBudgetLimit is
// the persisted base net of today's actual automatic deductions, recomputed
// from the stored savings-op transactions rather than in-memory amounts.
type DailyBudgetInfo struct {
	DailyBudgetLimit     float64 `json:"daily_budget_limit"`
	DailyBudgetLeft      float64 `json:"daily_budget_left"`
	TodaysExpenses       float64 `json:"todays_expenses"`
	DaysRemaining        int     `json:"days_remaining"`
	TotalAvailableIncome float64 `json:"total_available_income"`
	Date                 string  `json:"date"`
	AutoSavingsAmount    float64 `json:"auto_savings_amount"`
	AutoGoalsAmount      float64 `json:"auto_goals_amount"`
	AutoSavingsPercent   float64 `json:"auto_savings_percent"`
	AutoGoalsPercent     float64 `json:"auto_goals_percent"`
	AutoSavingsMonthSum  float64 `json:"auto_savings_month_sum"`
	AutoGoalsMonthSum    float64 `json:"auto_goals_month_sum"`
}
