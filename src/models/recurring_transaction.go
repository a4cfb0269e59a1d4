package models

// RecurringTransaction is a fixed monthly income or expense, not tied to a date.
// Amount is signed: negative = income, positive = expense.
type RecurringTransaction struct {
	ID     int     `json:"id"`
	UserID int     `json:"user_id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}
