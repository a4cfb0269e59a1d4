package models

import "time"

// Transaction is a one-off income or expense tied to a calendar day.
// Amount is signed: negative = income, positive = expense.
// IsSavingsOp marks engine-generated savings/goal deposits.
type Transaction struct {
	ID              int       `json:"id"`
	UserID          int       `json:"user_id"`
	Name            string    `json:"name"`
	Amount          float64   `json:"amount"`
	TransactionDate string    `json:"transaction_date"`
	IsSavingsOp     bool      `json:"is_savings_op"`
	CreatedAt       time.Time `json:"created_at"`
}
