package models

import "time"

type Goal struct {
	ID                  int       `json:"id"`
	UserID              int       `json:"user_id"`
	Name                string    `json:"name"`
	TargetAmount        float64   `json:"target_amount"`
	CurrentAmount       float64   `json:"current_amount"`
	AutoSavingsPercent  float64   `json:"auto_savings_percent"`
	IsCurrentlySelected bool      `json:"is_currently_selected"`
	CreatedAt           time.Time `json:"created_at"`
}
