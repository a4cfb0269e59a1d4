package budget

import (
	"context"

	"dayspend-server/src/models"
)

// Store is the storage accessor the engine computes against. All operations
// are scoped to the given user id. Implementations must enforce a uniqueness
// constraint on (user_id, day) for budget settings and report violations from
// InsertSettings as ErrDuplicateDay; that constraint is the single source of
// truth for which concurrent caller created the day.
type Store interface {
	// GetSettings returns nil, nil when no row exists for the day.
	GetSettings(ctx context.Context, userID int, day string) (*models.BudgetSettings, error)
	InsertSettings(ctx context.Context, s *models.BudgetSettings) error
	UpdateSettings(ctx context.Context, s *models.BudgetSettings) error

	ListRecurring(ctx context.Context, userID int) ([]models.RecurringTransaction, error)

	ListTransactionsOn(ctx context.Context, userID int, day string) ([]models.Transaction, error)
	ListTransactionsBetween(ctx context.Context, userID int, fromDay, toDay string) ([]models.Transaction, error)
	InsertTransaction(ctx context.Context, t *models.Transaction) error

	// ListSelectedGoals returns the currently selected goals with a positive
	// auto-savings percent, ordered by that percent descending.
	ListSelectedGoals(ctx context.Context, userID int) ([]models.Goal, error)
	UpdateGoalAmount(ctx context.Context, userID, goalID int, newAmount float64) error
}
