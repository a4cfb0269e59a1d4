package budget

import (
	"context"
	"errors"
	"log"
	"time"

	"dayspend-server/src/models"
)

// Name tags for engine-generated savings-op transactions. At most one of each
// is created per user per day, by the caller that won the creation race.
const (
	AutoSavingsName = "Automatic savings"
	AutoGoalsName   = "Automatic goals"
)

// Engine derives the daily spending allowance from recurring cash flow,
// yesterday's leftover, same-day variable income and the auto savings/goal
// percents, and persists it exactly once per (user, day).
type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// EnsureAndGetTodayBudget makes sure today's budget settings exist (creating
// them and running the one-time auto-deduction side effects if this call wins
// the creation race), then returns the public view for today.
func (e *Engine) EnsureAndGetTodayBudget(ctx context.Context, userID int, loc *time.Location) (*models.DailyBudgetInfo, error) {
	if userID <= 0 {
		return nil, ErrNotAuthenticated
	}
	today := e.now().In(loc)
	if err := e.calculateDay(ctx, userID, today); err != nil {
		return nil, err
	}
	return e.buildInfo(ctx, userID, today)
}

// RefreshTodayBudget is an alias for EnsureAndGetTodayBudget; the recompute is
// idempotent, so refreshing is just calling it again.
func (e *Engine) RefreshTodayBudget(ctx context.Context, userID int, loc *time.Location) (*models.DailyBudgetInfo, error) {
	return e.EnsureAndGetTodayBudget(ctx, userID, loc)
}

// RecalculateForVariableIncome recomputes today's budget after the caller has
// persisted a new variable income transaction. The income is picked up
// naturally by the distribution step.
func (e *Engine) RecalculateForVariableIncome(ctx context.Context, userID int, loc *time.Location, incomeAmount float64) error {
	if userID <= 0 {
		return ErrNotAuthenticated
	}
	return e.calculateDay(ctx, userID, e.now().In(loc))
}

// SetAutoPercents updates today's sticky auto savings/goal percents and
// returns the refreshed view. The percents affect display and future days;
// today's auto transactions are never recreated.
func (e *Engine) SetAutoPercents(ctx context.Context, userID int, loc *time.Location, savingsPercent, goalsPercent float64) (*models.DailyBudgetInfo, error) {
	if userID <= 0 {
		return nil, ErrNotAuthenticated
	}
	if savingsPercent < 0 || savingsPercent > 100 || goalsPercent < 0 || goalsPercent > 100 {
		return nil, ErrInvalidPercent
	}
	today := e.now().In(loc)
	if err := e.calculateDay(ctx, userID, today); err != nil {
		return nil, err
	}
	setting, err := e.store.GetSettings(ctx, userID, FormatDay(today))
	if err != nil {
		return nil, &StorageError{Op: "load today settings", Err: err}
	}
	if setting == nil {
		return nil, &StorageError{Op: "load today settings", Err: errors.New("settings row missing after calculation")}
	}
	setting.AutoSavingsPercent = savingsPercent
	setting.AutoGoalsPercent = goalsPercent
	setting.UpdatedAt = e.now()
	if err := e.store.UpdateSettings(ctx, setting); err != nil {
		return nil, &StorageError{Op: "update auto percents", Err: err}
	}
	return e.buildInfo(ctx, userID, today)
}

// calculateDay is the single-winner ensure step. Every caller recomputes and
// overwrites the base limit and percents (idempotent re-derivations); only the
// caller whose INSERT succeeds runs the side effects.
func (e *Engine) calculateDay(ctx context.Context, userID int, today time.Time) error {
	day := FormatDay(today)
	daysInMonth := DaysInMonth(today)
	remainingDays := RemainingDaysInclToday(today)

	todaySetting, err := e.store.GetSettings(ctx, userID, day)
	if err != nil {
		return &StorageError{Op: "load today settings", Err: err}
	}
	isNewDay := todaySetting == nil

	recurring, err := e.store.ListRecurring(ctx, userID)
	if err != nil {
		return &StorageError{Op: "load recurring transactions", Err: err}
	}
	amounts := make([]float64, 0, len(recurring))
	for _, r := range recurring {
		amounts = append(amounts, r.Amount)
	}
	baseFromFixed := BaseFromRecurring(amounts, daysInMonth)

	var yesterdaySetting *models.BudgetSettings
	if yesterday := YesterdayDay(today); yesterday != "" {
		yesterdaySetting, err = e.store.GetSettings(ctx, userID, yesterday)
		if err != nil {
			return &StorageError{Op: "load yesterday settings", Err: err}
		}
	}

	// Carryover only applies when yesterday has a settings row; otherwise the
	// base reverts to the even recurring share.
	newBaseBeforeAutos := baseFromFixed
	if yesterdaySetting != nil {
		yTx, err := e.store.ListTransactionsOn(ctx, userID, YesterdayDay(today))
		if err != nil {
			return &StorageError{Op: "load yesterday transactions", Err: err}
		}
		var spentYesterday float64
		for _, t := range yTx {
			// Expenses only, savings ops included: auto deductions count as spent.
			if t.Amount > 0 {
				spentYesterday += t.Amount
			}
		}
		leftover := LeftoverContribution(yesterdaySetting.DailyBudgetLimit, spentYesterday, remainingDays)
		newBaseBeforeAutos = yesterdaySetting.DailyBudgetLimit + leftover
	}

	// Percents are sticky once set for the day; a brand-new day seeds them
	// from yesterday, defaulting to 0 when there is no history at all.
	var autoSavingsPercent, autoGoalsPercent float64
	if !isNewDay {
		autoSavingsPercent = todaySetting.AutoSavingsPercent
		autoGoalsPercent = todaySetting.AutoGoalsPercent
	} else if yesterdaySetting != nil {
		autoSavingsPercent = yesterdaySetting.AutoSavingsPercent
		autoGoalsPercent = yesterdaySetting.AutoGoalsPercent
	}

	// Auto amounts apply to the pre-income base: a same-day windfall must not
	// inflate the automatic deductions.
	autoSavingsAmount := RoundUpToCents(newBaseBeforeAutos * (autoSavingsPercent / 100))
	autoGoalsAmount := RoundUpToCents(newBaseBeforeAutos * (autoGoalsPercent / 100))

	todayTx, err := e.store.ListTransactionsOn(ctx, userID, day)
	if err != nil {
		return &StorageError{Op: "load today transactions", Err: err}
	}
	var incomesToday float64
	for _, t := range todayTx {
		if t.Amount < 0 && !t.IsSavingsOp {
			incomesToday += t.Amount
		}
	}
	baseAfterIncomes := newBaseBeforeAutos + IncomeDistribution(incomesToday, remainingDays)

	setting := &models.BudgetSettings{
		UserID:             userID,
		Day:                day,
		DailyBudgetLimit:   baseAfterIncomes,
		AutoSavingsPercent: autoSavingsPercent,
		AutoGoalsPercent:   autoGoalsPercent,
		UpdatedAt:          e.now(),
	}

	createdNewDay := false
	if isNewDay {
		switch err := e.store.InsertSettings(ctx, setting); {
		case err == nil:
			createdNewDay = true
		case errors.Is(err, ErrDuplicateDay):
			// A concurrent caller won the race. Refresh the row and skip the
			// side effects below.
			if err := e.store.UpdateSettings(ctx, setting); err != nil {
				return &StorageError{Op: "update settings after duplicate insert", Err: err}
			}
		default:
			return &StorageError{Op: "insert settings", Err: err}
		}
	} else {
		if err := e.store.UpdateSettings(ctx, setting); err != nil {
			return &StorageError{Op: "update settings", Err: err}
		}
	}

	if !createdNewDay {
		return nil
	}

	if err := e.createAutoTransactions(ctx, userID, day, autoSavingsAmount, autoGoalsAmount); err != nil {
		return err
	}

	// Allocate from the persisted auto-goals amount, not the in-memory one,
	// to stay robust against any rounding applied during insert.
	persistedGoalsAmount, err := e.persistedAutoAmount(ctx, userID, day, AutoGoalsName)
	if err != nil {
		return err
	}
	if persistedGoalsAmount > 0 {
		if err := e.AllocateAutoGoals(ctx, userID, persistedGoalsAmount); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) createAutoTransactions(ctx context.Context, userID int, day string, autoSavingsAmount, autoGoalsAmount float64) error {
	if autoSavingsAmount > 0 {
		t := &models.Transaction{
			UserID:          userID,
			Name:            AutoSavingsName,
			Amount:          autoSavingsAmount,
			TransactionDate: day,
			IsSavingsOp:     true,
		}
		if err := e.store.InsertTransaction(ctx, t); err != nil {
			return &StorageError{Op: "insert auto savings transaction", Err: err}
		}
		log.Printf("INFO: Created auto savings transaction of %.2f for user %d on %s", autoSavingsAmount, userID, day)
	}
	if autoGoalsAmount > 0 {
		t := &models.Transaction{
			UserID:          userID,
			Name:            AutoGoalsName,
			Amount:          autoGoalsAmount,
			TransactionDate: day,
			IsSavingsOp:     true,
		}
		if err := e.store.InsertTransaction(ctx, t); err != nil {
			return &StorageError{Op: "insert auto goals transaction", Err: err}
		}
		log.Printf("INFO: Created auto goals transaction of %.2f for user %d on %s", autoGoalsAmount, userID, day)
	}
	return nil
}

func (e *Engine) persistedAutoAmount(ctx context.Context, userID int, day, name string) (float64, error) {
	tx, err := e.store.ListTransactionsOn(ctx, userID, day)
	if err != nil {
		return 0, &StorageError{Op: "load auto transactions", Err: err}
	}
	var sum float64
	for _, t := range tx {
		if t.IsSavingsOp && t.Name == name {
			sum += t.Amount
		}
	}
	return sum, nil
}

// buildInfo derives the public view from stored rows only.
func (e *Engine) buildInfo(ctx context.Context, userID int, today time.Time) (*models.DailyBudgetInfo, error) {
	day := FormatDay(today)

	setting, err := e.store.GetSettings(ctx, userID, day)
	if err != nil {
		return nil, &StorageError{Op: "load today settings", Err: err}
	}
	if setting == nil {
		return nil, &StorageError{Op: "load today settings", Err: errors.New("settings row missing after calculation")}
	}

	todayTx, err := e.store.ListTransactionsOn(ctx, userID, day)
	if err != nil {
		return nil, &StorageError{Op: "load today transactions", Err: err}
	}
	var autoSavingsAmount, autoGoalsAmount, todaysExpenses float64
	for _, t := range todayTx {
		switch {
		case t.IsSavingsOp && t.Name == AutoSavingsName:
			autoSavingsAmount += t.Amount
		case t.IsSavingsOp && t.Name == AutoGoalsName:
			autoGoalsAmount += t.Amount
		}
		if !t.IsSavingsOp && t.Amount > 0 {
			todaysExpenses += t.Amount
		}
	}
	dailyBudgetLimit := setting.DailyBudgetLimit - autoSavingsAmount - autoGoalsAmount

	recurring, err := e.store.ListRecurring(ctx, userID)
	if err != nil {
		return nil, &StorageError{Op: "load recurring transactions", Err: err}
	}
	var recurringSum float64
	for _, r := range recurring {
		recurringSum += r.Amount
	}
	monthlyNetAvailable := -recurringSum

	monthTx, err := e.store.ListTransactionsBetween(ctx, userID, MonthStart(today), day)
	if err != nil {
		return nil, &StorageError{Op: "load month transactions", Err: err}
	}
	var variableIncomesMTD, autoSavingsMonthSum, autoGoalsMonthSum float64
	for _, t := range monthTx {
		switch {
		case !t.IsSavingsOp && t.Amount < 0:
			variableIncomesMTD += -t.Amount
		case t.IsSavingsOp && t.Name == AutoSavingsName:
			autoSavingsMonthSum += t.Amount
		case t.IsSavingsOp && t.Name == AutoGoalsName:
			autoGoalsMonthSum += t.Amount
		}
	}

	return &models.DailyBudgetInfo{
		DailyBudgetLimit:     dailyBudgetLimit,
		DailyBudgetLeft:      dailyBudgetLimit - todaysExpenses,
		TodaysExpenses:       todaysExpenses,
		DaysRemaining:        RemainingDaysInclToday(today),
		TotalAvailableIncome: monthlyNetAvailable + variableIncomesMTD,
		Date:                 day,
		AutoSavingsAmount:    autoSavingsAmount,
		AutoGoalsAmount:      autoGoalsAmount,
		AutoSavingsPercent:   setting.AutoSavingsPercent,
		AutoGoalsPercent:     setting.AutoGoalsPercent,
		AutoSavingsMonthSum:  autoSavingsMonthSum,
		AutoGoalsMonthSum:    autoGoalsMonthSum,
	}, nil
}
