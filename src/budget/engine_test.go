package budget

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dayspend-server/src/models"
)

// memStore is an in-memory Store with the same uniqueness semantics as the
// Postgres schema: InsertSettings is atomic and rejects a second row for the
// same (user, day) with ErrDuplicateDay.
type memStore struct {
	mu           sync.Mutex
	settings     map[string]*models.BudgetSettings
	recurring    map[int][]models.RecurringTransaction
	transactions []models.Transaction
	goals        []models.Goal
	nextID       int

	errOn          map[string]error // method name -> injected error
	goalUpdateErrs map[int]error    // goal id -> injected error
}

func newMemStore() *memStore {
	return &memStore{
		settings:       make(map[string]*models.BudgetSettings),
		recurring:      make(map[int][]models.RecurringTransaction),
		errOn:          make(map[string]error),
		goalUpdateErrs: make(map[int]error),
	}
}

func settingsKey(userID int, day string) string {
	return fmt.Sprintf("%d|%s", userID, day)
}

func (m *memStore) GetSettings(_ context.Context, userID int, day string) (*models.BudgetSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errOn["GetSettings"]; err != nil {
		return nil, err
	}
	s, ok := m.settings[settingsKey(userID, day)]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) InsertSettings(_ context.Context, s *models.BudgetSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errOn["InsertSettings"]; err != nil {
		return err
	}
	key := settingsKey(s.UserID, s.Day)
	if _, exists := m.settings[key]; exists {
		return ErrDuplicateDay
	}
	m.nextID++
	s.ID = m.nextID
	cp := *s
	m.settings[key] = &cp
	return nil
}

func (m *memStore) UpdateSettings(_ context.Context, s *models.BudgetSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errOn["UpdateSettings"]; err != nil {
		return err
	}
	key := settingsKey(s.UserID, s.Day)
	existing, ok := m.settings[key]
	if !ok {
		return fmt.Errorf("budget settings not found")
	}
	existing.DailyBudgetLimit = s.DailyBudgetLimit
	existing.AutoSavingsPercent = s.AutoSavingsPercent
	existing.AutoGoalsPercent = s.AutoGoalsPercent
	existing.UpdatedAt = s.UpdatedAt
	return nil
}

func (m *memStore) ListRecurring(_ context.Context, userID int) ([]models.RecurringTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errOn["ListRecurring"]; err != nil {
		return nil, err
	}
	return append([]models.RecurringTransaction(nil), m.recurring[userID]...), nil
}

func (m *memStore) ListTransactionsOn(_ context.Context, userID int, day string) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errOn["ListTransactionsOn"]; err != nil {
		return nil, err
	}
	var out []models.Transaction
	for _, t := range m.transactions {
		if t.UserID == userID && t.TransactionDate == day {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) ListTransactionsBetween(_ context.Context, userID int, fromDay, toDay string) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errOn["ListTransactionsBetween"]; err != nil {
		return nil, err
	}
	var out []models.Transaction
	for _, t := range m.transactions {
		if t.UserID == userID && t.TransactionDate >= fromDay && t.TransactionDate <= toDay {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) InsertTransaction(_ context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errOn["InsertTransaction"]; err != nil {
		return err
	}
	m.nextID++
	t.ID = m.nextID
	m.transactions = append(m.transactions, *t)
	return nil
}

func (m *memStore) ListSelectedGoals(_ context.Context, userID int) ([]models.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errOn["ListSelectedGoals"]; err != nil {
		return nil, err
	}
	var out []models.Goal
	for _, g := range m.goals {
		if g.UserID == userID && g.IsCurrentlySelected && g.AutoSavingsPercent > 0 {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AutoSavingsPercent != out[j].AutoSavingsPercent {
			return out[i].AutoSavingsPercent > out[j].AutoSavingsPercent
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memStore) UpdateGoalAmount(_ context.Context, userID, goalID int, newAmount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.goalUpdateErrs[goalID]; err != nil {
		return err
	}
	for i := range m.goals {
		if m.goals[i].ID == goalID && m.goals[i].UserID == userID {
			m.goals[i].CurrentAmount = newAmount
			return nil
		}
	}
	return fmt.Errorf("goal not found")
}

func (m *memStore) countTransactions(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.transactions {
		if t.Name == name {
			n++
		}
	}
	return n
}

func (m *memStore) addTransaction(userID int, name string, amount float64, day string, savingsOp bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.transactions = append(m.transactions, models.Transaction{
		ID:              m.nextID,
		UserID:          userID,
		Name:            name,
		Amount:          amount,
		TransactionDate: day,
		IsSavingsOp:     savingsOp,
	})
}

func (m *memStore) addSettings(userID int, day string, limit, savingsPct, goalsPct float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.settings[settingsKey(userID, day)] = &models.BudgetSettings{
		ID:                 m.nextID,
		UserID:             userID,
		Day:                day,
		DailyBudgetLimit:   limit,
		AutoSavingsPercent: savingsPct,
		AutoGoalsPercent:   goalsPct,
	}
}

func newTestEngine(store Store, at time.Time) *Engine {
	e := NewEngine(store)
	e.now = func() time.Time { return at }
	return e
}

const testUser = 1

func seedNetIncome1800(store *memStore) {
	store.recurring[testUser] = []models.RecurringTransaction{
		{ID: 1, UserID: testUser, Name: "Salary", Amount: -3000},
		{ID: 2, UserID: testUser, Name: "Rent", Amount: 1200},
	}
}

func TestEnsureRequiresResolvedUser(t *testing.T) {
	engine := newTestEngine(newMemStore(), time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	_, err := engine.EnsureAndGetTodayBudget(context.Background(), 0, time.UTC)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestFirstDayNoHistory(t *testing.T) {
	store := newMemStore()
	seedNetIncome1800(store)
	// June 2025 has 30 days; net 1800/month gives an even 60/day share.
	engine := newTestEngine(store, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	info, err := engine.EnsureAndGetTodayBudget(context.Background(), testUser, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "2025-06-01", info.Date)
	assert.Equal(t, 30, info.DaysRemaining)
	assert.Equal(t, 60.0, info.DailyBudgetLimit)
	assert.Equal(t, 60.0, info.DailyBudgetLeft)
	assert.Equal(t, 0.0, info.TodaysExpenses)
	assert.Equal(t, 1800.0, info.TotalAvailableIncome)
	// No history anywhere means percents default to 0 and no auto transactions.
	assert.Equal(t, 0.0, info.AutoSavingsPercent)
	assert.Equal(t, 0, store.countTransactions(AutoSavingsName))
	assert.Equal(t, 0, store.countTransactions(AutoGoalsName))
}

func TestCreationWithAutoDeductions(t *testing.T) {
	store := newMemStore()
	seedNetIncome1800(store)
	// Yesterday's base of 60 was fully spent, so carryover contributes nothing
	// and today's base stays at 60. Percents 10/15 are seeded from yesterday.
	store.addSettings(testUser, "2025-06-01", 60, 10, 15)
	store.addTransaction(testUser, "Groceries", 60, "2025-06-01", false)
	store.goals = []models.Goal{
		{ID: 90, UserID: testUser, Name: "Trip", TargetAmount: 1000, AutoSavingsPercent: 100, IsCurrentlySelected: true},
	}
	engine := newTestEngine(store, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))

	info, err := engine.EnsureAndGetTodayBudget(context.Background(), testUser, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, 10.0, info.AutoSavingsPercent)
	assert.Equal(t, 15.0, info.AutoGoalsPercent)
	assert.Equal(t, 6.0, info.AutoSavingsAmount)
	assert.Equal(t, 9.0, info.AutoGoalsAmount)
	// Persisted base 60, minus today's own automatic deductions for display.
	assert.Equal(t, 45.0, info.DailyBudgetLimit)
	assert.Equal(t, 45.0, info.DailyBudgetLeft)
	assert.Equal(t, 6.0, info.AutoSavingsMonthSum)
	assert.Equal(t, 9.0, info.AutoGoalsMonthSum)

	stored, err := store.GetSettings(context.Background(), testUser, "2025-06-02")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 60.0, stored.DailyBudgetLimit)

	assert.Equal(t, 1, store.countTransactions(AutoSavingsName))
	assert.Equal(t, 1, store.countTransactions(AutoGoalsName))

	// The full auto-goals amount landed on the only selected goal.
	assert.InDelta(t, 9.0, store.goals[0].CurrentAmount, 1e-9)
}

func TestLeftoverCarryover(t *testing.T) {
	store := newMemStore()
	// Day 21 of a 30-day month: 10 remaining days including today.
	store.addSettings(testUser, "2025-06-20", 50, 0, 0)
	store.addTransaction(testUser, "Dinner", 25, "2025-06-20", false)
	store.addTransaction(testUser, AutoSavingsName, 5, "2025-06-20", true)
	store.addTransaction(testUser, "Refund", -10, "2025-06-20", false) // incomes are not spent
	engine := newTestEngine(store, time.Date(2025, 6, 21, 8, 0, 0, 0, time.UTC))

	info, err := engine.EnsureAndGetTodayBudget(context.Background(), testUser, time.UTC)
	require.NoError(t, err)

	// leftover = (50 - 30) / 10 = 2, so the new base is 52.
	assert.Equal(t, 10, info.DaysRemaining)
	assert.Equal(t, 52.0, info.DailyBudgetLimit)

	stored, err := store.GetSettings(context.Background(), testUser, "2025-06-21")
	require.NoError(t, err)
	assert.Equal(t, 52.0, stored.DailyBudgetLimit)
}

func TestIncomeDistributionSmoothsWindfall(t *testing.T) {
	store := newMemStore()
	store.addSettings(testUser, "2025-06-20", 50, 0, 0)
	store.addTransaction(testUser, "Dinner", 25, "2025-06-20", false)
	store.addTransaction(testUser, AutoSavingsName, 5, "2025-06-20", true)
	store.addTransaction(testUser, "Freelance gig", -290, "2025-06-21", false)
	engine := newTestEngine(store, time.Date(2025, 6, 21, 8, 0, 0, 0, time.UTC))

	info, err := engine.EnsureAndGetTodayBudget(context.Background(), testUser, time.UTC)
	require.NoError(t, err)

	// Base 52 plus 290 spread over 10 remaining days.
	assert.Equal(t, 81.0, info.DailyBudgetLimit)
	assert.Equal(t, 290.0, info.TotalAvailableIncome)
}

func TestIdempotentRederivation(t *testing.T) {
	store := newMemStore()
	seedNetIncome1800(store)
	store.addSettings(testUser, "2025-06-01", 60, 10, 15)
	store.addTransaction(testUser, "Groceries", 60, "2025-06-01", false)
	engine := newTestEngine(store, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))

	first, err := engine.EnsureAndGetTodayBudget(context.Background(), testUser, time.UTC)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := engine.EnsureAndGetTodayBudget(context.Background(), testUser, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, first.DailyBudgetLimit, again.DailyBudgetLimit)
		assert.Equal(t, first.AutoSavingsPercent, again.AutoSavingsPercent)
		assert.Equal(t, first.AutoGoalsPercent, again.AutoGoalsPercent)
	}

	// Exactly one pair of auto transactions total, not one per call.
	assert.Equal(t, 1, store.countTransactions(AutoSavingsName))
	assert.Equal(t, 1, store.countTransactions(AutoGoalsName))
}

func TestConcurrentCreationSingleWinner(t *testing.T) {
	store := newMemStore()
	seedNetIncome1800(store)
	store.addSettings(testUser, "2025-06-01", 60, 10, 15)
	store.addTransaction(testUser, "Groceries", 60, "2025-06-01", false)
	engine := newTestEngine(store, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*models.DailyBudgetInfo, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.EnsureAndGetTodayBudget(context.Background(), testUser, time.UTC)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
	}
	assert.Equal(t, 1, store.countTransactions(AutoSavingsName))
	assert.Equal(t, 1, store.countTransactions(AutoGoalsName))

	// Once the dust settles, every caller sees the same net limit.
	info, err := engine.EnsureAndGetTodayBudget(context.Background(), testUser, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 45.0, info.DailyBudgetLimit)
}

func TestPercentsStickyForTheDay(t *testing.T) {
	store := newMemStore()
	seedNetIncome1800(store)
	engine := newTestEngine(store, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	info, err := engine.SetAutoPercents(context.Background(), testUser, time.UTC, 10, 15)
	require.NoError(t, err)
	assert.Equal(t, 10.0, info.AutoSavingsPercent)
	assert.Equal(t, 15.0, info.AutoGoalsPercent)
	// The day was created before the percents were set, so no auto
	// transactions exist for it.
	assert.Equal(t, 0, store.countTransactions(AutoSavingsName))

	// A plain refresh keeps the stored percents.
	info, err = engine.EnsureAndGetTodayBudget(context.Background(), testUser, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 10.0, info.AutoSavingsPercent)
	assert.Equal(t, 15.0, info.AutoGoalsPercent)

	// The next day seeds from yesterday and creates the auto transactions.
	nextDay := newTestEngine(store, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	info, err = nextDay.EnsureAndGetTodayBudget(context.Background(), testUser, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 10.0, info.AutoSavingsPercent)
	assert.Equal(t, 1, store.countTransactions(AutoSavingsName))
}

func TestSetAutoPercentsRejectsOutOfRange(t *testing.T) {
	engine := newTestEngine(newMemStore(), time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	_, err := engine.SetAutoPercents(context.Background(), testUser, time.UTC, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidPercent)
	_, err = engine.SetAutoPercents(context.Background(), testUser, time.UTC, 0, 101)
	assert.ErrorIs(t, err, ErrInvalidPercent)
}

func TestRecalculateForVariableIncome(t *testing.T) {
	store := newMemStore()
	store.addSettings(testUser, "2025-06-20", 50, 0, 0)
	engine := newTestEngine(store, time.Date(2025, 6, 21, 8, 0, 0, 0, time.UTC))

	_, err := engine.EnsureAndGetTodayBudget(context.Background(), testUser, time.UTC)
	require.NoError(t, err)

	// The caller persists the income first, then asks for a recompute.
	store.addTransaction(testUser, "Bonus", -100, "2025-06-21", false)
	require.NoError(t, engine.RecalculateForVariableIncome(context.Background(), testUser, time.UTC, -100))

	stored, err := store.GetSettings(context.Background(), testUser, "2025-06-21")
	require.NoError(t, err)
	// Base 55 (leftover (50-0)/10 = 5) plus 100/10 distributed.
	assert.Equal(t, 65.0, stored.DailyBudgetLimit)
}

func TestStorageErrorsPropagate(t *testing.T) {
	store := newMemStore()
	injected := fmt.Errorf("connection reset")
	store.errOn["ListRecurring"] = injected
	engine := newTestEngine(store, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	_, err := engine.EnsureAndGetTodayBudget(context.Background(), testUser, time.UTC)
	require.Error(t, err)
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.ErrorIs(t, err, injected)
}

func TestGoalAllocationFailureKeepsBudgetCommitted(t *testing.T) {
	store := newMemStore()
	seedNetIncome1800(store)
	store.addSettings(testUser, "2025-06-01", 60, 0, 15)
	store.addTransaction(testUser, "Groceries", 60, "2025-06-01", false)
	store.goals = []models.Goal{
		{ID: 90, UserID: testUser, Name: "Trip", TargetAmount: 1000, AutoSavingsPercent: 60, IsCurrentlySelected: true},
		{ID: 91, UserID: testUser, Name: "Laptop", TargetAmount: 2000, AutoSavingsPercent: 40, IsCurrentlySelected: true},
	}
	store.goalUpdateErrs[91] = fmt.Errorf("row locked")
	engine := newTestEngine(store, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))

	_, err := engine.EnsureAndGetTodayBudget(context.Background(), testUser, time.UTC)
	require.Error(t, err)
	var allocErr *GoalAllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.Equal(t, 91, allocErr.GoalID)

	// The first goal's allocation and the day's settings stay committed.
	assert.Greater(t, store.goals[0].CurrentAmount, 0.0)
	stored, serr := store.GetSettings(context.Background(), testUser, "2025-06-02")
	require.NoError(t, serr)
	require.NotNil(t, stored)
	assert.Equal(t, 60.0, stored.DailyBudgetLimit)
}
