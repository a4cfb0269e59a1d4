package budget

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dayspend-server/src/models"
)

func allocatorEngine(store *memStore) *Engine {
	return newTestEngine(store, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
}

func selectedGoal(id int, name string, percent, current float64) models.Goal {
	return models.Goal{
		ID:                  id,
		UserID:              testUser,
		Name:                name,
		TargetAmount:        1000,
		CurrentAmount:       current,
		AutoSavingsPercent:  percent,
		IsCurrentlySelected: true,
	}
}

func TestAllocateProportionalShares(t *testing.T) {
	store := newMemStore()
	store.goals = []models.Goal{
		selectedGoal(1, "Trip", 50, 0),
		selectedGoal(2, "Laptop", 30, 0),
		selectedGoal(3, "Bike", 20, 0),
	}
	engine := allocatorEngine(store)

	require.NoError(t, engine.AllocateAutoGoals(context.Background(), testUser, 10.0))

	assert.InDelta(t, 5.00, store.goals[0].CurrentAmount, 1e-9)
	assert.InDelta(t, 3.00, store.goals[1].CurrentAmount, 1e-9)
	assert.InDelta(t, 2.00, store.goals[2].CurrentAmount, 1e-9)
}

func TestAllocateSumsExactlyDespiteRounding(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		percents []float64
	}{
		{"even split", 10.0, []float64{50, 30, 20}},
		{"thirds", 0.10, []float64{34, 33, 33}},
		{"uneven", 1.00, []float64{60, 40}},
		{"single goal", 9.0, []float64{100}},
		{"awkward cents", 7.77, []float64{45, 35, 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			for i, p := range tt.percents {
				store.goals = append(store.goals, selectedGoal(i+1, fmt.Sprintf("goal-%d", i), p, 0))
			}
			engine := allocatorEngine(store)

			require.NoError(t, engine.AllocateAutoGoals(context.Background(), testUser, tt.amount))

			var sum float64
			for _, g := range store.goals {
				sum += g.CurrentAmount
			}
			assert.InDelta(t, RoundUpToCents(tt.amount), sum, 1e-9)
		})
	}
}

func TestAllocateLastGoalGetsRemainder(t *testing.T) {
	store := newMemStore()
	store.goals = []models.Goal{
		selectedGoal(1, "Trip", 60, 0),
		selectedGoal(2, "Laptop", 40, 0),
	}
	engine := allocatorEngine(store)

	require.NoError(t, engine.AllocateAutoGoals(context.Background(), testUser, 1.00))

	// 60% of 1.00 rounds up to 0.60; the last goal gets exactly what is left.
	assert.InDelta(t, 0.60, store.goals[0].CurrentAmount, 1e-9)
	assert.InDelta(t, 0.40, store.goals[1].CurrentAmount, 1e-9)
}

func TestAllocateNoSelectedGoalsIsNoop(t *testing.T) {
	store := newMemStore()
	store.goals = []models.Goal{
		{ID: 1, UserID: testUser, Name: "Idle", AutoSavingsPercent: 50, IsCurrentlySelected: false},
		{ID: 2, UserID: testUser, Name: "Zero percent", AutoSavingsPercent: 0, IsCurrentlySelected: true},
	}
	engine := allocatorEngine(store)

	require.NoError(t, engine.AllocateAutoGoals(context.Background(), testUser, 10.0))

	assert.Equal(t, 0.0, store.goals[0].CurrentAmount)
	assert.Equal(t, 0.0, store.goals[1].CurrentAmount)
}

func TestAllocateSkipsZeroShareWrites(t *testing.T) {
	store := newMemStore()
	store.goals = []models.Goal{selectedGoal(1, "Trip", 100, 12.34)}
	// An injected error would surface if the allocator attempted a write.
	store.goalUpdateErrs[1] = fmt.Errorf("should not be written")
	engine := allocatorEngine(store)

	require.NoError(t, engine.AllocateAutoGoals(context.Background(), testUser, 0))
	assert.Equal(t, 12.34, store.goals[0].CurrentAmount)
}

func TestAllocateSurfacesUpdateFailure(t *testing.T) {
	store := newMemStore()
	store.goals = []models.Goal{
		selectedGoal(1, "Trip", 60, 0),
		selectedGoal(2, "Laptop", 40, 0),
	}
	store.goalUpdateErrs[2] = fmt.Errorf("row locked")
	engine := allocatorEngine(store)

	err := engine.AllocateAutoGoals(context.Background(), testUser, 10.0)
	require.Error(t, err)
	var allocErr *GoalAllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.Equal(t, 2, allocErr.GoalID)
	assert.Equal(t, "Laptop", allocErr.GoalName)

	// The first goal's allocation is not rolled back.
	assert.InDelta(t, 6.00, store.goals[0].CurrentAmount, 1e-9)
}
