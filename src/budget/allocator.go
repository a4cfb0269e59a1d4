package budget

import (
	"context"
	"log"
	"math"
)

// AllocateAutoGoals distributes autoGoalsAmount across the user's currently
// selected goals proportionally to each goal's auto-savings percent. Every
// goal but the last gets its share rounded up to cents; the last goal in
// iteration order receives the exact remainder, so the allocations always sum
// to roundUpToCents(autoGoalsAmount) despite per-goal rounding.
func (e *Engine) AllocateAutoGoals(ctx context.Context, userID int, autoGoalsAmount float64) error {
	goals, err := e.store.ListSelectedGoals(ctx, userID)
	if err != nil {
		return &StorageError{Op: "load selected goals", Err: err}
	}
	if len(goals) == 0 {
		return nil
	}

	var totalPercent float64
	for _, g := range goals {
		totalPercent += g.AutoSavingsPercent
	}
	if totalPercent == 0 {
		return nil
	}

	remaining := RoundUpToCents(autoGoalsAmount)
	for i, g := range goals {
		var share float64
		if i < len(goals)-1 {
			share = RoundUpToCents(autoGoalsAmount * g.AutoSavingsPercent / totalPercent)
		} else {
			share = RoundUpToCents(remaining)
		}
		remaining = RoundUpToCents(remaining - share)

		newAmount := RoundUpToCents(g.CurrentAmount + share)
		// A share that rounds to nothing would be a zero-row update.
		if math.Abs(newAmount-g.CurrentAmount) < 0.005 {
			continue
		}
		if err := e.store.UpdateGoalAmount(ctx, userID, g.ID, newAmount); err != nil {
			// No rollback of goals already updated; surface the failure.
			return &GoalAllocationError{GoalID: g.ID, GoalName: g.Name, Err: err}
		}
		log.Printf("INFO: Allocated %.2f to goal %q (id %d) for user %d", share, g.Name, g.ID, userID)
	}
	return nil
}
