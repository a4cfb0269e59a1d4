package budget

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated means no resolved user id reached the engine. Fatal for
// the call; authentication happens upstream.
var ErrNotAuthenticated = errors.New("user not authenticated")

// ErrDuplicateDay is the expected race signal on concurrent first-creation of
// a day's budget settings. It is consumed inside the engine to switch from the
// creator path to the refresher path and never reaches callers.
var ErrDuplicateDay = errors.New("budget settings already exist for this day")

// ErrInvalidPercent rejects auto-deduction percentages outside [0, 100].
var ErrInvalidPercent = errors.New("percent must be between 0 and 100")

// StorageError wraps any read/write failure from the storage layer. The engine
// performs no retries; the wrapped cause is kept for the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// GoalAllocationError reports a failed update of one goal's current amount.
// Allocations already applied to other goals are not rolled back, and the
// day's budget settings stay committed.
type GoalAllocationError struct {
	GoalID   int
	GoalName string
	Err      error
}

func (e *GoalAllocationError) Error() string {
	return fmt.Sprintf("goal allocation: updating goal %q (id %d): %v", e.GoalName, e.GoalID, e.Err)
}

func (e *GoalAllocationError) Unwrap() error { return e.Err }
