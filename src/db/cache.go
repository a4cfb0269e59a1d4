package db

import (
	"fmt"

	"github.com/dgraph-io/ristretto"
)

// Cache is the storage layer's read cache for the small per-user lists the
// budget engine fetches on every call (recurring transactions, selected
// goals). It is owned by the store and invalidated explicitly on writes, not
// shared module-level state.
type Cache struct {
	c *ristretto.Cache
}

func NewCache() (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

func recurringKey(userID int) string {
	return fmt.Sprintf("recurring:%d", userID)
}

func selectedGoalsKey(userID int) string {
	return fmt.Sprintf("selected-goals:%d", userID)
}

func (c *Cache) GetRecurring(userID int) (interface{}, bool) {
	return c.c.Get(recurringKey(userID))
}

func (c *Cache) SetRecurring(userID int, value interface{}) {
	c.c.Set(recurringKey(userID), value, 1)
}

func (c *Cache) InvalidateRecurring(userID int) {
	c.c.Del(recurringKey(userID))
}

func (c *Cache) GetSelectedGoals(userID int) (interface{}, bool) {
	return c.c.Get(selectedGoalsKey(userID))
}

func (c *Cache) SetSelectedGoals(userID int, value interface{}) {
	c.c.Set(selectedGoalsKey(userID), value, 1)
}

func (c *Cache) InvalidateSelectedGoals(userID int) {
	c.c.Del(selectedGoalsKey(userID))
}
