package cache

import (
	"context"
	"sync"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
)

type OrderSource interface {
	GetByState(ctx context.Context, state string) ([]*repository.Order, error)
}

type cachedState struct {
	State     string
	UpdatedAt time.Time
}

// StateCache keeps the current lifecycle state of active orders in memory
// for the read paths (status queries, option projection). Managers write
// through on every applied transition; terminal states are evicted.
type StateCache struct {
	mu    sync.RWMutex
	cache map[string]cachedState
}

func NewStateCache() *StateCache {
	return &StateCache{cache: make(map[string]cachedState)}
}

// Warm preloads the cache with every order parked in the given states.
func (c *StateCache) Warm(ctx context.Context, repo OrderSource, states ...string) error {
	for _, state := range states {
		orders, err := repo.GetByState(ctx, state)
		if err != nil {
			return err
		}
		c.mu.Lock()
		for _, order := range orders {
			c.cache[order.ID] = cachedState{State: order.CurrentState, UpdatedAt: order.UpdatedAt}
		}
		c.mu.Unlock()
	}
	c.publishSize()
	return nil
}

func (c *StateCache) Get(orderID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, found := c.cache[orderID]
	if !found {
		return "", false
	}
	return entry.State, true
}

func (c *StateCache) Set(orderID, state string, updatedAt time.Time) {
	c.mu.Lock()
	// A stale writer must not clobber a fresher state.
	if existing, found := c.cache[orderID]; found && existing.UpdatedAt.After(updatedAt) {
		c.mu.Unlock()
		return
	}
	c.cache[orderID] = cachedState{State: state, UpdatedAt: updatedAt}
	c.mu.Unlock()
	c.publishSize()
}

func (c *StateCache) Delete(orderID string) {
	c.mu.Lock()
	delete(c.cache, orderID)
	c.mu.Unlock()
	c.publishSize()
}

func (c *StateCache) publishSize() {
	c.mu.RLock()
	size := len(c.cache)
	c.mu.RUnlock()
	metrics.StateCacheItems.Set(float64(size))
}
