package workflow

import (
	"sync"

	"github.com/google/uuid"
)

// StateCache holds fetched workflow state keyed by item id. Records for items
// never opened in the inspector are simply absent. Every read and write copies
// the record so no caller can mutate cached state in place; the dispatcher is
// the only component allowed to write through it.
type StateCache struct {
	mu     sync.RWMutex
	states map[uuid.UUID]*WorkflowState
}

// NewStateCache creates an empty cache.
func NewStateCache() *StateCache {
	return &StateCache{states: make(map[uuid.UUID]*WorkflowState)}
}

// Get returns the cached state for an item, if present.
func (c *StateCache) Get(id uuid.UUID) (*WorkflowState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	state, ok := c.states[id]
	if !ok {
		return nil, false
	}
	return state.Clone(), true
}

// Put replaces the cached state for the record's item.
func (c *StateCache) Put(state *WorkflowState) {
	if state == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[state.ItemID] = state.Clone()
}

// Remove drops the cached state for an item.
func (c *StateCache) Remove(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, id)
}

// Len reports the number of cached records.
func (c *StateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.states)
}
