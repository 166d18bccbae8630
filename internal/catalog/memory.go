package catalog

import (
	"context"
	"sort"
	"sync"
)

type levelKey struct {
	typ   ActivityType
	level int
}

// Memory is an in-memory Catalog implementation.
type Memory struct {
	items map[levelKey][]Item
	mu    sync.RWMutex
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{
		items: make(map[levelKey][]Item),
	}
}

// Add inserts an item, keeping the level's collection ordered by
// (Position, ID).
func (m *Memory) Add(item Item) {
	key := levelKey{typ: item.Type, level: item.Level}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := append(m.items[key], item)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Position != list[j].Position {
			return list[i].Position < list[j].Position
		}
		return list[i].ID < list[j].ID
	})
	m.items[key] = list
}

func (m *Memory) Items(_ context.Context, typ ActivityType, level int) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.items[levelKey{typ: typ, level: level}]
	out := make([]Item, len(list))
	copy(out, list)
	return out, nil
}

// Len returns the total number of items across all collections.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, list := range m.items {
		n += len(list)
	}
	return n
}
