package status

import (
	"iter"
	"maps"
	"slices"
	"sync"
)

// MetricMap is a keyed set of metric cells of type T
// Cells are created once and never removed, so components cache the pointer
// and update it without touching the map again
type MetricMap[T any] struct {
	mu    sync.RWMutex
	cells map[string]*T
}

// NewMetricMap creates an empty MetricMap
func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{cells: make(map[string]*T)}
}

// Get returns the cell for key, creating it on first use
func (m *MetricMap[T]) Get(key string) *T {
	m.mu.RLock()
	cell, ok := m.cells[key]
	m.mu.RUnlock()
	if ok {
		return cell
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cell, ok := m.cells[key]; ok {
		return cell
	}
	cell = new(T)
	m.cells[key] = cell
	return cell
}

// All yields every cell in key order
// The key set is captured up front, cells created during iteration are skipped
func (m *MetricMap[T]) All() iter.Seq2[string, *T] {
	return func(yield func(string, *T) bool) {
		m.mu.RLock()
		keys := slices.Sorted(maps.Keys(m.cells))
		cells := make([]*T, len(keys))
		for i, k := range keys {
			cells[i] = m.cells[k]
		}
		m.mu.RUnlock()

		for i, k := range keys {
			if !yield(k, cells[i]) {
				return
			}
		}
	}
}

// Count returns the number of cells
func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cells)
}
