// Package memstore holds the in-memory tables behind the memory storage backend.
package memstore

import (
	"errors"
	"sync"
)

var (
	ErrNotFound  = errors.New("row not found")
	ErrDuplicate = errors.New("duplicate row id")
)

// Table is a concurrency-safe keyed collection that remembers insertion order.
type Table[T any] struct {
	mu    sync.RWMutex
	rows  map[string]T
	order []string
}

func NewTable[T any]() *Table[T] {
	return &Table[T]{rows: map[string]T{}}
}

func (t *Table[T]) Insert(id string, row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; ok {
		return ErrDuplicate
	}
	t.rows[id] = row
	t.order = append(t.order, id)
	return nil
}

func (t *Table[T]) Get(id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return row, nil
}

// Update replaces an existing row.
func (t *Table[T]) Update(id string, row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	t.rows[id] = row
	return nil
}

// UpdateIf applies fn to the stored row under the write lock and stores the
// result. An error from fn leaves the row untouched and is returned as is.
func (t *Table[T]) UpdateIf(id string, fn func(T) (T, error)) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero T
	row, ok := t.rows[id]
	if !ok {
		return zero, ErrNotFound
	}
	next, err := fn(row)
	if err != nil {
		return zero, err
	}
	t.rows[id] = next
	return next, nil
}

// DeleteIf removes the row when check accepts it, under the same lock.
func (t *Table[T]) DeleteIf(id string, check func(T) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok {
		return ErrNotFound
	}
	if err := check(row); err != nil {
		return err
	}
	t.remove(id)
	return nil
}

func (t *Table[T]) Delete(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	t.remove(id)
	return nil
}

// remove drops id from rows and order. Callers hold t.mu.
func (t *Table[T]) remove(id string) {
	delete(t.rows, id)
	for i, candidate := range t.order {
		if candidate == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// DeleteWhere removes every matching row and returns how many went.
func (t *Table[T]) DeleteWhere(match func(T) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	kept := t.order[:0]
	for _, id := range t.order {
		if match(t.rows[id]) {
			delete(t.rows, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
	return removed
}

// Select returns matching rows in insertion order. A nil match selects all.
func (t *Table[T]) Select(match func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		row := t.rows[id]
		if match == nil || match(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Page slices rows by offset and limit. A non-positive limit returns the rest.
func Page[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	if offset > 0 {
		rows = rows[offset:]
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
