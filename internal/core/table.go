package core

import (
	"sync"

	"github.com/google/uuid"
)

// Table is a concurrent mapping from opaque key to Entry. Readers never
// block each other; writers (insert, remove, swap) are serialized against
// readers and each other.
//
// Iteration via snapshot need not observe concurrent modifications — it is
// sufficient for the background sweep, which re-validates every entry it
// touches against the table and the entry's own status before acting.
type Table[T any] struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*Entry[T]
}

func newTable[T any]() *Table[T] {
	return &Table[T]{entries: make(map[uuid.UUID]*Entry[T])}
}

func (t *Table[T]) insert(e *Entry[T]) {
	t.mu.Lock()
	t.entries[e.key] = e
	t.mu.Unlock()
}

func (t *Table[T]) remove(key uuid.UUID) {
	t.mu.Lock()
	delete(t.entries, key)
	t.mu.Unlock()
}

func (t *Table[T]) get(key uuid.UUID) (*Entry[T], bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[key]
	return e, ok
}

// swap replaces the Entry stored under key, used by refresh to preserve the
// key identity while installing a fresh payload.
func (t *Table[T]) swap(key uuid.UUID, e *Entry[T]) {
	e.key = key
	t.mu.Lock()
	t.entries[key] = e
	t.mu.Unlock()
}

// snapshot returns the keys present at the time of the call, suitable for
// driving the scale-in/refresh sweep.
func (t *Table[T]) snapshot() []uuid.UUID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]uuid.UUID, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	return keys
}

func (t *Table[T]) size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *Table[T]) all() []*Entry[T] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	es := make([]*Entry[T], 0, len(t.entries))
	for _, e := range t.entries {
		es = append(es, e)
	}
	return es
}
