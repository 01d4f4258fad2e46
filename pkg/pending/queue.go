// Package pending holds item states waiting to be announced to the host.
//
// When the client learns that an item changed it enqueues the new state;
// the host later pulls the queue through its change enumeration. If the item
// is materialized in the meantime the queued entry is stale and is dropped.
package pending

import "sync"

// Keyed is implemented by queue entries. Entries with equal keys describe
// the same item.
type Keyed interface {
	Key() string
}

// Queue is an ordered, mutex-guarded list of pending entries.
//
// A Queue is owned by the process that constructs it and is passed to its
// users explicitly. The zero value is ready to use.
//
// Thread Safety:
// Every method takes the same mutex, so a RemoveIfPresent never observes a
// partially applied Enqueue and vice versa.
type Queue[T Keyed] struct {
	mu    sync.Mutex
	items []T
}

// New creates an empty queue.
func New[T Keyed]() *Queue[T] {
	return &Queue[T]{}
}

// Enqueue appends item. No deduplication is performed.
func (q *Queue[T]) Enqueue(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, item)
}

// EnqueueOrReplace removes the first entry with the same key, if any, and
// appends item, so the queue holds only the latest state of the item.
func (q *Queue[T]) EnqueueOrReplace(item T) (replaced bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	replaced = q.removeLocked(item.Key())
	q.items = append(q.items, item)
	return replaced
}

// RemoveIfPresent removes the first entry whose key equals key and reports
// whether one was removed. Later duplicates, if any, are left in place.
func (q *Queue[T]) RemoveIfPresent(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.removeLocked(key)
}

func (q *Queue[T]) removeLocked(key string) bool {
	for i, item := range q.items {
		if item.Key() == key {
			var zero T
			copy(q.items[i:], q.items[i+1:])
			q.items[len(q.items)-1] = zero
			q.items = q.items[:len(q.items)-1]
			return true
		}
	}
	return false
}

// Contains reports whether an entry with key is queued.
func (q *Queue[T]) Contains(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, item := range q.items {
		if item.Key() == key {
			return true
		}
	}
	return false
}

// Len returns the number of queued entries.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Snapshot returns a copy of the queued entries in order.
func (q *Queue[T]) Snapshot() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]T, len(q.items))
	copy(out, q.items)
	return out
}

// Drain returns all queued entries in order and empties the queue.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = nil
	if out == nil {
		out = []T{}
	}
	return out
}
