package pending

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	id      string
	version int
}

func (e entry) Key() string { return e.id }

func keys(items []entry) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.id)
	}
	return out
}

func TestQueue_RemoveIfPresent(t *testing.T) {
	tests := []struct {
		name        string
		initial     []string
		remove      string
		wantRemoved bool
		wantKeys    []string
	}{
		{name: "middle entry", initial: []string{"X", "Y", "Z"}, remove: "Y", wantRemoved: true, wantKeys: []string{"X", "Z"}},
		{name: "first entry", initial: []string{"X", "Y"}, remove: "X", wantRemoved: true, wantKeys: []string{"Y"}},
		{name: "last entry", initial: []string{"X", "Y"}, remove: "Y", wantRemoved: true, wantKeys: []string{"X"}},
		{name: "absent", initial: []string{"X", "Z"}, remove: "Y", wantRemoved: false, wantKeys: []string{"X", "Z"}},
		{name: "empty queue", initial: nil, remove: "Y", wantRemoved: false, wantKeys: []string{}},
		{name: "only first duplicate", initial: []string{"Y", "X", "Y"}, remove: "Y", wantRemoved: true, wantKeys: []string{"X", "Y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New[entry]()
			for _, id := range tt.initial {
				q.Enqueue(entry{id: id})
			}

			assert.Equal(t, tt.wantRemoved, q.RemoveIfPresent(tt.remove))
			assert.Equal(t, tt.wantKeys, keys(q.Snapshot()))
		})
	}
}

func TestQueue_EnqueueKeepsDuplicates(t *testing.T) {
	q := New[entry]()
	q.Enqueue(entry{id: "A", version: 1})
	q.Enqueue(entry{id: "A", version: 2})

	assert.Equal(t, 2, q.Len())
}

func TestQueue_EnqueueOrReplace(t *testing.T) {
	q := New[entry]()
	q.Enqueue(entry{id: "A", version: 1})
	q.Enqueue(entry{id: "B", version: 1})

	assert.True(t, q.EnqueueOrReplace(entry{id: "A", version: 2}))
	assert.False(t, q.EnqueueOrReplace(entry{id: "C", version: 1}))

	snap := q.Snapshot()
	assert.Equal(t, []string{"B", "A", "C"}, keys(snap))
	assert.Equal(t, 2, snap[1].version)
}

func TestQueue_Drain(t *testing.T) {
	q := New[entry]()
	assert.Empty(t, q.Drain())

	q.Enqueue(entry{id: "A"})
	q.Enqueue(entry{id: "B"})

	drained := q.Drain()
	assert.Equal(t, []string{"A", "B"}, keys(drained))
	assert.Zero(t, q.Len())

	q.Enqueue(entry{id: "C"})
	assert.Equal(t, []string{"A", "B"}, keys(drained), "drained slice must not alias the queue")
}

func TestQueue_SnapshotIsCopy(t *testing.T) {
	q := New[entry]()
	q.Enqueue(entry{id: "A"})

	snap := q.Snapshot()
	snap[0].id = "mutated"

	assert.True(t, q.Contains("A"))
	assert.False(t, q.Contains("mutated"))
}

func TestQueue_ZeroValueUsable(t *testing.T) {
	var q Queue[entry]
	q.Enqueue(entry{id: "A"})
	assert.True(t, q.RemoveIfPresent("A"))
	assert.Zero(t, q.Len())
}

func TestQueue_ConcurrentAccess(t *testing.T) {
	q := New[entry]()
	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				q.Enqueue(entry{id: fmt.Sprintf("%d-%d", w, i)})
			}
		}(w)
	}
	wg.Wait()
	require.Equal(t, workers*perWorker, q.Len())

	var removed sync.Map
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := fmt.Sprintf("%d-%d", w, i)
				if q.RemoveIfPresent(key) {
					_, dup := removed.LoadOrStore(key, true)
					assert.False(t, dup, "key %s removed twice", key)
				}
				_ = q.Snapshot()
			}
		}(w)
	}
	wg.Wait()

	assert.Zero(t, q.Len())
}
