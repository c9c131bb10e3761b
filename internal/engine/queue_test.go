package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := newBatchQueue()

	a := newBatch("a", nil)
	b := newBatch("b", nil)
	c := newBatch("c", nil)

	require.True(t, q.push(a))
	require.True(t, q.push(b))
	require.True(t, q.push(c))
	require.Equal(t, 3, q.depth())

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.pop()
		require.True(t, ok)
		require.Equal(t, want, got.ID)
	}

	require.Equal(t, 0, q.depth())
}

func TestQueueCloseRejectsNewWork(t *testing.T) {
	q := newBatchQueue()
	q.close()

	require.False(t, q.push(newBatch("a", nil)))

	_, ok := q.pop()
	require.False(t, ok)
}

func TestQueueCloseDrainsQueuedWork(t *testing.T) {
	q := newBatchQueue()

	require.True(t, q.push(newBatch("a", nil)))
	require.True(t, q.push(newBatch("b", nil)))

	q.close()

	// Queued items survive close; only intake stops.
	got, ok := q.pop()
	require.True(t, ok)
	require.Equal(t, "a", got.ID)

	got, ok = q.pop()
	require.True(t, ok)
	require.Equal(t, "b", got.ID)

	_, ok = q.pop()
	require.False(t, ok)
}

func TestQueueCloseWakesBlockedConsumers(t *testing.T) {
	q := newBatchQueue()

	const consumers = 4

	var wg sync.WaitGroup
	for i := 0; i < consumers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for {
				if _, ok := q.pop(); !ok {
					return
				}
			}
		}()
	}

	require.True(t, q.push(newBatch("a", nil)))
	q.close()

	// All consumers return once the queue is closed and drained.
	wg.Wait()
}
