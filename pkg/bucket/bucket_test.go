package bucket

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinQueueOrdering(t *testing.T) {
	var q MinQueue[int]
	q.Push(30, 3)
	q.Push(10, 1)
	q.Push(11, 1)
	q.Push(50, 5)
	require.False(t, q.Empty())

	var buckets []int
	for !q.Empty() {
		v := q.Pop()
		buckets = append(buckets, v/10)
	}
	assert.Equal(t, []int{1, 1, 3, 5}, buckets)
}

func TestMinQueuePushBelowCursor(t *testing.T) {
	var q MinQueue[string]
	q.Push("b", 4)
	assert.Equal(t, "b", q.Pop())
	// pushing into a lower bucket after draining a higher one
	q.Push("a", 1)
	require.False(t, q.Empty())
	assert.Equal(t, "a", q.Pop())
	assert.True(t, q.Empty())
}

func TestSyncQueueDrainsInOrder(t *testing.T) {
	var q SyncQueue[int]
	q.Push(7, 2)
	q.Push(8, 2)
	q.Push(1, 0)
	q.Push(9, 5)

	items, bucket, ok := q.NextBucket()
	require.True(t, ok)
	assert.Equal(t, 0, bucket)
	assert.Equal(t, []int{1}, items)

	items, bucket, ok = q.NextBucket()
	require.True(t, ok)
	assert.Equal(t, 2, bucket)
	assert.ElementsMatch(t, []int{7, 8}, items)

	_, bucket, ok = q.NextBucket()
	require.True(t, ok)
	assert.Equal(t, 5, bucket)

	_, _, ok = q.NextBucket()
	assert.False(t, ok)
}

func TestBarrierRounds(t *testing.T) {
	const parties = 4
	b := NewBarrier(parties)
	var counter atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < parties; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := 0; round < 3; round++ {
				counter.Add(1)
				b.Wait()
				// all parties incremented before anyone passes
				assert.GreaterOrEqual(t, counter.Load(), int32((round+1)*parties))
				b.Wait()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(3*parties), counter.Load())
}

func TestParListProcessesBucketsInOrder(t *testing.T) {
	const workers = 3
	l := NewParList[int](workers)
	for v := 0; v < 60; v++ {
		l.Push(v, v%6)
	}
	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			var v int
			for l.Next(&v, worker) {
				mu.Lock()
				order = append(order, v%6)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	require.Len(t, order, 60)
	// bucket keys never decrease across the drained sequence
	for i := 1; i < len(order); i++ {
		assert.LessOrEqual(t, order[i-1], order[i])
	}
}

func TestParListEmpty(t *testing.T) {
	l := NewParList[int](2)
	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			var v int
			assert.False(t, l.Next(&v, worker))
		}(w)
	}
	wg.Wait()
}
