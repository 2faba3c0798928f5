// SPDX-License-Identifier: MIT

package reach

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueSingleThread(t *testing.T) {
	q := NewQueue(10)

	_, ok := q.Next(0)
	assert.False(t, ok)

	q.Set(3)
	_, ok = q.Next(10)
	assert.False(t, ok)
	_, ok = q.Next(4)
	assert.False(t, ok)
	i, ok := q.Next(0)
	assert.True(t, ok)
	assert.Equal(t, 3, i)

	q.Set(3)
	q.Set(7)
	q.Set(8)
	assert.False(t, q.Set(7), "7 is already pending")

	i, ok = q.Next(5)
	assert.True(t, ok)
	assert.Equal(t, 7, i)
	i, ok = q.Next(3)
	assert.True(t, ok)
	assert.Equal(t, 3, i)
	i, ok = q.Next(3)
	assert.True(t, ok)
	assert.Equal(t, 8, i)
	_, ok = q.Next(0)
	assert.False(t, ok)
}

// Each goroutine inserts values in a rotated order and then drains what it
// can. Counting successful inserts against successful claims per position
// must leave every counter at zero.
func TestQueueMultiThread(t *testing.T) {
	const positions = 10
	var totalOps atomic.Int64
	var counts [positions]atomic.Int64
	q := NewQueue(positions)

	var wg sync.WaitGroup
	for id := 0; id < positions; id++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := 0; round < 10_000; round++ {
				for i := 0; i < positions; i++ {
					position := (i + id) % positions
					if q.Set(position) {
						counts[position].Add(1)
					}
				}
				next := 0
				for {
					found, ok := q.Next(next)
					if !ok {
						break
					}
					totalOps.Add(1)
					counts[found].Add(-1)
					next = found
				}
			}
		}()
	}
	wg.Wait()

	// Drain anything the final rounds left behind.
	for {
		found, ok := q.Next(0)
		if !ok {
			break
		}
		counts[found].Add(-1)
	}

	for i := range counts {
		assert.Zero(t, counts[i].Load(), "position %d", i)
	}
	assert.Positive(t, totalOps.Load())
}
