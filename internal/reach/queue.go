// SPDX-License-Identifier: MIT

// Package reach computes parametrised reachability fixpoints over the
// transition graphs of the graph package.
package reach

import "sync/atomic"

// Queue is a fixed-capacity concurrent work list over dense state indices.
// It holds every index at most once, so repeated discoveries of the same
// state collapse into a single unit of work.
type Queue struct {
	items []atomic.Bool
}

// NewQueue creates a queue for indices 0..capacity-1.
func NewQueue(capacity int) *Queue {
	return &Queue{items: make([]atomic.Bool, capacity)}
}

// Set marks an index as pending. It reports whether the index was newly
// added; false means it was already waiting in the queue.
func (q *Queue) Set(position int) bool {
	return !q.items[position].Swap(true)
}

// Next claims the first pending index at or after startingAt. It reports
// false when no index past that point is pending.
func (q *Queue) Next(startingAt int) (int, bool) {
	for i := startingAt; i < len(q.items); i++ {
		if q.items[i].CompareAndSwap(true, false) {
			return i, true
		}
	}
	return 0, false
}
