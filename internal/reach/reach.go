// SPDX-License-Identifier: MIT

package reach

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sybila/biodivine/internal/graph"
	"github.com/sybila/biodivine/internal/sets"
)

// table guards the per-state parameter sets of a running computation. Set
// values are immutable, so reads only need the lock to get a consistent
// snapshot.
type table[P sets.Set[P]] struct {
	mu     []sync.Mutex
	values []P
}

func (t *table[P]) get(i int) P {
	t.mu[i].Lock()
	defer t.mu[i].Unlock()
	return t.values[i]
}

// merge unions new valuations into a state and reports whether the state
// actually grew.
func (t *table[P]) merge(i int, p P) bool {
	t.mu[i].Lock()
	defer t.mu[i].Unlock()
	if p.IsSubset(t.values[i]) {
		return false
	}
	t.values[i] = t.values[i].Union(p)
	return true
}

// Compute propagates the initial parameter sets along the edges of the
// evolution operator until a fixpoint: a valuation reaches a state if some
// path from an initial state is enabled for it edge by edge. The initial
// slice must cover the whole state space of the operator; the result has
// the same length.
//
// Workers run until the work list drains; the computation aborts early
// when the context is cancelled. A non-positive worker count uses one
// worker per CPU.
func Compute[P sets.Set[P]](ctx context.Context, op graph.EvolutionOperator[P], initial []P, workers int) ([]P, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	result := &table[P]{
		mu:     make([]sync.Mutex, len(initial)),
		values: make([]P, len(initial)),
	}
	queue := NewQueue(len(initial))
	for i, p := range initial {
		result.values[i] = p
		if !p.IsEmpty() {
			queue.Set(i)
		}
	}

	// processing counts workers that hold a claimed state. The queue is
	// only allowed to drain for good once nobody can enqueue anymore.
	var processing atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				state, ok := queue.Next(0)
				if !ok {
					if processing.Load() > 0 {
						runtime.Gosched()
						continue
					}
					// Nobody was processing when the queue looked empty,
					// so recheck once to close the enqueue race.
					if state, ok = queue.Next(0); !ok {
						return nil
					}
				}
				processing.Add(1)
				current := result.get(state)
				for _, edge := range op.Step(graph.State(state)) {
					transfer := current.Intersect(edge.Params)
					if transfer.IsEmpty() {
						continue
					}
					if result.merge(int(edge.State), transfer) {
						queue.Set(int(edge.State))
					}
				}
				processing.Add(-1)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result.values, nil
}
