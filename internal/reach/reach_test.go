// SPDX-License-Identifier: MIT

package reach

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sybila/biodivine/internal/async"
	"github.com/sybila/biodivine/internal/bn"
	"github.com/sybila/biodivine/internal/params"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testGraph builds the graph of "b copies a" where a itself is governed by
// an unknown boolean constant. Its unit set has two valuations.
func testGraph(t *testing.T) *async.Graph {
	t.Helper()
	n, err := bn.ParseBooleanNetwork("a -> b\n$b: a")
	require.NoError(t, err)
	g, err := async.New(n)
	require.NoError(t, err)
	return g
}

func initialAt(g *async.Graph, state int) []params.Set {
	initial := make([]params.Set, g.NumStates())
	for i := range initial {
		initial[i] = g.EmptyParams()
	}
	initial[state] = g.UnitParams()
	return initial
}

func TestForwardReachability(t *testing.T) {
	g := testGraph(t)
	require.Equal(t, 2, g.UnitParams().Cardinality())

	// From a=1, b=0: b rises for every valuation, a falls only when its
	// constant is false.
	result, err := Compute(context.Background(), g.Fwd(), initialAt(g, 0b01), 4)
	require.NoError(t, err)
	require.Len(t, result, 4)

	assert.Equal(t, 1, result[0b00].Cardinality())
	assert.Equal(t, 2, result[0b01].Cardinality())
	assert.Equal(t, 1, result[0b10].Cardinality())
	assert.Equal(t, 2, result[0b11].Cardinality())
}

func TestBackwardReachability(t *testing.T) {
	g := testGraph(t)

	// States that can reach a=1, b=1.
	result, err := Compute(context.Background(), g.Bwd(), initialAt(g, 0b11), 4)
	require.NoError(t, err)

	assert.Equal(t, 1, result[0b00].Cardinality())
	assert.Equal(t, 2, result[0b01].Cardinality())
	assert.Equal(t, 1, result[0b10].Cardinality())
	assert.Equal(t, 2, result[0b11].Cardinality())
}

func TestReachabilityDeterministic(t *testing.T) {
	g := testGraph(t)

	sequential, err := Compute(context.Background(), g.Fwd(), initialAt(g, 0b10), 1)
	require.NoError(t, err)
	parallel, err := Compute(context.Background(), g.Fwd(), initialAt(g, 0b10), 8)
	require.NoError(t, err)

	require.Len(t, parallel, len(sequential))
	for i := range sequential {
		assert.True(t, sequential[i].Equal(parallel[i]), "state %d", i)
	}
}

func TestReachabilityEmptyInitial(t *testing.T) {
	g := testGraph(t)

	initial := make([]params.Set, g.NumStates())
	for i := range initial {
		initial[i] = g.EmptyParams()
	}
	result, err := Compute(context.Background(), g.Fwd(), initial, 2)
	require.NoError(t, err)
	for i := range result {
		assert.True(t, result[i].IsEmpty())
	}
}

func TestReachabilityCancel(t *testing.T) {
	g := testGraph(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compute(ctx, g.Fwd(), initialAt(g, 0b00), 2)
	require.ErrorIs(t, err, context.Canceled)
}
