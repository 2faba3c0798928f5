// SPDX-License-Identifier: MIT

package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sybila/biodivine/internal/bn"
)

func testEncoder(t *testing.T, network string) *Encoder {
	t.Helper()
	n, err := bn.ParseBooleanNetwork(network)
	require.NoError(t, err)
	e, err := NewEncoder(n)
	require.NoError(t, err)
	return e
}

func TestSetAlgebra(t *testing.T) {
	e := testEncoder(t, "a -> b\na -| a\nb -> a")
	require.Equal(t, 6, e.Cells())

	unit := e.Unit()
	empty := e.Empty()
	assert.Equal(t, 64, unit.Cardinality())
	assert.True(t, empty.IsEmpty())
	assert.False(t, unit.IsEmpty())

	a := e.CellTrue(0)
	b := e.CellTrue(5)
	assert.Equal(t, 32, a.Cardinality())
	assert.Equal(t, 32, b.Cardinality())

	assert.Equal(t, 48, a.Union(b).Cardinality())
	assert.Equal(t, 16, a.Intersect(b).Cardinality())
	assert.Equal(t, 16, a.Minus(b).Cardinality())
	assert.Equal(t, 32, unit.Minus(a).Cardinality())

	assert.True(t, a.IsSubset(unit))
	assert.False(t, unit.IsSubset(a))
	assert.True(t, a.Intersect(b).IsSubset(a))
	assert.True(t, empty.IsSubset(a))

	assert.True(t, a.Equal(e.CellTrue(0)))
	assert.False(t, a.Equal(b))
	assert.True(t, unit.Minus(unit.Minus(a)).Equal(a))
}

func TestSetAlgebraWideSpace(t *testing.T) {
	// Three anonymous functions with two regulators each: 12 cells, so the
	// valuation space spans multiple words.
	e := testEncoder(t, "a -> b\nb -> c\nc -> a\na -| a\nb -| b\nc -| c")
	require.Equal(t, 12, e.Cells())

	unit := e.Unit()
	assert.Equal(t, 1<<12, unit.Cardinality())

	low, high := e.CellTrue(2), e.CellTrue(11)
	assert.Equal(t, 1<<11, low.Cardinality())
	assert.Equal(t, 1<<11, high.Cardinality())
	assert.Equal(t, 1<<10, low.Intersect(high).Cardinality())
	assert.True(t, low.Intersect(high).IsSubset(high))
}

func TestEncoderExplicitParameters(t *testing.T) {
	e := testEncoder(t, `
		a -> b
		a -| a
		b -> a
		$a: p(a,b) => q(b)
		$b: q(a)
	`)
	// p owns four cells, q owns two.
	require.Equal(t, 6, e.Cells())

	va, vb := bn.VariableID(0), bn.VariableID(1)
	p, q := bn.ParameterID(0), bn.ParameterID(1)
	ab := []bn.VariableID{va, vb}
	ba := []bn.VariableID{vb, va}

	// Every cell is reachable exactly once.
	cells := []int{
		e.ParameterCell(0b00, p, ab),
		e.ParameterCell(0b01, p, ab),
		e.ParameterCell(0b10, p, ab),
		e.ParameterCell(0b11, p, ab),
		e.ParameterCell(0b00, q, []bn.VariableID{va}),
		e.ParameterCell(0b01, q, []bn.VariableID{va}),
	}
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5}, cells)

	// Swapping the argument order mirrors the table index.
	assert.Equal(t, e.ParameterCell(0b00, p, ba), e.ParameterCell(0b00, p, ab))
	assert.Equal(t, e.ParameterCell(0b10, p, ba), e.ParameterCell(0b01, p, ab))
	assert.Equal(t, e.ParameterCell(0b01, p, ba), e.ParameterCell(0b10, p, ab))
	assert.Equal(t, e.ParameterCell(0b11, p, ba), e.ParameterCell(0b11, p, ab))
	assert.NotEqual(t, e.ParameterCell(0b01, p, ba), e.ParameterCell(0b01, p, ab))

	// The cell of q only depends on the value of its argument.
	assert.Equal(t,
		e.ParameterCell(0b00, q, []bn.VariableID{va}),
		e.ParameterCell(0b10, q, []bn.VariableID{va}),
	)
	assert.Equal(t,
		e.ParameterCell(0b10, q, []bn.VariableID{vb}),
		e.ParameterCell(0b11, q, []bn.VariableID{vb}),
	)
	assert.NotEqual(t,
		e.ParameterCell(0b00, q, []bn.VariableID{va}),
		e.ParameterCell(0b01, q, []bn.VariableID{va}),
	)
}

func TestEncoderAnonymousParameters(t *testing.T) {
	e := testEncoder(t, "a -> b\na -| a\nb -> a")
	require.Equal(t, 6, e.Cells())

	va, vb := bn.VariableID(0), bn.VariableID(1)

	cells := []int{
		e.AnonymousCell(0b00, va),
		e.AnonymousCell(0b01, va),
		e.AnonymousCell(0b10, va),
		e.AnonymousCell(0b11, va),
		e.AnonymousCell(0b00, vb),
		e.AnonymousCell(0b01, vb),
	}
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5}, cells)

	// b's implicit function only reads a.
	assert.Equal(t, e.AnonymousCell(0b10, vb), e.AnonymousCell(0b00, vb))
	assert.Equal(t, e.AnonymousCell(0b11, vb), e.AnonymousCell(0b01, vb))
	assert.NotEqual(t, e.AnonymousCell(0b01, vb), e.AnonymousCell(0b00, vb))
}

func TestEncoderMixedParameters(t *testing.T) {
	e := testEncoder(t, `
		a -> b
		a -| a
		b -> a
		$a: b & p(a, b)
	`)
	// p owns four cells, the implicit function of b owns two.
	require.Equal(t, 6, e.Cells())

	vb := bn.VariableID(1)
	assert.Equal(t, []bn.VariableID{0}, e.Regulators(vb))
	assert.Panics(t, func() { e.AnonymousCell(0, bn.VariableID(0)) })
}

func TestEncoderCapacity(t *testing.T) {
	n, err := bn.ParseBooleanNetwork(`
		a -> e
		b -> e
		c -> e
		d -> e
		e -> e
		$e: p(a, b, c, d, e) | q(a, b, c, d)
	`)
	require.NoError(t, err)

	// 2^5 + 2^4 cells exceed the capacity limit.
	_, err = NewEncoder(n)
	require.ErrorContains(t, err, "table cells")
}

func TestSetsFromDifferentEncodersPanic(t *testing.T) {
	small := testEncoder(t, "a -> a")
	big := testEncoder(t, "a -> b\na -| a\nb -> a")
	assert.Panics(t, func() { small.Unit().Union(big.Unit()) })
}
