// SPDX-License-Identifier: MIT

package params

import (
	"fmt"

	"github.com/sybila/biodivine/internal/bn"
	"github.com/sybila/biodivine/internal/graph"
)

// MaxCells bounds the total number of function table cells an encoder can
// track. The valuation space is 2^cells, so this keeps a single Set under
// a few megabytes.
const MaxCells = 24

// Encoder maps the parameters of a boolean network onto function table
// cells. Every explicit parameter of arity k owns 2^k consecutive cells,
// one per input combination. Every variable without an update function
// owns an anonymous block with one cell per combination of its regulators.
type Encoder struct {
	cells        int
	paramOffsets []int
	anonOffsets  []int
	regulators   [][]bn.VariableID
}

// NewEncoder lays out the table cells for a network. It fails when the
// valuation space would exceed MaxCells cells.
func NewEncoder(network *bn.BooleanNetwork) (*Encoder, error) {
	g := network.Graph()
	e := &Encoder{
		paramOffsets: make([]int, len(network.Parameters())),
		anonOffsets:  make([]int, g.NumVars()),
		regulators:   make([][]bn.VariableID, g.NumVars()),
	}

	for i, p := range network.Parameters() {
		e.paramOffsets[i] = e.cells
		e.cells += 1 << p.Arity
	}
	for v := 0; v < g.NumVars(); v++ {
		id := bn.VariableID(v)
		e.regulators[v] = g.Regulators(id)
		if _, ok := network.UpdateFunctionOf(id); ok {
			e.anonOffsets[v] = -1
			continue
		}
		e.anonOffsets[v] = e.cells
		e.cells += 1 << len(e.regulators[v])
	}

	if e.cells > MaxCells {
		return nil, fmt.Errorf(
			"parameter space needs %d function table cells, at most %d supported",
			e.cells, MaxCells,
		)
	}
	return e, nil
}

// Cells returns the total number of function table cells.
func (e *Encoder) Cells() int {
	return e.cells
}

// Empty returns the empty valuation set.
func (e *Encoder) Empty() Set {
	return newSet(e.cells)
}

// Unit returns the set of all valuations.
func (e *Encoder) Unit() Set {
	s := newSet(e.cells)
	for i := range s.words {
		s.words[i] = ^uint64(0)
	}
	return s.valuationMask()
}

// CellTrue returns the set of valuations that assign true to one cell.
func (e *Encoder) CellTrue(cell int) Set {
	s := newSet(e.cells)
	if cell >= 6 {
		// Valuations alternate in whole-word runs.
		run := 1 << (cell - 6)
		for w := range s.words {
			if (w/run)%2 == 1 {
				s.words[w] = ^uint64(0)
			}
		}
		return s
	}
	var pattern uint64
	for b := 0; b < 64; b++ {
		if (b>>cell)&1 == 1 {
			pattern |= uint64(1) << b
		}
	}
	for w := range s.words {
		s.words[w] = pattern
	}
	return s.valuationMask()
}

// ParameterCell returns the table cell that governs the value of an
// explicit parameter applied to the given arguments in the given state.
func (e *Encoder) ParameterCell(state graph.State, id bn.ParameterID, args []bn.VariableID) int {
	return e.paramOffsets[id] + tableIndex(state, args)
}

// AnonymousCell returns the table cell that governs the implicit update
// function of a variable in the given state. The variable must not have an
// explicit update function.
func (e *Encoder) AnonymousCell(state graph.State, v bn.VariableID) int {
	offset := e.anonOffsets[v]
	if offset < 0 {
		panic("variable has an explicit update function")
	}
	return offset + tableIndex(state, e.regulators[v])
}

// Regulators returns the cached regulators of a variable, ordered by id.
func (e *Encoder) Regulators(v bn.VariableID) []bn.VariableID {
	return e.regulators[v]
}

// tableIndex packs the state values of the arguments into a function table
// index; the first argument becomes the most significant bit.
func tableIndex(state graph.State, args []bn.VariableID) int {
	index := 0
	for i, a := range args {
		if state.Bit(int(a)) {
			index++
		}
		if i < len(args)-1 {
			index <<= 1
		}
	}
	return index
}
