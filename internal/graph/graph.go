// SPDX-License-Identifier: MIT

// Package graph defines the abstract interface of parametrised transition
// systems: states identified by packed variable bitmaps, and evolution
// operators that annotate every edge with the parameter set for which the
// edge is present.
package graph

import (
	"fmt"
	"iter"

	"github.com/sybila/biodivine/internal/sets"
)

// State identifies one state of a transition system. Bit i holds the value
// of variable i, which limits concrete systems to 32 variables.
type State uint32

// Bit returns the value of the given variable in this state.
func (s State) Bit(i int) bool {
	return (s>>i)&1 == 1
}

// FlipBit returns the state with the value of one variable flipped.
func (s State) FlipBit(i int) State {
	return s ^ (1 << i)
}

func (s State) String() string {
	return fmt.Sprintf("State(%d)", uint32(s))
}

// Edge is one outgoing (or incoming) transition together with the set of
// parameter valuations for which the transition exists. An edge with an
// empty parameter set is never present.
type Edge[P sets.Set[P]] struct {
	State  State
	Params P
}

// EvolutionOperator produces the transitions adjacent to a state. Forward
// operators return successors, backward operators return predecessors.
//
// The parameter sets reuse the set algebra of the sets package; note that
// there is no complement operation, because the unit set of an analysis is
// itself often a proper subset of all valuations. Complement against the
// unit set is expressed with Minus.
type EvolutionOperator[P sets.Set[P]] interface {
	Step(source State) []Edge[P]
}

// Graph is a parametrised transition system.
type Graph[P sets.Set[P]] interface {
	// States enumerates every state of the system.
	States() iter.Seq[State]

	// NumStates returns the total number of states.
	NumStates() int

	Fwd() EvolutionOperator[P]
	Bwd() EvolutionOperator[P]
}
