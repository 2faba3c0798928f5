// SPDX-License-Identifier: MIT

// Package async builds the asynchronous state-transition graph of a
// parametrised boolean network. States are bitmaps of variable values and
// every transition flips exactly one variable; each edge carries the set
// of parameter valuations for which the flip is enabled.
package async

import (
	"errors"
	"fmt"
	"iter"

	"github.com/sybila/biodivine/internal/bn"
	"github.com/sybila/biodivine/internal/graph"
	"github.com/sybila/biodivine/internal/params"
)

// maxVariables bounds the state space to the width of graph.State.
const maxVariables = 32

// Graph is the asynchronous semantics of a boolean network. The unit
// parameter set holds exactly the valuations that satisfy the monotonicity
// and observability constraints of every regulation.
type Graph struct {
	network *bn.BooleanNetwork
	encoder *params.Encoder
	unit    params.Set
}

var _ graph.Graph[params.Set] = (*Graph)(nil)

// New checks the regulation constraints of the network and builds its
// asynchronous graph. It fails when the network has more than 32 variables
// or when no parameter valuation satisfies the constraints.
func New(network *bn.BooleanNetwork) (*Graph, error) {
	rg := network.Graph()
	if rg.NumVars() > maxVariables {
		return nil, fmt.Errorf(
			"can't create a state space graph over %d variables, at most %d supported",
			rg.NumVars(), maxVariables,
		)
	}
	encoder, err := params.NewEncoder(network)
	if err != nil {
		return nil, err
	}

	// Constraints are evaluated against the unconstrained valuation space;
	// the unit set is only narrowed once all of them are collected.
	g := &Graph{network: network, encoder: encoder, unit: encoder.Unit()}
	condition := encoder.Unit()
	for _, r := range rg.Regulations() {
		if r.Effect != bn.EffectUnknown {
			condition = condition.Intersect(g.monotonicity(r.Source, r.Target, r.Effect))
		}
		if r.Observable {
			condition = condition.Intersect(g.observability(r.Source, r.Target))
		}
	}
	if condition.IsEmpty() {
		return nil, errors.New("no update functions satisfy the regulation constraints")
	}
	g.unit = condition
	return g, nil
}

// Network returns the underlying boolean network.
func (g *Graph) Network() *bn.BooleanNetwork {
	return g.network
}

// Encoder returns the parameter encoder of this graph.
func (g *Graph) Encoder() *params.Encoder {
	return g.encoder
}

// UnitParams returns the admissible parameter valuations of the graph.
func (g *Graph) UnitParams() params.Set {
	return g.unit
}

// EmptyParams returns the empty valuation set of this graph's encoder.
func (g *Graph) EmptyParams() params.Set {
	return g.encoder.Empty()
}

// NumStates returns the size of the state space.
func (g *Graph) NumStates() int {
	return 1 << g.network.Graph().NumVars()
}

// States enumerates the whole state space.
func (g *Graph) States() iter.Seq[graph.State] {
	return func(yield func(graph.State) bool) {
		for i := 0; i < g.NumStates(); i++ {
			if !yield(graph.State(i)) {
				return
			}
		}
	}
}

// Fwd returns the successor operator of the graph.
func (g *Graph) Fwd() graph.EvolutionOperator[params.Set] {
	return fwd{g}
}

// Bwd returns the predecessor operator of the graph.
func (g *Graph) Bwd() graph.EvolutionOperator[params.Set] {
	return bwd{g}
}

// EdgeParams computes the parameter set for which the value of the given
// variable can flip in the given state.
func (g *Graph) EdgeParams(state graph.State, v bn.VariableID) params.Set {
	// The set that sends the variable to true in this state.
	var toTrue params.Set
	if f, ok := g.network.UpdateFunctionOf(v); ok {
		toTrue = g.evalUpdate(state, f)
	} else {
		toTrue = g.encoder.CellTrue(g.encoder.AnonymousCell(state, v))
	}
	if state.Bit(int(v)) {
		return g.unit.Minus(toTrue)
	}
	return toTrue
}

type fwd struct{ g *Graph }

func (o fwd) Step(source graph.State) []graph.Edge[params.Set] {
	vars := o.g.network.Graph().NumVars()
	edges := make([]graph.Edge[params.Set], 0, vars)
	for v := 0; v < vars; v++ {
		edges = append(edges, graph.Edge[params.Set]{
			State:  source.FlipBit(v),
			Params: o.g.EdgeParams(source, bn.VariableID(v)),
		})
	}
	return edges
}

type bwd struct{ g *Graph }

func (o bwd) Step(target graph.State) []graph.Edge[params.Set] {
	vars := o.g.network.Graph().NumVars()
	edges := make([]graph.Edge[params.Set], 0, vars)
	for v := 0; v < vars; v++ {
		source := target.FlipBit(v)
		edges = append(edges, graph.Edge[params.Set]{
			State:  source,
			Params: o.g.EdgeParams(source, bn.VariableID(v)),
		})
	}
	return edges
}

// evalUpdate computes the parameter set for which the update function
// evaluates to true in the given state.
func (g *Graph) evalUpdate(state graph.State, f bn.UpdateFunction) params.Set {
	switch f := f.(type) {
	case bn.Var:
		if state.Bit(int(f.ID)) {
			return g.unit
		}
		return g.encoder.Empty()
	case bn.ParamCall:
		return g.encoder.CellTrue(g.encoder.ParameterCell(state, f.ID, f.Inputs))
	case bn.Not:
		return g.unit.Minus(g.evalUpdate(state, f.Inner))
	case bn.Binary:
		a := g.evalUpdate(state, f.Left)
		b := g.evalUpdate(state, f.Right)
		switch f.Op {
		case bn.OpAnd:
			return a.Intersect(b)
		case bn.OpOr:
			return a.Union(b)
		case bn.OpXor:
			return a.Minus(b).Union(b.Minus(a))
		case bn.OpImp:
			return g.encoder.Unit().Minus(a.Minus(b))
		case bn.OpIff:
			return g.encoder.Unit().Minus(a.Minus(b).Union(b.Minus(a)))
		}
	}
	panic("invalid update function")
}

// functionTrue is evalUpdate extended to variables with implicit update
// functions.
func (g *Graph) functionTrue(state graph.State, v bn.VariableID) params.Set {
	if f, ok := g.network.UpdateFunctionOf(v); ok {
		return g.evalUpdate(state, f)
	}
	return g.encoder.CellTrue(g.encoder.AnonymousCell(state, v))
}

// observability requires that flipping the regulator changes the value of
// the target's update function in at least one state.
func (g *Graph) observability(regulator, target bn.VariableID) params.Set {
	condition := g.encoder.Empty()
	g.regulatorPairs(regulator, target, func(inactive, active graph.State) {
		it := g.functionTrue(inactive, target)
		at := g.functionTrue(active, target)
		condition = condition.Union(at.Minus(it).Union(it.Minus(at)))
	})
	return condition
}

// monotonicity requires that flipping the regulator moves the value of the
// target's update function only in the direction given by the effect.
func (g *Graph) monotonicity(regulator, target bn.VariableID, effect bn.Effect) params.Set {
	full := g.encoder.Unit()
	condition := g.encoder.Unit()
	g.regulatorPairs(regulator, target, func(inactive, active graph.State) {
		it := g.functionTrue(inactive, target)
		at := g.functionTrue(active, target)
		if effect == bn.EffectActivation {
			// increasing: f(0) = 1 implies f(1) = 1
			condition = condition.Intersect(full.Minus(it.Minus(at)))
		} else {
			// decreasing: f(1) = 1 implies f(0) = 1
			condition = condition.Intersect(full.Minus(at.Minus(it)))
		}
	})
	return condition
}

// regulatorPairs enumerates every pair of states that differ only in the
// regulator, with the remaining regulators of the target ranging over all
// combinations and every other variable fixed to zero.
func (g *Graph) regulatorPairs(regulator, target bn.VariableID, visit func(inactive, active graph.State)) {
	regulators := g.encoder.Regulators(target)
	position := -1
	for i, r := range regulators {
		if r == regulator {
			position = i
		}
	}
	if position < 0 {
		return
	}
	mask := 1 << position
	tableSize := 1 << len(regulators)
	for index := 0; index < tableSize; index++ {
		if index&mask != 0 {
			continue
		}
		inactive := packTableIndex(index, regulators)
		visit(inactive, inactive.FlipBit(int(regulator)))
	}
}

// packTableIndex spreads the bits of a function table index over the
// regulator variables of a state; all other variables stay zero.
func packTableIndex(index int, regulators []bn.VariableID) graph.State {
	var state graph.State
	for i, r := range regulators {
		if (index>>i)&1 == 1 {
			state |= 1 << int(r)
		}
	}
	return state
}
