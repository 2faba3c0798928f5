// SPDX-License-Identifier: MIT

// Package bn implements parametrised boolean networks: a regulatory graph
// over named variables, optionally annotated with partially specified
// update functions. Unknown behaviour is expressed through explicit
// parameters (uninterpreted boolean functions) that later analysis can
// instantiate.
package bn

// VariableID identifies a network variable. IDs are dense indices into the
// variable list of the owning graph, so they are only meaningful together
// with the graph that issued them.
type VariableID int

// ParameterID identifies an explicit parameter of a boolean network.
type ParameterID int

// Variable is a named component of the regulatory graph.
type Variable struct {
	Name string
}

// Parameter is an uninterpreted boolean function of a fixed arity. A
// parameter with arity zero is an unknown boolean constant.
type Parameter struct {
	Name  string
	Arity int
}

// Effect is the monotonicity of a regulation, when known.
type Effect uint8

const (
	// EffectUnknown marks a regulation with unspecified monotonicity.
	EffectUnknown Effect = iota
	EffectActivation
	EffectInhibition
)

func (e Effect) String() string {
	switch e {
	case EffectActivation:
		return "activation"
	case EffectInhibition:
		return "inhibition"
	default:
		return "unknown"
	}
}

// Regulation is a directed edge of the regulatory graph. Observable
// regulations must have an effect on the target's behaviour in every
// admissible instantiation of the network.
type Regulation struct {
	Source     VariableID
	Target     VariableID
	Observable bool
	Effect     Effect
}
