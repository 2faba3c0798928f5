// SPDX-License-Identifier: MIT

package bn

import "github.com/sybila/biodivine/internal/sets"

// UpdateFunction is an update function expression resolved against a
// concrete network: names are replaced with variable and parameter ids.
// Instances are produced by BooleanNetwork.AddUpdateFunction and are
// immutable afterwards.
type UpdateFunction interface {
	// Variables collects every variable the function depends on,
	// including variables passed as parameter arguments.
	Variables() sets.Explicit[VariableID]
	updateNode()
}

// Var reads the current value of a variable.
type Var struct {
	ID VariableID
}

// ParamCall applies an explicit parameter to variable arguments. Inputs is
// empty for zero arity parameters.
type ParamCall struct {
	ID     ParameterID
	Inputs []VariableID
}

// Not negates its operand.
type Not struct {
	Inner UpdateFunction
}

// Binary joins two operands with a boolean connective.
type Binary struct {
	Op    Op
	Left  UpdateFunction
	Right UpdateFunction
}

func (Var) updateNode()       {}
func (ParamCall) updateNode() {}
func (Not) updateNode()       {}
func (Binary) updateNode()    {}

func (f Var) Variables() sets.Explicit[VariableID] {
	return sets.FromItems(f.ID)
}

func (f ParamCall) Variables() sets.Explicit[VariableID] {
	return sets.FromItems(f.Inputs...)
}

func (f Not) Variables() sets.Explicit[VariableID] {
	return f.Inner.Variables()
}

func (f Binary) Variables() sets.Explicit[VariableID] {
	return f.Left.Variables().Union(f.Right.Variables())
}
