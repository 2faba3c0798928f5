// SPDX-License-Identifier: MIT

package bn

import (
	"fmt"
	"regexp"
	"strings"
)

// An update function line looks like "$variable: expression".
var updateLineRe = regexp.MustCompile(`^\$\s*(?P<name>[a-zA-Z0-9_]+)\s*:\s*(?P<function>.+)$`)

// BooleanNetwork is a regulatory graph extended with update functions.
// Variables without an update function have fully unspecified behaviour;
// partially specified behaviour is expressed through explicit parameters
// shared across the whole network.
type BooleanNetwork struct {
	graph      *RegulatoryGraph
	parameters []Parameter
	paramIndex map[string]ParameterID
	updates    []UpdateFunction
}

// NewBooleanNetwork wraps a regulatory graph into a network with no update
// functions. The graph must not be modified afterwards.
func NewBooleanNetwork(graph *RegulatoryGraph) *BooleanNetwork {
	return &BooleanNetwork{
		graph:      graph,
		paramIndex: make(map[string]ParameterID),
		updates:    make([]UpdateFunction, graph.NumVars()),
	}
}

// ParseBooleanNetwork reads a network from its textual format: every
// non-empty line is either a regulation or an update function assignment
// "$variable: expression". Variables are collected from the regulations and
// ordered alphabetically.
func ParseBooleanNetwork(text string) (*BooleanNetwork, error) {
	var regulations []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !updateLineRe.MatchString(line) {
			regulations = append(regulations, line)
		}
	}
	graph, err := FromRegulationStrings(regulations)
	if err != nil {
		return nil, err
	}
	network := NewBooleanNetwork(graph)
	for _, line := range strings.Split(text, "\n") {
		m := updateLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		name := m[updateLineRe.SubexpIndex("name")]
		function := m[updateLineRe.SubexpIndex("function")]
		if err := network.AddUpdateFunction(name, function); err != nil {
			return nil, err
		}
	}
	return network, nil
}

// AddUpdateFunction parses an expression and attaches it as the update
// function of the named variable. Names that are not variables of the graph
// become explicit parameters; a parameter used with two different arities
// is rejected, and every variable the function reads must regulate the
// target.
func (n *BooleanNetwork) AddUpdateFunction(variable, expression string) error {
	target, ok := n.graph.VariableID(variable)
	if !ok {
		return fmt.Errorf("unknown variable %q", variable)
	}
	if n.updates[target] != nil {
		return fmt.Errorf("variable %q already has an update function", variable)
	}

	expr, err := ParseExpr(expression)
	if err != nil {
		return err
	}
	expr = n.swapUnaryParameters(expr)

	if err := n.registerParameters(expr); err != nil {
		return err
	}

	update, err := n.bind(expr)
	if err != nil {
		return err
	}

	for regulator := range update.Variables().Iter() {
		if _, ok := n.graph.FindRegulation(regulator, target); !ok {
			return fmt.Errorf(
				"%s depends on %s but the regulation is not specified",
				variable, n.graph.Variable(regulator).Name,
			)
		}
	}

	n.updates[target] = update
	return nil
}

// Graph returns the underlying regulatory graph.
func (n *BooleanNetwork) Graph() *RegulatoryGraph {
	return n.graph
}

// UpdateFunctionOf returns the update function of a variable, or false when
// the variable's behaviour is unspecified.
func (n *BooleanNetwork) UpdateFunctionOf(v VariableID) (UpdateFunction, bool) {
	f := n.updates[v]
	return f, f != nil
}

// Parameter returns the parameter with the given id.
func (n *BooleanNetwork) Parameter(id ParameterID) Parameter {
	return n.parameters[id]
}

// Parameters returns all parameters in the order of first occurrence.
func (n *BooleanNetwork) Parameters() []Parameter {
	return n.parameters
}

// ParameterID resolves a parameter name.
func (n *BooleanNetwork) ParameterID(name string) (ParameterID, bool) {
	id, ok := n.paramIndex[name]
	return id, ok
}

// swapUnaryParameters rewrites names that are not graph variables into zero
// arity parameter applications, so that "f" and "f()" mean the same thing.
func (n *BooleanNetwork) swapUnaryParameters(e Expr) Expr {
	switch e := e.(type) {
	case NameExpr:
		if n.graph.HasVariable(e.Name) {
			return e
		}
		return CallExpr{Name: e.Name}
	case NotExpr:
		return NotExpr{Inner: n.swapUnaryParameters(e.Inner)}
	case BinaryExpr:
		return BinaryExpr{
			Op:    e.Op,
			Left:  n.swapUnaryParameters(e.Left),
			Right: n.swapUnaryParameters(e.Right),
		}
	default:
		return e
	}
}

// registerParameters declares every parameter application of the expression
// in the network, checking arity consistency and name clashes with
// variables.
func (n *BooleanNetwork) registerParameters(e Expr) error {
	switch e := e.(type) {
	case CallExpr:
		if n.graph.HasVariable(e.Name) {
			return fmt.Errorf("%s can't be both a variable and a parameter", e.Name)
		}
		if id, ok := n.paramIndex[e.Name]; ok {
			if have := n.parameters[id].Arity; have != len(e.Args) {
				return fmt.Errorf(
					"parameter %s occurs with arity %d and %d",
					e.Name, have, len(e.Args),
				)
			}
			return nil
		}
		n.paramIndex[e.Name] = ParameterID(len(n.parameters))
		n.parameters = append(n.parameters, Parameter{Name: e.Name, Arity: len(e.Args)})
		return nil
	case NotExpr:
		return n.registerParameters(e.Inner)
	case BinaryExpr:
		if err := n.registerParameters(e.Left); err != nil {
			return err
		}
		return n.registerParameters(e.Right)
	default:
		return nil
	}
}

// bind resolves names to ids. All parameters must be registered already.
func (n *BooleanNetwork) bind(e Expr) (UpdateFunction, error) {
	switch e := e.(type) {
	case NameExpr:
		id, ok := n.graph.VariableID(e.Name)
		if !ok {
			return nil, fmt.Errorf("unknown variable %q", e.Name)
		}
		return Var{ID: id}, nil
	case CallExpr:
		id, ok := n.paramIndex[e.Name]
		if !ok {
			return nil, fmt.Errorf("unknown parameter %q", e.Name)
		}
		var inputs []VariableID
		for _, arg := range e.Args {
			v, ok := n.graph.VariableID(arg)
			if !ok {
				return nil, fmt.Errorf("unknown variable %q in %s", arg, e)
			}
			inputs = append(inputs, v)
		}
		return ParamCall{ID: id, Inputs: inputs}, nil
	case NotExpr:
		inner, err := n.bind(e.Inner)
		if err != nil {
			return nil, err
		}
		return Not{Inner: inner}, nil
	case BinaryExpr:
		left, err := n.bind(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := n.bind(e.Right)
		if err != nil {
			return nil, err
		}
		return Binary{Op: e.Op, Left: left, Right: right}, nil
	default:
		return nil, fmt.Errorf("unsupported expression %T", e)
	}
}

// String serialises the network back into its textual format. Parsing the
// result yields an equivalent network up to variable ordering.
func (n *BooleanNetwork) String() string {
	var b strings.Builder
	for _, r := range n.graph.Regulations() {
		effect := "?"
		switch r.Effect {
		case EffectActivation:
			effect = ">"
		case EffectInhibition:
			effect = "|"
		}
		observable := ""
		if !r.Observable {
			observable = "?"
		}
		fmt.Fprintf(&b, "%s -%s%s %s\n",
			n.graph.Variable(r.Source).Name, effect, observable, n.graph.Variable(r.Target).Name)
	}
	for i, f := range n.updates {
		if f == nil {
			continue
		}
		fmt.Fprintf(&b, "$%s: %s\n", n.graph.variables[i].Name, n.FormatUpdate(f))
	}
	return b.String()
}

// FormatUpdate renders an update function with the variable and parameter
// names of this network.
func (n *BooleanNetwork) FormatUpdate(f UpdateFunction) string {
	switch f := f.(type) {
	case Var:
		return n.graph.Variable(f.ID).Name
	case ParamCall:
		if len(f.Inputs) == 0 {
			return n.parameters[f.ID].Name
		}
		names := make([]string, 0, len(f.Inputs))
		for _, in := range f.Inputs {
			names = append(names, n.graph.Variable(in).Name)
		}
		return fmt.Sprintf("%s(%s)", n.parameters[f.ID].Name, strings.Join(names, ", "))
	case Not:
		return "!" + n.FormatUpdate(f.Inner)
	case Binary:
		return fmt.Sprintf("(%s %s %s)", n.FormatUpdate(f.Left), f.Op, n.FormatUpdate(f.Right))
	default:
		return "?"
	}
}
