// SPDX-License-Identifier: MIT

package bn

import (
	"fmt"
	"regexp"
	"sort"
)

// A regulation line looks like "source -> target" where the arrow encodes
// the effect (">" activation, "|" inhibition, "?" unknown) and an optional
// trailing "?" marks the regulation as non-observable.
var regulationRe = regexp.MustCompile(
	`^\s*(?P<source>[a-zA-Z0-9_]+)\s*-(?P<effect>[|>?])(?P<observable>\??)\s*(?P<target>[a-zA-Z0-9_]+)\s*$`,
)

// RegulatoryGraph is a directed graph over named variables with at most one
// regulation per ordered variable pair.
type RegulatoryGraph struct {
	variables   []Variable
	regulations []Regulation
	index       map[string]VariableID
}

// NewRegulatoryGraph creates an empty graph over the given variables,
// keeping their order. Duplicate names are rejected.
func NewRegulatoryGraph(names []string) (*RegulatoryGraph, error) {
	g := &RegulatoryGraph{
		variables: make([]Variable, 0, len(names)),
		index:     make(map[string]VariableID, len(names)),
	}
	for _, name := range names {
		if _, ok := g.index[name]; ok {
			return nil, fmt.Errorf("duplicate variable %q", name)
		}
		g.index[name] = VariableID(len(g.variables))
		g.variables = append(g.variables, Variable{Name: name})
	}
	return g, nil
}

// FromRegulationStrings builds a graph whose variable set is collected from
// the regulations themselves. Variables are ordered alphabetically, which
// keeps the result independent of the regulation order.
func FromRegulationStrings(lines []string) (*RegulatoryGraph, error) {
	parsed := make([]regulationLine, 0, len(lines))
	names := make(map[string]struct{})
	for _, line := range lines {
		r, err := parseRegulationLine(line)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, r)
		names[r.source] = struct{}{}
		names[r.target] = struct{}{}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	g, err := NewRegulatoryGraph(sorted)
	if err != nil {
		return nil, err
	}
	for _, r := range parsed {
		if err := g.AddRegulation(r.source, r.target, r.observable, r.effect); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddRegulation adds a regulation between two existing variables. Both
// variables must be present in the graph and the ordered pair must not be
// regulated yet.
func (g *RegulatoryGraph) AddRegulation(source, target string, observable bool, effect Effect) error {
	s, ok := g.index[source]
	if !ok {
		return fmt.Errorf("unknown regulator variable %q", source)
	}
	t, ok := g.index[target]
	if !ok {
		return fmt.Errorf("unknown regulated variable %q", target)
	}
	if _, ok := g.FindRegulation(s, t); ok {
		return fmt.Errorf("regulation (%s, %s) already defined", source, target)
	}
	g.regulations = append(g.regulations, Regulation{
		Source:     s,
		Target:     t,
		Observable: observable,
		Effect:     effect,
	})
	return nil
}

// AddRegulationString parses one regulation line and adds it to the graph.
func (g *RegulatoryGraph) AddRegulationString(line string) error {
	r, err := parseRegulationLine(line)
	if err != nil {
		return err
	}
	return g.AddRegulation(r.source, r.target, r.observable, r.effect)
}

// VariableID resolves a variable name.
func (g *RegulatoryGraph) VariableID(name string) (VariableID, bool) {
	id, ok := g.index[name]
	return id, ok
}

// HasVariable reports whether the graph contains a variable of that name.
func (g *RegulatoryGraph) HasVariable(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Variable returns the variable with the given id. The id must come from
// this graph.
func (g *RegulatoryGraph) Variable(id VariableID) Variable {
	return g.variables[id]
}

// Variables returns all variables in their declaration order.
func (g *RegulatoryGraph) Variables() []Variable {
	return g.variables
}

// NumVars returns the number of variables.
func (g *RegulatoryGraph) NumVars() int {
	return len(g.variables)
}

// FindRegulation looks up the regulation between an ordered variable pair.
func (g *RegulatoryGraph) FindRegulation(source, target VariableID) (Regulation, bool) {
	for _, r := range g.regulations {
		if r.Source == source && r.Target == target {
			return r, true
		}
	}
	return Regulation{}, false
}

// Regulations returns all regulations in insertion order.
func (g *RegulatoryGraph) Regulations() []Regulation {
	return g.regulations
}

// Regulators returns the sources of all regulations targeting the given
// variable, ordered by variable id.
func (g *RegulatoryGraph) Regulators(target VariableID) []VariableID {
	var result []VariableID
	for _, r := range g.regulations {
		if r.Target == target {
			result = append(result, r.Source)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

type regulationLine struct {
	source     string
	target     string
	observable bool
	effect     Effect
}

func parseRegulationLine(line string) (regulationLine, error) {
	m := regulationRe.FindStringSubmatch(line)
	if m == nil {
		return regulationLine{}, fmt.Errorf("line %q does not describe a regulation", line)
	}
	r := regulationLine{
		source:     m[regulationRe.SubexpIndex("source")],
		target:     m[regulationRe.SubexpIndex("target")],
		observable: m[regulationRe.SubexpIndex("observable")] == "",
	}
	switch m[regulationRe.SubexpIndex("effect")] {
	case ">":
		r.effect = EffectActivation
	case "|":
		r.effect = EffectInhibition
	case "?":
		r.effect = EffectUnknown
	}
	return r, nil
}
