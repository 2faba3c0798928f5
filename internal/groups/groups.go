// SPDX-License-Identifier: MIT

// Package groups implements the second tier of the parsing utilities: it
// turns a flat token sequence into a tree by matching recursive groups
// (parentheses, brackets, tags and similar).
//
// A group is described by a Rule with three predicates: Opens and Closes
// identify tokens that can potentially delimit the group, and IsPair
// verifies that a concrete open/close token pair really forms one. Using
// predicates instead of direct comparison supports payload-dependent
// pairing such as <tag> ... </tag>.
package groups

import (
	"fmt"

	"github.com/sybila/biodivine/internal/tokens"
)

// Rule describes one group kind. The name is used in error messages and is
// attached to the produced tree nodes.
type Rule[P any] struct {
	Name   string
	Opens  func(t *tokens.Token[P]) bool
	Closes func(t *tokens.Token[P]) bool
	IsPair func(open, close *tokens.Token[P]) bool
}

// DataRule builds a rule that matches groups delimited by exact token text.
func DataRule[P any](name, open, close string) Rule[P] {
	return Rule[P]{
		Name:   name,
		Opens:  func(t *tokens.Token[P]) bool { return t.Data == open },
		Closes: func(t *tokens.Token[P]) bool { return t.Data == close },
		IsPair: func(o, c *tokens.Token[P]) bool { return o.Data == open && c.Data == close },
	}
}

// Tree is a node of the grouped token structure: either a plain value token
// or a named group with child forest. The Close token of a group is nil
// when the group was force-closed during error recovery.
type Tree[P any] struct {
	// Value is set for leaf nodes and nil for groups.
	Value *tokens.Token[P]

	// Group fields; Name is empty for leaf nodes.
	Name     string
	Open     *tokens.Token[P]
	Close    *tokens.Token[P]
	Children Forest[P]
}

// Forest is an ordered sequence of trees.
type Forest[P any] []Tree[P]

// IsGroup reports whether the node is a group rather than a value token.
func (t *Tree[P]) IsGroup() bool {
	return t.Value == nil
}

// Error describes a group that could not be matched: either an unexpected
// closing token (OpenAt nil) or an unclosed group (CloseAt possibly nil
// when the input simply ended).
type Error struct {
	Rule    string
	OpenAt  *int
	CloseAt *int
}

func (e *Error) Error() string {
	switch {
	case e.OpenAt == nil && e.CloseAt != nil:
		return fmt.Sprintf("unexpected closing token for group %q at position %d", e.Rule, *e.CloseAt)
	case e.OpenAt != nil && e.CloseAt != nil:
		return fmt.Sprintf("group %q opened at position %d force-closed at position %d", e.Rule, *e.OpenAt, *e.CloseAt)
	case e.OpenAt != nil:
		return fmt.Sprintf("group %q opened at position %d is never closed", e.Rule, *e.OpenAt)
	default:
		return fmt.Sprintf("malformed group %q", e.Rule)
	}
}

func unexpectedClose[P any](rule *Rule[P], token *tokens.Token[P]) *Error {
	at := token.StartsAt
	return &Error{Rule: rule.Name, CloseAt: &at}
}

func unclosedGroup[P any](rule *Rule[P], open *tokens.Token[P], close *tokens.Token[P]) *Error {
	openAt := open.StartsAt
	e := &Error{Rule: rule.Name, OpenAt: &openAt}
	if close != nil {
		closeAt := close.StartsAt
		e.CloseAt = &closeAt
	}
	return e
}

// Builder matches a list of group rules against token sequences.
type Builder[P any] struct {
	rules []Rule[P]
}

// NewBuilder creates a builder from a list of group rules.
func NewBuilder[P any](rules []Rule[P]) *Builder[P] {
	return &Builder[P]{rules: rules}
}

// openGroup holds one unfinished group while the builder emulates
// recursion with an explicit stack.
type openGroup[P any] struct {
	rule   *Rule[P]
	open   *tokens.Token[P]
	forest Forest[P]
}

// Group transforms a token sequence into a forest, failing on the first
// unexpected closing token or on an unclosed trailing group.
func (b *Builder[P]) Group(tks []tokens.Token[P]) (Forest[P], error) {
	var root Forest[P]
	var stack []openGroup[P]
	for i := range tks {
		token := &tks[i]
		if rule := b.opens(token); rule != nil {
			stack = append(stack, openGroup[P]{rule: rule, open: token})
			continue
		}
		if tryCloseGroup(token, &root, &stack) {
			continue
		}
		if rule := b.canClose(token); rule != nil {
			return nil, unexpectedClose(rule, token)
		}
		pushResult(Tree[P]{Value: token}, &root, &stack)
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return nil, unclosedGroup(top.rule, top.open, nil)
	}
	return root, nil
}

// GroupWithRecovery transforms a token sequence into a forest, recovering
// from mismatched groups.
//
// An unexpected closing token has two possible causes: the current group
// was never closed and the token closes a group deeper in the stack
// (`{[}`), or the token closes a group that was never opened (`{]}`). For
// the first case every skipped group is force-closed with an error; for the
// second the token is dropped with an error. Groups still open at the end
// of the input are emitted without a closing token, with errors in source
// order.
func (b *Builder[P]) GroupWithRecovery(tks []tokens.Token[P]) (Forest[P], []*Error) {
	var root Forest[P]
	var stack []openGroup[P]
	var errs []*Error
	for i := range tks {
		token := &tks[i]
		if rule := b.opens(token); rule != nil {
			stack = append(stack, openGroup[P]{rule: rule, open: token})
			continue
		}
		if tryCloseGroup(token, &root, &stack) {
			continue
		}
		rule := b.canClose(token)
		if rule == nil {
			pushResult(Tree[P]{Value: token}, &root, &stack)
			continue
		}
		closable := false
		for j := len(stack) - 1; j >= 0; j-- {
			if stack[j].rule.IsPair(stack[j].open, token) {
				closable = true
				break
			}
		}
		if !closable {
			errs = append(errs, unexpectedClose(rule, token))
			continue
		}
		// Force-close unfinished groups until the matching one is found.
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			closes := top.rule.IsPair(top.open, token)
			group := Tree[P]{
				Name:     top.rule.Name,
				Open:     top.open,
				Children: top.forest,
			}
			if closes {
				group.Close = token
			} else {
				errs = append(errs, unclosedGroup(top.rule, top.open, token))
			}
			pushResult(group, &root, &stack)
			if closes {
				break
			}
		}
	}
	// Emit trailing unclosed groups; stack order is innermost first, but
	// errors are reported in source order.
	var tailErrs []*Error
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		pushResult(Tree[P]{
			Name:     top.rule.Name,
			Open:     top.open,
			Children: top.forest,
		}, &root, &stack)
		tailErrs = append(tailErrs, unclosedGroup(top.rule, top.open, nil))
	}
	for i := len(tailErrs) - 1; i >= 0; i-- {
		errs = append(errs, tailErrs[i])
	}
	return root, errs
}

// tryCloseGroup closes the innermost open group when the token pairs with
// it, pushing the finished group into the result.
func tryCloseGroup[P any](token *tokens.Token[P], root *Forest[P], stack *[]openGroup[P]) bool {
	if len(*stack) == 0 {
		return false
	}
	top := (*stack)[len(*stack)-1]
	if !top.rule.IsPair(top.open, token) {
		return false
	}
	*stack = (*stack)[:len(*stack)-1]
	pushResult(Tree[P]{
		Name:     top.rule.Name,
		Open:     top.open,
		Close:    token,
		Children: top.forest,
	}, root, stack)
	return true
}

// pushResult appends a finished tree either to the innermost open group or
// to the root forest.
func pushResult[P any](tree Tree[P], root *Forest[P], stack *[]openGroup[P]) {
	if len(*stack) > 0 {
		top := &(*stack)[len(*stack)-1]
		top.forest = append(top.forest, tree)
		return
	}
	*root = append(*root, tree)
}

func (b *Builder[P]) opens(token *tokens.Token[P]) *Rule[P] {
	for i := range b.rules {
		if b.rules[i].Opens(token) {
			return &b.rules[i]
		}
	}
	return nil
}

func (b *Builder[P]) canClose(token *tokens.Token[P]) *Rule[P] {
	for i := range b.rules {
		if b.rules[i].Closes(token) {
			return &b.rules[i]
		}
	}
	return nil
}
