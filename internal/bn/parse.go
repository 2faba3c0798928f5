// SPDX-License-Identifier: MIT

package bn

import (
	"fmt"

	"github.com/sybila/biodivine/internal/groups"
	"github.com/sybila/biodivine/internal/tokens"
)

// Token payloads of the update function lexer.
type tokKind uint8

const (
	tokName tokKind = iota
	tokNot
	tokAnd
	tokOr
	tokXor
	tokImp
	tokIff
	tokComma
	tokOpen
	tokClose
)

var exprTokenizer = tokens.IgnoringWhitespace([]tokens.Rule[tokKind]{
	tokens.NewRule(`[a-zA-Z0-9_]+`, func([]string) tokKind { return tokName }),
	tokens.Const(`<=>`, tokIff),
	tokens.Const(`=>`, tokImp),
	tokens.Const(`!`, tokNot),
	tokens.Const(`&`, tokAnd),
	tokens.Const(`\|`, tokOr),
	tokens.Const(`\^`, tokXor),
	tokens.Const(`,`, tokComma),
	tokens.Const(`\(`, tokOpen),
	tokens.Const(`\)`, tokClose),
})

var exprGroups = groups.NewBuilder([]groups.Rule[tokKind]{
	{
		Name:   "parenthesis",
		Opens:  func(t *tokens.Token[tokKind]) bool { return t.Payload == tokOpen },
		Closes: func(t *tokens.Token[tokKind]) bool { return t.Payload == tokClose },
		IsPair: func(o, c *tokens.Token[tokKind]) bool { return c.Payload == tokClose },
	},
})

// ParseExpr parses an update function expression. Binary operators bind
// with precedence <=> < => < | < & < ^ and associate to the right;
// negation binds strongest. A name followed by a parenthesised argument
// list is a parameter application.
func ParseExpr(input string) (Expr, error) {
	tks, err := exprTokenizer.Read(input)
	if err != nil {
		return nil, fmt.Errorf("tokenize update function: %w", err)
	}
	forest, err := exprGroups.Group(tks)
	if err != nil {
		return nil, fmt.Errorf("group update function: %w", err)
	}
	return parseIff(forest)
}

// indexOfKind finds the first top-level token of the given kind.
func indexOfKind(forest groups.Forest[tokKind], kind tokKind) int {
	for i := range forest {
		if forest[i].Value != nil && forest[i].Value.Payload == kind {
			return i
		}
	}
	return -1
}

// The parser peels binary connectives off in precedence order. Each level
// parses its left operand one level down and recurses into itself on the
// right, giving right associativity.

func parseIff(forest groups.Forest[tokKind]) (Expr, error) {
	if i := indexOfKind(forest, tokIff); i >= 0 {
		return parseBinary(OpIff, forest, i, parseImp, parseIff)
	}
	return parseImp(forest)
}

func parseImp(forest groups.Forest[tokKind]) (Expr, error) {
	if i := indexOfKind(forest, tokImp); i >= 0 {
		return parseBinary(OpImp, forest, i, parseOr, parseImp)
	}
	return parseOr(forest)
}

func parseOr(forest groups.Forest[tokKind]) (Expr, error) {
	if i := indexOfKind(forest, tokOr); i >= 0 {
		return parseBinary(OpOr, forest, i, parseAnd, parseOr)
	}
	return parseAnd(forest)
}

func parseAnd(forest groups.Forest[tokKind]) (Expr, error) {
	if i := indexOfKind(forest, tokAnd); i >= 0 {
		return parseBinary(OpAnd, forest, i, parseXor, parseAnd)
	}
	return parseXor(forest)
}

func parseXor(forest groups.Forest[tokKind]) (Expr, error) {
	if i := indexOfKind(forest, tokXor); i >= 0 {
		return parseBinary(OpXor, forest, i, parseTerminal, parseXor)
	}
	return parseTerminal(forest)
}

type parseFn func(groups.Forest[tokKind]) (Expr, error)

func parseBinary(op Op, forest groups.Forest[tokKind], at int, left, right parseFn) (Expr, error) {
	l, err := left(forest[:at])
	if err != nil {
		return nil, err
	}
	r, err := right(forest[at+1:])
	if err != nil {
		return nil, err
	}
	return BinaryExpr{Op: op, Left: l, Right: r}, nil
}

func parseTerminal(forest groups.Forest[tokKind]) (Expr, error) {
	switch {
	case len(forest) == 0:
		return nil, fmt.Errorf("expected a formula, found nothing")
	case forest[0].Value != nil && forest[0].Value.Payload == tokNot:
		inner, err := parseTerminal(forest[1:])
		if err != nil {
			return nil, err
		}
		return NotExpr{Inner: inner}, nil
	case len(forest) == 1 && forest[0].IsGroup():
		return parseIff(forest[0].Children)
	case len(forest) == 1:
		if forest[0].Value.Payload != tokName {
			return nil, fmt.Errorf("unexpected %q, expecting a formula", forest[0].Value.Data)
		}
		return NameExpr{Name: forest[0].Value.Data}, nil
	case len(forest) == 2:
		// A name applied to a parenthesised argument list.
		if forest[0].Value == nil || forest[0].Value.Payload != tokName || !forest[1].IsGroup() {
			return nil, fmt.Errorf("unexpected token sequence, expecting a formula")
		}
		args, err := parseArgs(forest[1].Children)
		if err != nil {
			return nil, err
		}
		return CallExpr{Name: forest[0].Value.Data, Args: args}, nil
	default:
		return nil, fmt.Errorf("unexpected token sequence, expecting a formula")
	}
}

// parseArgs reads a comma separated list of names.
func parseArgs(forest groups.Forest[tokKind]) ([]string, error) {
	if len(forest) == 0 {
		return nil, nil
	}
	var result []string
	for i := 0; i < len(forest); i += 2 {
		if forest[i].Value == nil || forest[i].Value.Payload != tokName {
			return nil, fmt.Errorf("unexpected token in argument list")
		}
		result = append(result, forest[i].Value.Data)
		if i+1 == len(forest) {
			return result, nil
		}
		if forest[i+1].Value == nil || forest[i+1].Value.Payload != tokComma {
			return nil, fmt.Errorf("expected ',' in argument list")
		}
		if i+2 == len(forest) {
			return nil, fmt.Errorf("unexpected ',' at the end of an argument list")
		}
	}
	return result, nil
}
