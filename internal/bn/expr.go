// SPDX-License-Identifier: MIT

package bn

import (
	"fmt"
	"strings"
)

// Op enumerates the binary boolean connectives of update function
// expressions, ordered by precedence (strongest first).
type Op uint8

const (
	OpXor Op = iota
	OpAnd
	OpOr
	OpImp
	OpIff
)

func (o Op) String() string {
	switch o {
	case OpXor:
		return "^"
	case OpAnd:
		return "&"
	case OpOr:
		return "|"
	case OpImp:
		return "=>"
	case OpIff:
		return "<=>"
	default:
		return "?"
	}
}

// Expr is an update function expression over variable and parameter names,
// as produced by the parser before it is resolved against a network. Names
// are kept symbolic because whether a name denotes a variable or a
// parameter is only known once a regulatory graph is attached.
type Expr interface {
	fmt.Stringer
	exprNode()
}

// NameExpr references a variable (or, after resolution, a zero arity
// parameter) by name.
type NameExpr struct {
	Name string
}

// CallExpr applies a named parameter to a list of variable names. An empty
// argument list denotes an unknown boolean constant.
type CallExpr struct {
	Name string
	Args []string
}

// NotExpr negates its operand.
type NotExpr struct {
	Inner Expr
}

// BinaryExpr joins two operands with a boolean connective.
type BinaryExpr struct {
	Op    Op
	Left  Expr
	Right Expr
}

func (NameExpr) exprNode()   {}
func (CallExpr) exprNode()   {}
func (NotExpr) exprNode()    {}
func (BinaryExpr) exprNode() {}

func (e NameExpr) String() string {
	return e.Name
}

func (e CallExpr) String() string {
	if len(e.Args) == 0 {
		return e.Name
	}
	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(e.Args, ", "))
}

func (e NotExpr) String() string {
	return "!" + e.Inner.String()
}

func (e BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}
