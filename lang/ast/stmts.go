package ast

import (
	"fmt"

	"github.com/mna/nenuphar/lang/token"
)

func (*LetStmt) BlockEnding() bool    { return false }
func (*SetStmt) BlockEnding() bool    { return false }
func (*ExprStmt) BlockEnding() bool   { return false }
func (*IfStmt) BlockEnding() bool     { return false }
func (*WhileStmt) BlockEnding() bool  { return false }
func (*ReturnStmt) BlockEnding() bool { return true }

// LetStmt declares a new local variable: let name = value. Its type is
// always inferred from value; Somiré has no type annotation syntax.
type LetStmt struct {
	LetPos  token.Pos
	NamePos token.Pos
	Name    string
	Assign  token.Pos
	Value   Expr
}

// SetStmt assigns to an existing variable, property or index target:
// target = value.
type SetStmt struct {
	Left   Expr // IdentExpr, DotExpr or IndexExpr
	Assign token.Pos
	Right  Expr
}

// ExprStmt is an expression used as a statement; its value is discarded.
type ExprStmt struct {
	X Expr
}

// IfStmt is an if/else statement. Else is nil when there is no else clause;
// Elif is non-nil when this statement's else clause is an "else if", and
// then holds that chained IfStmt, in which case Else is always nil.
type IfStmt struct {
	IfPos token.Pos
	Cond  Expr
	Then  *Block
	Else  *Block  // may be nil
	Elif  *IfStmt // may be nil; mutually exclusive with Else
}

// WhileStmt is a while loop.
type WhileStmt struct {
	WhilePos token.Pos
	Cond     Expr
	Body     *Block
}

// ReturnStmt returns a value from the enclosing function. Value is nil for
// a bare "return", which is equivalent to returning nil.
type ReturnStmt struct {
	ReturnPos token.Pos
	Value     Expr // may be nil
}

func (n *LetStmt) Span() (start, end token.Pos) {
	_, end = n.Value.Span()
	return n.LetPos, end
}
func (n *LetStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "let "+n.Name, nil) }
func (n *LetStmt) Walk(v Visitor)                { Walk(v, n.Value) }

func (n *SetStmt) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *SetStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "set", nil) }
func (n *SetStmt) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

func (n *ExprStmt) Span() (start, end token.Pos)  { return n.X.Span() }
func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "expr stmt", nil) }
func (n *ExprStmt) Walk(v Visitor)                { Walk(v, n.X) }

func (n *IfStmt) Span() (start, end token.Pos) {
	switch {
	case n.Elif != nil:
		_, end = n.Elif.Span()
	case n.Else != nil:
		_, end = n.Else.Span()
	default:
		_, end = n.Then.Span()
	}
	return n.IfPos, end
}
func (n *IfStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "if", nil) }
func (n *IfStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.Elif != nil {
		Walk(v, n.Elif)
	} else if n.Else != nil {
		Walk(v, n.Else)
	}
}

func (n *WhileStmt) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.WhilePos, end
}
func (n *WhileStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "while", nil) }
func (n *WhileStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
}

func (n *ReturnStmt) Span() (start, end token.Pos) {
	end = n.ReturnPos + token.Pos(len(token.RETURN.String()))
	if n.Value != nil {
		_, end = n.Value.Span()
	}
	return n.ReturnPos, end
}
func (n *ReturnStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "return", nil) }
func (n *ReturnStmt) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
}
