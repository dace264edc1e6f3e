package ast

import (
	"fmt"

	"github.com/mna/nenuphar/lang/token"
)

func (*IdentExpr) expr()    {}
func (*IntExpr) expr()      {}
func (*RealExpr) expr()     {}
func (*StringExpr) expr()   {}
func (*SymbolExpr) expr()   {}
func (*UnaryExpr) expr()    {}
func (*BinaryExpr) expr()   {}
func (*CallExpr) expr()     {}
func (*ListExpr) expr()     {}
func (*FuncExpr) expr()     {}
func (*DotExpr) expr()      {}
func (*IndexExpr) expr()    {}

// IdentExpr is a bare identifier reference, e.g. x.
type IdentExpr struct {
	NamePos token.Pos
	Name    string
}

// IntExpr is an integer literal.
type IntExpr struct {
	ValuePos token.Pos
	Raw      string
	Value    int32
}

// RealExpr is a floating-point literal.
type RealExpr struct {
	ValuePos token.Pos
	Raw      string
	Value    float64
}

// StringExpr is a string literal.
type StringExpr struct {
	ValuePos token.Pos
	Raw      string
	Value    string
}

// SymbolExpr is one of the keyword literal atoms: nil, true or false.
type SymbolExpr struct {
	TokPos token.Pos
	Tok    token.Token // NIL, TRUE or FALSE
}

// UnaryExpr is a unary operator applied to an expression, e.g. -x or not x.
type UnaryExpr struct {
	OpPos token.Pos
	Op    token.Token // PLUS, MINUS or NOT
	Right Expr
}

// BinaryExpr is a binary operator applied to two expressions.
type BinaryExpr struct {
	Left  Expr
	OpPos token.Pos
	Op    token.Token
	Right Expr
}

// CallExpr is a function call, e.g. f(a, b).
type CallExpr struct {
	Fn      Expr
	Lparen  token.Pos
	Args    []Expr
	Commas  []token.Pos // len(Args)-1
	Rparen  token.Pos
}

// ListExpr is a list literal, e.g. [1, 2, 3].
type ListExpr struct {
	Lbrack token.Pos
	Elems  []Expr
	Commas []token.Pos // len(Elems)-1
	Rbrack token.Pos
}

// FuncExpr is a function literal: fun(params): block. Parameter and result
// types are not written in source; they are inferred by the compiler.
type FuncExpr struct {
	FunPos token.Pos
	Lparen token.Pos
	Params []*Param
	Commas []token.Pos // len(Params)-1
	Rparen token.Pos
	Body   *Block
}

// Param is a single function parameter.
type Param struct {
	NamePos token.Pos
	Name    string
}

// DotExpr is a property access, e.g. x.y.
type DotExpr struct {
	Left    Expr
	Dot     token.Pos
	NamePos token.Pos
	Name    string
}

// IndexExpr is a list index, e.g. l[i]. Indexing is 1-based.
type IndexExpr struct {
	Left   Expr
	Lbrack token.Pos
	Index  Expr
	Rbrack token.Pos
}

func (n *IdentExpr) Span() (start, end token.Pos) {
	return n.NamePos, n.NamePos + token.Pos(len(n.Name))
}
func (n *IdentExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Name, nil) }
func (n *IdentExpr) Walk(_ Visitor)                {}

func (n *IntExpr) Span() (start, end token.Pos) {
	return n.ValuePos, n.ValuePos + token.Pos(len(n.Raw))
}
func (n *IntExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Raw, nil) }
func (n *IntExpr) Walk(_ Visitor)                {}

func (n *RealExpr) Span() (start, end token.Pos) {
	return n.ValuePos, n.ValuePos + token.Pos(len(n.Raw))
}
func (n *RealExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Raw, nil) }
func (n *RealExpr) Walk(_ Visitor)                {}

func (n *StringExpr) Span() (start, end token.Pos) {
	return n.ValuePos, n.ValuePos + token.Pos(len(n.Raw))
}
func (n *StringExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Raw, nil) }
func (n *StringExpr) Walk(_ Visitor)                {}

func (n *SymbolExpr) Span() (start, end token.Pos) {
	return n.TokPos, n.TokPos + token.Pos(len(n.Tok.String()))
}
func (n *SymbolExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Tok.String(), nil) }
func (n *SymbolExpr) Walk(_ Visitor)                {}

func (n *UnaryExpr) Span() (start, end token.Pos) {
	_, end = n.Right.Span()
	return n.OpPos, end
}
func (n *UnaryExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "unary "+n.Op.String(), nil) }
func (n *UnaryExpr) Walk(v Visitor)                { Walk(v, n.Right) }

func (n *BinaryExpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *BinaryExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "binary "+n.Op.String(), nil) }
func (n *BinaryExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

func (n *CallExpr) Span() (start, end token.Pos) {
	start, _ = n.Fn.Span()
	return start, n.Rparen + 1
}
func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call", map[string]int{"args": len(n.Args)})
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Fn)
	for _, a := range n.Args {
		Walk(v, a)
	}
}

func (n *ListExpr) Span() (start, end token.Pos) { return n.Lbrack, n.Rbrack + 1 }
func (n *ListExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "list", map[string]int{"elems": len(n.Elems)})
}
func (n *ListExpr) Walk(v Visitor) {
	for _, e := range n.Elems {
		Walk(v, e)
	}
}

func (n *FuncExpr) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.FunPos, end
}
func (n *FuncExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "function", map[string]int{"params": len(n.Params)})
}
func (n *FuncExpr) Walk(v Visitor) { Walk(v, n.Body) }

func (n *DotExpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	return start, n.NamePos + token.Pos(len(n.Name))
}
func (n *DotExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "."+n.Name, nil) }
func (n *DotExpr) Walk(v Visitor)                { Walk(v, n.Left) }

func (n *IndexExpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	return start, n.Rbrack + 1
}
func (n *IndexExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "index", nil) }
func (n *IndexExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Index)
}
