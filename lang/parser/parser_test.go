package parser_test

import (
	"context"
	"testing"

	"github.com/mna/nenuphar/lang/ast"
	"github.com/mna/nenuphar/lang/parser"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	ch, err := parser.ParseChunk(context.Background(), "test.smr", []byte(src))
	require.NoError(t, err)
	return ch
}

func TestParseLetAndLog(t *testing.T) {
	ch := parse(t, "let x = 1 + 2 * 3\nlog(x)\n")
	require.Len(t, ch.Block.Stmts, 2)

	let, ok := ch.Block.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	require.Equal(t, "x", let.Name)
	bin, ok := let.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op.String())

	expr, ok := ch.Block.Stmts[1].(*ast.ExprStmt)
	require.True(t, ok)
	call, ok := expr.X.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Args, 1)
}

func TestParseListIndex(t *testing.T) {
	ch := parse(t, "let l = [10, 20, 30]\nlog(l[2])\n")
	require.Len(t, ch.Block.Stmts, 2)

	let := ch.Block.Stmts[0].(*ast.LetStmt)
	list, ok := let.Value.(*ast.ListExpr)
	require.True(t, ok)
	require.Len(t, list.Elems, 3)
}

func TestParseFactorialRecursion(t *testing.T) {
	src := "let fact = fun(n):\n  if n <= 1: return 1\n  return n * fact(n - 1)\nlog(fact(5))\n"
	ch := parse(t, src)
	require.Len(t, ch.Block.Stmts, 2)

	let := ch.Block.Stmts[0].(*ast.LetStmt)
	fn, ok := let.Value.(*ast.FuncExpr)
	require.True(t, ok)
	require.Len(t, fn.Params, 1)
	require.Equal(t, "n", fn.Params[0].Name)
	require.Len(t, fn.Body.Stmts, 2)

	ifStmt, ok := fn.Body.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	require.Len(t, ifStmt.Then.Stmts, 1)
	ret, ok := ifStmt.Then.Stmts[0].(*ast.ReturnStmt)
	require.True(t, ok)
	require.NotNil(t, ret.Value)
}

func TestParseClosureCounter(t *testing.T) {
	src := "let makeCounter = fun():\n" +
		"  let c = 0\n" +
		"  return fun():\n" +
		"    c = c + 1\n" +
		"    return c\n" +
		"let c1 = makeCounter()\n" +
		"log(c1())\n"
	ch := parse(t, src)
	require.Len(t, ch.Block.Stmts, 3)

	mk := ch.Block.Stmts[0].(*ast.LetStmt).Value.(*ast.FuncExpr)
	require.Len(t, mk.Body.Stmts, 2)
	ret := mk.Body.Stmts[1].(*ast.ReturnStmt)
	inner := ret.Value.(*ast.FuncExpr)
	require.Len(t, inner.Body.Stmts, 2)
	set, ok := inner.Body.Stmts[0].(*ast.SetStmt)
	require.True(t, ok)
	_, ok = set.Left.(*ast.IdentExpr)
	require.True(t, ok)
}

func TestParseLetFuncShorthand(t *testing.T) {
	ch := parse(t, "let add(a, b):\n  return a + b\n")
	require.Len(t, ch.Block.Stmts, 1)
	let := ch.Block.Stmts[0].(*ast.LetStmt)
	fn, ok := let.Value.(*ast.FuncExpr)
	require.True(t, ok)
	require.Len(t, fn.Params, 2)
}

func TestParseIfElseIfElse(t *testing.T) {
	src := "if x == 1:\n  log(1)\nelse if x == 2:\n  log(2)\nelse:\n  log(3)\n"
	ch := parse(t, src)
	require.Len(t, ch.Block.Stmts, 1)
	ifStmt := ch.Block.Stmts[0].(*ast.IfStmt)
	require.NotNil(t, ifStmt.Elif)
	require.NotNil(t, ifStmt.Elif.Else)
}

func TestParseWhile(t *testing.T) {
	src := "let i = 0\nwhile i < 3:\n  log(i)\n  i = i + 1\n"
	ch := parse(t, src)
	require.Len(t, ch.Block.Stmts, 2)
	while, ok := ch.Block.Stmts[1].(*ast.WhileStmt)
	require.True(t, ok)
	require.Len(t, while.Body.Stmts, 2)
}

func TestParseExponentRightAssociative(t *testing.T) {
	// 2 ^ 3 ^ 2 should parse as 2 ^ (3 ^ 2).
	ch := parse(t, "let x = 2 ^ 3 ^ 2\n")
	let := ch.Block.Stmts[0].(*ast.LetStmt)
	top := let.Value.(*ast.BinaryExpr)
	require.Equal(t, "^", top.Op.String())
	_, leftIsInt := top.Left.(*ast.IntExpr)
	require.True(t, leftIsInt)
	right := top.Right.(*ast.BinaryExpr)
	require.Equal(t, "^", right.Op.String())
}

func TestParseUnaryMinusBindsLooserThanExponent(t *testing.T) {
	// "-2 ^ 2" parses as "-(2 ^ 2)": unary minus binds tighter than every
	// infix operator except ^.
	ch := parse(t, "let x = -2 ^ 2\n")
	let := ch.Block.Stmts[0].(*ast.LetStmt)
	un, ok := let.Value.(*ast.UnaryExpr)
	require.True(t, ok, "expected a UnaryExpr at the top, got %T", let.Value)
	require.Equal(t, "-", un.Op.String())
	bin, ok := un.Right.(*ast.BinaryExpr)
	require.True(t, ok, "expected unary minus's operand to be the ^ expression, got %T", un.Right)
	require.Equal(t, "^", bin.Op.String())
}

func TestParseUnaryMinusBindsTighterThanMultiply(t *testing.T) {
	// "-2 * 3" parses as "(-2) * 3", not "-(2 * 3)".
	ch := parse(t, "let x = -2 * 3\n")
	let := ch.Block.Stmts[0].(*ast.LetStmt)
	top, ok := let.Value.(*ast.BinaryExpr)
	require.True(t, ok, "expected a BinaryExpr (*) at the top, got %T", let.Value)
	require.Equal(t, "*", top.Op.String())
	_, ok = top.Left.(*ast.UnaryExpr)
	require.True(t, ok, "expected *'s left operand to be the unary minus expression, got %T", top.Left)
}

func TestParseSubtractionLeftAssociative(t *testing.T) {
	// 10 - 3 - 2 should parse as (10 - 3) - 2.
	ch := parse(t, "let x = 10 - 3 - 2\n")
	let := ch.Block.Stmts[0].(*ast.LetStmt)
	top := let.Value.(*ast.BinaryExpr)
	require.Equal(t, "-", top.Op.String())
	left := top.Left.(*ast.BinaryExpr)
	require.Equal(t, "-", left.Op.String())
	_, rightIsInt := top.Right.(*ast.IntExpr)
	require.True(t, rightIsInt)
}

func TestParseInvalidIndentationFails(t *testing.T) {
	src := "if true:\n    log(1)\n  log(2)\n"
	_, err := parser.ParseChunk(context.Background(), "test.smr", []byte(src))
	require.Error(t, err)
}

func TestParseDotProperty(t *testing.T) {
	ch := parse(t, "list.add(x, 1)\n")
	stmt := ch.Block.Stmts[0].(*ast.ExprStmt)
	call := stmt.X.(*ast.CallExpr)
	dot := call.Fn.(*ast.DotExpr)
	require.Equal(t, "add", dot.Name)
}

func TestParseUnaryNot(t *testing.T) {
	ch := parse(t, "let x = not true\n")
	let := ch.Block.Stmts[0].(*ast.LetStmt)
	un := let.Value.(*ast.UnaryExpr)
	require.Equal(t, "not", un.Op.String())
	sym := un.Right.(*ast.SymbolExpr)
	require.Equal(t, "true", sym.Tok.String())
}

func TestParseUnaryNotBindsLooserThanComparison(t *testing.T) {
	// "not a == b" parses as "not (a == b)": not's right operand swallows
	// the comparison since precNot is below precCompare.
	ch := parse(t, "let x = not a == b\n")
	let := ch.Block.Stmts[0].(*ast.LetStmt)
	un, ok := let.Value.(*ast.UnaryExpr)
	require.True(t, ok, "expected a UnaryExpr at the top, got %T", let.Value)
	require.Equal(t, "not", un.Op.String())
	_, ok = un.Right.(*ast.BinaryExpr)
	require.True(t, ok, "expected not's operand to be the == comparison, got %T", un.Right)
}

func TestParseUnaryNotBindsTighterThanAnd(t *testing.T) {
	// "not a and b" parses as "(not a) and b".
	ch := parse(t, "let x = not a and b\n")
	let := ch.Block.Stmts[0].(*ast.LetStmt)
	top, ok := let.Value.(*ast.BinaryExpr)
	require.True(t, ok, "expected a BinaryExpr (and) at the top, got %T", let.Value)
	require.Equal(t, "and", top.Op.String())
	_, ok = top.Left.(*ast.UnaryExpr)
	require.True(t, ok, "expected and's left operand to be the not expression, got %T", top.Left)
}

func TestParseFuncLiteralNotLastStatementInBlock(t *testing.T) {
	// a let-bound function literal followed by another statement in the
	// same block: the inner body's own DEDENT must not be mistaken for a
	// missing statement terminator on the enclosing let.
	src := "while true:\n  let f = fun():\n    return 1\n  log(f())\n"
	ch := parse(t, src)
	require.Len(t, ch.Block.Stmts, 1)
	while := ch.Block.Stmts[0].(*ast.WhileStmt)
	require.Len(t, while.Body.Stmts, 2)
	_, ok := while.Body.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	_, ok = while.Body.Stmts[1].(*ast.ExprStmt)
	require.True(t, ok)
}
