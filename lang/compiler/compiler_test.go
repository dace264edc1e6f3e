package compiler_test

import (
	"context"
	"testing"

	"github.com/mna/nenuphar/lang/compiler"
	"github.com/mna/nenuphar/lang/parser"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *compiler.Program {
	t.Helper()
	ch, err := parser.ParseChunk(context.Background(), "test.smr", []byte(src))
	require.NoError(t, err)
	prog, err := compiler.CompileFile("test.smr", ch)
	require.NoError(t, err)
	return prog
}

func TestCompileLetAndArithmetic(t *testing.T) {
	prog := compile(t, "let x = 1 + 2 * 3\nlog(x)\n")
	require.Len(t, prog.Functions, 1)
	require.NotEmpty(t, prog.Functions[0].Code)
}

func TestCompileFactorialRecursion(t *testing.T) {
	src := "let fact = fun(n):\n  if n <= 1: return 1\n  return n * fact(n - 1)\nlog(fact(5))\n"
	prog := compile(t, src)
	// Functions[0] is the toplevel chunk, Functions[1] is the fact closure.
	require.Len(t, prog.Functions, 2)
	require.Equal(t, "fact", prog.Functions[1].Name)
	require.Equal(t, 1, prog.Functions[1].NumParams)
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	src := "let makeCounter = fun():\n" +
		"  let c = 0\n" +
		"  return fun():\n" +
		"    c = c + 1\n" +
		"    return c\n" +
		"let c1 = makeCounter()\n" +
		"log(c1())\n"
	prog := compile(t, src)
	require.Len(t, prog.Functions, 3)
	inner := prog.Functions[2]
	require.Len(t, inner.Upvalues, 1)
	require.Equal(t, "c", inner.Upvalues[0].Name)
	require.GreaterOrEqual(t, inner.Upvalues[0].Index, 0)
}

func TestCompileListAndIndex(t *testing.T) {
	prog := compile(t, "let l = [1, 2, 3]\nlog(l[1])\n")
	require.Len(t, prog.Functions, 1)
}

func TestCompileListNamespaceCall(t *testing.T) {
	prog := compile(t, "let l = [1]\nlist.add(l, 2)\nlog(list.size(l))\n")
	require.Len(t, prog.Functions, 1)
	var sawGlobal bool
	for _, b := range prog.Functions[0].Code {
		if compiler.Opcode(b) == compiler.GLOBAL {
			sawGlobal = true
		}
	}
	require.True(t, sawGlobal)
}

func TestCompileGreaterThanUsesLessOrEqualAndNot(t *testing.T) {
	prog := compile(t, "if 3 > 2:\n  log(1)\n")
	code := prog.Functions[0].Code
	var sawLE, sawNot bool
	for _, b := range code {
		switch compiler.Opcode(b) {
		case compiler.LESS_OR_EQ:
			sawLE = true
		case compiler.NOT:
			sawNot = true
		}
	}
	require.True(t, sawLE, "a > b must compile through LESS_OR_EQ")
	require.True(t, sawNot, "a > b must be negated")
}

func TestCompileUndefinedNameFails(t *testing.T) {
	ctx := context.Background()
	ch, err := parser.ParseChunk(ctx, "test.smr", []byte("log(nope)\n"))
	require.NoError(t, err)
	_, err = compiler.CompileFile("test.smr", ch)
	require.Error(t, err)
}

func TestCompileArityMismatchFails(t *testing.T) {
	ctx := context.Background()
	ch, err := parser.ParseChunk(ctx, "test.smr", []byte("let f = fun(a, b): return a + b\nf(1)\n"))
	require.NoError(t, err)
	_, err = compiler.CompileFile("test.smr", ch)
	require.Error(t, err)
}

func TestCompileWhileLoop(t *testing.T) {
	prog := compile(t, "let i = 0\nwhile i < 3:\n  log(i)\n  i = i + 1\n")
	require.Len(t, prog.Functions, 1)
	var sawJump bool
	for _, b := range prog.Functions[0].Code {
		if compiler.Opcode(b) == compiler.JUMP {
			sawJump = true
		}
	}
	require.True(t, sawJump, "while loop must jump back to its condition")
}
