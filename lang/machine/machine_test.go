package machine_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/mna/nenuphar/lang/compiler"
	"github.com/mna/nenuphar/lang/machine"
	"github.com/mna/nenuphar/lang/parser"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) string {
	t.Helper()
	ctx := context.Background()
	ch, err := parser.ParseChunk(ctx, "test.smr", []byte(src))
	require.NoError(t, err)
	prog, err := compiler.CompileFile("test.smr", ch)
	require.NoError(t, err)

	var out bytes.Buffer
	th := machine.NewThread("test")
	th.Stdout = &out
	_, err = th.RunProgram(ctx, prog)
	require.NoError(t, err)
	return out.String()
}

func runFails(t *testing.T, src string) error {
	t.Helper()
	ctx := context.Background()
	ch, err := parser.ParseChunk(ctx, "test.smr", []byte(src))
	require.NoError(t, err)
	prog, err := compiler.CompileFile("test.smr", ch)
	require.NoError(t, err)

	th := machine.NewThread("test")
	th.Stdout = &bytes.Buffer{}
	_, err = th.RunProgram(ctx, prog)
	require.Error(t, err)
	return err
}

func TestArithmetic(t *testing.T) {
	require.Equal(t, "7\n", run(t, "log(1 + 2 * 3)\n"))
	require.Equal(t, "1.5\n", run(t, "log(3 / 2)\n"))
	require.Equal(t, "1\n", run(t, "log(7 % 3)\n"))
}

func TestPowerUsesIntegerFastPathForNonnegativeIntExponent(t *testing.T) {
	require.Equal(t, "1024\n", run(t, "log(2 ^ 10)\n"))
	require.Equal(t, "0.5\n", run(t, "log(2 ^ -1)\n"))
}

func TestArithmeticOnNonNumericOperandErrors(t *testing.T) {
	runFails(t, "let f = fun(x):\n  return x - 1\nlog(f(\"hi\"))\n")
	runFails(t, "let f = fun(x):\n  return -x\nlog(f(\"hi\"))\n")
}

func TestCallThroughAnyEnforcesArity(t *testing.T) {
	err := runFails(t, "let apply = fun(f):\n  return f(1, 2, 3)\napply(fun(a): return a)\n")
	require.Contains(t, err.Error(), "arity mismatch")
}

func TestComparisonsThroughNegation(t *testing.T) {
	require.Equal(t, "true\n", run(t, "log(3 > 2)\n"))
	require.Equal(t, "false\n", run(t, "log(2 > 3)\n"))
	require.Equal(t, "true\n", run(t, "log(2 >= 2)\n"))
	require.Equal(t, "true\n", run(t, "log(1 != 2)\n"))
}

func TestWhileLoop(t *testing.T) {
	src := "let i = 0\nwhile i < 3:\n  log(i)\n  i = i + 1\n"
	require.Equal(t, "0\n1\n2\n", run(t, src))
}

func TestFactorialRecursion(t *testing.T) {
	src := "let fact = fun(n):\n  if n <= 1: return 1\n  return n * fact(n - 1)\nlog(fact(5))\n"
	require.Equal(t, "120\n", run(t, src))
}

func TestClosureCapturesAndMutatesUpvalue(t *testing.T) {
	src := "let makeCounter = fun():\n" +
		"  let c = 0\n" +
		"  return fun():\n" +
		"    c = c + 1\n" +
		"    return c\n" +
		"let counter = makeCounter()\n" +
		"log(counter())\n" +
		"log(counter())\n" +
		"log(counter())\n"
	require.Equal(t, "1\n2\n3\n", run(t, src))
}

func TestLoopLocalClosureCapturesPerIterationValue(t *testing.T) {
	// each closure must snapshot its own iteration's x, not alias the
	// frame slot x is reused in across iterations.
	src := "let makers = []\n" +
		"let i = 0\n" +
		"while i < 3:\n" +
		"  let x = i\n" +
		"  list.add(makers, fun(): return x)\n" +
		"  i = i + 1\n" +
		"log(makers[1]())\n" +
		"log(makers[2]())\n" +
		"log(makers[3]())\n"
	require.Equal(t, "0\n1\n2\n", run(t, src))
}

func TestTwoClosuresShareUpvalue(t *testing.T) {
	src := "let makePair = fun():\n" +
		"  let c = 0\n" +
		"  let inc = fun(): c = c + 1\n" +
		"  let get = fun(): return c\n" +
		"  inc()\n" +
		"  inc()\n" +
		"  return get()\n" +
		"log(makePair())\n"
	require.Equal(t, "2\n", run(t, src))
}

func TestListLiteralIndexAndNamespace(t *testing.T) {
	src := "let l = [1, 2, 3]\nlist.add(l, 4)\nlog(list.size(l))\nlog(l[4])\n"
	require.Equal(t, "4\n4\n", run(t, src))
}

func TestListIndexIsOneBased(t *testing.T) {
	require.Equal(t, "20\n", run(t, "let l = [10, 20, 30]\nlog(l[2])\n"))
}

func TestListAddAtPosition(t *testing.T) {
	src := "let l = [1, 3]\nlist.add(l, 2, 2)\nlog(l[1])\nlog(l[2])\nlog(l[3])\n"
	require.Equal(t, "1\n2\n3\n", run(t, src))
}

func TestStringConcatenation(t *testing.T) {
	require.Equal(t, "ab\n", run(t, `log("a" + "b")`+"\n"))
}

func TestReprQuotesStrings(t *testing.T) {
	require.Equal(t, `"a"`+"\n", run(t, `log(repr("a"))`+"\n"))
}

func TestWriteLineDoesNotQuote(t *testing.T) {
	require.Equal(t, "a\n", run(t, `writeLine("a")`+"\n"))
}

func TestGarbageCollectionReclaimsUnreachableLists(t *testing.T) {
	ctx := context.Background()
	src := "let f = fun():\n  let l = [1, 2, 3]\n  return list.size(l)\nlog(f())\nlog(f())\n"
	ch, err := parser.ParseChunk(ctx, "test.smr", []byte(src))
	require.NoError(t, err)
	prog, err := compiler.CompileFile("test.smr", ch)
	require.NoError(t, err)

	var out bytes.Buffer
	th := machine.NewThread("test")
	th.Stdout = &out
	_, err = th.RunProgram(ctx, prog)
	require.NoError(t, err)
	require.Equal(t, "3\n3\n", out.String())

	before := th.Heap.Live()
	th.Collect()
	require.Less(t, th.Heap.Live(), before, "the two short-lived lists from f() should be reclaimed")
}
