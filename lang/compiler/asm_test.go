package compiler_test

import (
	"bytes"
	"testing"

	"github.com/mna/nenuphar/lang/compiler"
	"github.com/stretchr/testify/require"
)

func TestProgramRoundTrip(t *testing.T) {
	prog := compile(t, "let x = 1 + 2\nlog(x)\n")

	var buf bytes.Buffer
	_, err := prog.WriteTo(&buf)
	require.NoError(t, err)

	got, err := compiler.ReadProgram(&buf)
	require.NoError(t, err)

	require.Equal(t, len(prog.Constants), len(got.Constants))
	require.Equal(t, len(prog.Functions), len(got.Functions))
	for i, fn := range prog.Functions {
		gfn := got.Functions[i]
		require.Equal(t, fn.Code, gfn.Code, "function %d code mismatch", i)
		require.Equal(t, fn.Name, gfn.Name, "function %d name mismatch", i)
		require.Equal(t, fn.NumParams, gfn.NumParams, "function %d param count mismatch", i)
		require.Equal(t, fn.NumLocals, gfn.NumLocals, "function %d local count mismatch", i)
		require.Equal(t, fn.Upvalues, gfn.Upvalues, "function %d upvalues mismatch", i)
	}
}

func TestProgramRoundTripWithClosure(t *testing.T) {
	prog := compile(t, "let makeCounter = fun():\n  let c = 0\n  return fun():\n    c = c + 1\n    return c\nlog(makeCounter())\n")

	var buf bytes.Buffer
	_, err := prog.WriteTo(&buf)
	require.NoError(t, err)

	got, err := compiler.ReadProgram(&buf)
	require.NoError(t, err)
	require.Equal(t, len(prog.Functions), len(got.Functions))

	// the innermost function closes over c, so its deserialized upvalue
	// descriptor must survive the round trip, not just its code bytes.
	var withUpvalue bool
	for i, fn := range prog.Functions {
		if len(fn.Upvalues) > 0 {
			withUpvalue = true
			require.Equal(t, fn.Upvalues, got.Functions[i].Upvalues)
		}
	}
	require.True(t, withUpvalue, "expected at least one compiled function to capture an upvalue")
}

func TestProgramDisassemble(t *testing.T) {
	prog := compile(t, "let x = 1\nwhile x < 3:\n  x = x + 1\nlog(x)\n")

	var buf bytes.Buffer
	require.NoError(t, prog.Disassemble(&buf))
	require.Contains(t, buf.String(), "constants:")
	require.Contains(t, buf.String(), "jump_if_not")
}

func TestBadMagicBytes(t *testing.T) {
	_, err := compiler.ReadProgram(bytes.NewReader([]byte("not a program")))
	require.Error(t, err)
}

func TestMagicBytesMatchSpec(t *testing.T) {
	require.Equal(t, [8]byte{0x53, 0x6F, 0x6D, 0x69, 0x72, 0x26, 0x00, 0x01}, compiler.MagicBytes)

	prog := compile(t, "let x = 1\nlog(x)\n")
	var buf bytes.Buffer
	_, err := prog.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, compiler.MagicBytes[:], buf.Bytes()[:8])
}
