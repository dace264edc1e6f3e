package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakePosLineCol(t *testing.T) {
	cases := []struct{ line, col int }{
		{1, 1}, {1, 80}, {42, 1}, {1000, 12},
	}
	for _, c := range cases {
		p := MakePos(c.line, c.col)
		gotLine, gotCol := p.LineCol()
		require.Equal(t, c.line, gotLine)
		require.Equal(t, c.col, gotCol)
	}
}

func TestPosUnknown(t *testing.T) {
	require.True(t, Pos(0).Unknown())
	require.False(t, MakePos(1, 1).Unknown())
}

func TestFormatPos(t *testing.T) {
	p := MakePos(3, 5)
	require.Equal(t, "", FormatPos(PosNone, "f.so", p))
	require.Equal(t, "3", FormatPos(PosLine, "", p))
	require.Equal(t, "f.so:3", FormatPos(PosLine, "f.so", p))
	require.Equal(t, "f.so:3:5", FormatPos(PosFull, "f.so", p))
	require.Equal(t, "", FormatPos(PosFull, "f.so", Pos(0)))
}
