package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		if tok >= identStart && tok <= identEnd {
			continue // sentinels, no string form required
		}
		if tok >= punctStart && tok == punctStart {
			continue
		}
		if tok == kwStart || tok == kwEnd || tok == punctEnd {
			continue
		}
		if tok.String() == "" {
			t.Errorf("missing string representation of token %d", tok)
		}
	}
}

func TestLookupKw(t *testing.T) {
	for tok := kwStart + 1; tok < kwEnd; tok++ {
		require.Equal(t, tok, LookupKw(tok.String()))
	}
	require.Equal(t, ID, LookupKw("notakeyword"))
}

func TestLookupPunct(t *testing.T) {
	for tok := punctStart + 1; tok < punctEnd; tok++ {
		require.Equal(t, tok, LookupPunct(tok.String()))
	}
	require.Equal(t, ILLEGAL, LookupPunct("???"))
}

func TestIsBinopUnopAtom(t *testing.T) {
	require.True(t, PLUS.IsBinop())
	require.True(t, AND.IsBinop())
	require.False(t, NOT.IsBinop())

	require.True(t, MINUS.IsUnop())
	require.True(t, NOT.IsUnop())
	require.True(t, PLUS.IsUnop())

	require.True(t, INT.IsAtom())
	require.True(t, NIL.IsAtom())
	require.True(t, TRUE.IsAtom())
	require.False(t, IF.IsAtom())
}

func TestGoString(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "'let'", LET.GoString())
	require.Equal(t, "identifier", ID.GoString())
}

func TestLiteral(t *testing.T) {
	val := Value{Raw: "abc", Str: "abc", Int: 3, Float: 1.5}
	require.Equal(t, "abc", ID.Literal(val))
	require.Equal(t, `"abc"`, STR.Literal(val))
	require.Equal(t, "abc", INT.Literal(val))
	require.Equal(t, "let", LET.Literal(val))
	require.Equal(t, "", ILLEGAL.Literal(val))
}
