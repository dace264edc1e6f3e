package scanner

import (
	"testing"

	"github.com/mna/nenuphar/lang/token"
	"github.com/stretchr/testify/require"
)

func TestScanSimpleLine(t *testing.T) {
	toks, _ := scanAllSimple(t, "let x = 1\n")
	require.Equal(t, []token.Token{
		token.LET, token.ID, token.ASSIGN, token.INT, token.NL, token.EOI,
	}, toks)
}

func TestScanIndentDedent(t *testing.T) {
	src := "if true\n  let x = 1\nlet y = 2\n"
	toks, _ := scanAllSimple(t, src)
	require.Equal(t, []token.Token{
		token.IF, token.TRUE, token.NL,
		token.INDENT,
		token.LET, token.ID, token.ASSIGN, token.INT, token.NL,
		token.DEDENT,
		token.LET, token.ID, token.ASSIGN, token.INT, token.NL,
		token.EOI,
	}, toks)
}

func TestScanBlankLinesIgnored(t *testing.T) {
	src := "let x = 1\n\n\nlet y = 2\n"
	toks, _ := scanAllSimple(t, src)
	require.Equal(t, []token.Token{
		token.LET, token.ID, token.ASSIGN, token.INT, token.NL,
		token.LET, token.ID, token.ASSIGN, token.INT, token.NL,
		token.EOI,
	}, toks)
}

func TestScanNestedDedentsAtEOF(t *testing.T) {
	src := "if true\n  if true\n    let x = 1\n"
	toks, _ := scanAllSimple(t, src)
	require.Equal(t, []token.Token{
		token.IF, token.TRUE, token.NL,
		token.INDENT,
		token.IF, token.TRUE, token.NL,
		token.INDENT,
		token.LET, token.ID, token.ASSIGN, token.INT, token.NL,
		token.DEDENT, token.DEDENT,
		token.EOI,
	}, toks)
}

func TestScanNumbers(t *testing.T) {
	toks, vals := scanAllSimple(t, "10 0x1A 0o17 0b101 1.5 2e3\n")
	want := []token.Token{token.INT, token.INT, token.INT, token.INT, token.REAL, token.REAL, token.NL, token.EOI}
	require.Equal(t, want, toks)
	require.EqualValues(t, 10, vals[0].Int)
	require.EqualValues(t, 26, vals[1].Int)
	require.EqualValues(t, 15, vals[2].Int)
	require.EqualValues(t, 5, vals[3].Int)
	require.Equal(t, 1.5, vals[4].Float)
	require.Equal(t, 2000.0, vals[5].Float)
}

func TestScanString(t *testing.T) {
	toks, vals := scanAllSimple(t, `"hi\nthere" 'x'` + "\n")
	require.Equal(t, []token.Token{token.STR, token.STR, token.NL, token.EOI}, toks)
	require.Equal(t, "hi\nthere", vals[0].Str)
	require.Equal(t, "x", vals[1].Str)
}

func TestScanUnicodeEscape(t *testing.T) {
	_, vals := scanAllSimple(t, `"é\U0001F600"`+"\n")
	require.Equal(t, "é😀", vals[0].Str)
}

func TestScanOperators(t *testing.T) {
	toks, _ := scanAllSimple(t, "== != <= >= = < >\n")
	require.Equal(t, []token.Token{
		token.EQL, token.NEQ, token.LE, token.GE, token.ASSIGN, token.LT, token.GT, token.NL, token.EOI,
	}, toks)
}

func TestScanArithmeticOperators(t *testing.T) {
	toks, _ := scanAllSimple(t, "+ - * / % ^\n")
	require.Equal(t, []token.Token{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PCT, token.CARET, token.NL, token.EOI,
	}, toks)
}

func scanAllSimple(t *testing.T, src string) ([]token.Token, []token.Value) {
	t.Helper()
	var s Scanner
	s.Init("test.so", []byte(src), nil)

	var toks []token.Token
	var vals []token.Value
	var val token.Value
	for {
		tok := s.Scan(&val)
		toks = append(toks, tok)
		vals = append(vals, val)
		if tok == token.EOI {
			break
		}
	}
	return toks, vals
}
