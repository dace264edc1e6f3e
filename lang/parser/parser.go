// Package parser implements the Pratt expression parser and
// indentation-driven statement parser that transform a Somiré token stream
// into an abstract syntax tree.
package parser

import (
	"context"
	"errors"
	"go/scanner"
	gotoken "go/token"
	"os"
	"strings"

	"github.com/mna/nenuphar/lang/ast"
	somirescanner "github.com/mna/nenuphar/lang/scanner"
	"github.com/mna/nenuphar/lang/token"
)

// ParseFile reads and parses a single source file, returning its AST and
// any error encountered. The error, if non-nil, is either the error from
// reading the file or a scanner.ErrorList (as produced by the go/scanner
// package, reused for both lexical and syntax errors).
func ParseFile(ctx context.Context, filename string) (*ast.Chunk, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseChunk(ctx, filename, src)
}

// ParseChunk parses a single chunk of source from memory.
func ParseChunk(ctx context.Context, filename string, src []byte) (*ast.Chunk, error) {
	var p parser
	p.init(filename, src)
	ch := p.parseFile()
	p.errors.Sort()
	return ch, p.errors.Err()
}

// parser parses a token stream into an AST.
type parser struct {
	filename string
	scanner  somirescanner.Scanner
	errors   scanner.ErrorList

	tok     token.Token
	val     token.Value
	prevTok token.Token
}

func (p *parser) init(filename string, src []byte) {
	p.filename = filename
	p.scanner.Init(filename, src, p.errors.Add)
	p.advance()
}

func (p *parser) advance() {
	p.prevTok = p.tok
	p.tok = p.scanner.Scan(&p.val)
}

var errPanicMode = errors.New("panic")

// expect consumes and returns the position of the current token if it
// matches one of toks, otherwise it reports an error and panics with
// errPanicMode, to be recovered at the statement level.
func (p *parser) expect(toks ...token.Token) token.Pos {
	pos := p.val.Pos
	for _, tok := range toks {
		if p.tok == tok {
			p.advance()
			return pos
		}
	}
	p.errorExpected(pos, toks)
	panic(errPanicMode)
}

func (p *parser) at(tok token.Token) bool { return p.tok == tok }

func (p *parser) error(pos token.Pos, msg string) {
	line, col := pos.LineCol()
	p.errors.Add(gotoken.Position{Filename: p.filename, Line: line, Column: col}, msg)
}

func (p *parser) errorExpected(pos token.Pos, toks []token.Token) {
	var buf strings.Builder
	for i, tok := range toks {
		if i > 0 {
			buf.WriteString(" or ")
		}
		buf.WriteString(tok.GoString())
	}
	msg := "expected " + buf.String()
	if lit := p.tok.Literal(p.val); lit != "" {
		msg += ", found " + lit
	} else {
		msg += ", found " + p.tok.GoString()
	}
	p.error(pos, msg)
}

// finishStatement enforces the boundary after a statement: the current
// token must be NL (consumed here), DEDENT or EOI (left for the caller's
// loop to observe). A statement whose value ends in a block (a
// "let f = fun(): ..." function literal, most commonly) already consumed
// that block's terminator while parsing it: the DEDENT closing an indented
// block, or the NL ending an inline one. So prevTok being DEDENT or NL also
// satisfies the boundary, and whatever follows belongs to the enclosing
// block, not this statement. An inline block nested in an expression, as in
// "f(fun(): return 1)", ends at the ')', ',' or ']' that continues the
// enclosing expression; those tokens are also left for the caller.
func (p *parser) finishStatement() {
	if p.prevTok == token.DEDENT || p.prevTok == token.NL {
		return
	}
	switch p.tok {
	case token.NL:
		p.advance()
	case token.DEDENT, token.EOI, token.RPAREN, token.COMMA, token.RBRACK:
		// left for caller
	default:
		p.error(p.val.Pos, "expected end of statement, found "+p.tok.GoString())
		panic(errPanicMode)
	}
}
