// Some of the scanner package is adapted from the Go source code:
// https://cs.opensource.google/go/go/+/refs/tags/go1.22.1:src/go/scanner/scanner.go
//
// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scanner implements the Somiré lexer: an indentation-aware
// tokenizer with two-codepoint lookahead.
package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/scanner"
	gotoken "go/token"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mna/nenuphar/lang/token"
)

type (
	// Error describes a single lexical or parse error, reusing the standard
	// library's representation so the same error list machinery serves both
	// the scanner and the parser.
	Error = scanner.Error
	// ErrorList is a list of *Error, sortable by position.
	ErrorList = scanner.ErrorList
)

// PrintError prints the error(s) in err to w, one per line, in the standard
// go/scanner format.
var PrintError = scanner.PrintError

// TokenAndValue combines a token kind with its scanned value.
type TokenAndValue struct {
	Token token.Token
	Value token.Value
}

// ScanFile tokenizes a single source file, returning the token stream (up to
// and including the trailing EOI) and any errors accumulated along the way.
// The error, if non-nil, is either the error from reading the file or an
// ErrorList.
func ScanFile(ctx context.Context, filename string) ([]TokenAndValue, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var (
		s      Scanner
		tokVal token.Value
		el     ErrorList
	)
	s.Init(filename, b, el.Add)

	var toks []TokenAndValue
	for {
		tok := s.Scan(&tokVal)
		toks = append(toks, TokenAndValue{Token: tok, Value: tokVal})
		if tok == token.EOI {
			break
		}
	}
	el.Sort()
	return toks, el.Err()
}

// Scanner tokenizes Somiré source text.
type Scanner struct {
	// immutable state after Init
	filename string
	src      []byte
	err      func(pos gotoken.Position, msg string)

	// mutable scanning state
	sb   strings.Builder
	cur  rune // current character, -1 at EOF
	off  int  // byte offset of cur
	roff int  // byte offset just past cur

	line, col int // 1-based line/col of cur

	invalidByte byte

	// indentation state machine
	atLineStart    bool
	indents        []string // stack of indent prefixes, indents[0] == ""
	pendingDedents int
}

var bom = [2]byte{0xFE, 0xFF}

// Init initializes (or reinitializes) the scanner to tokenize src, which
// comes from the named file (used only for error messages).
func (s *Scanner) Init(filename string, src []byte, errHandler func(gotoken.Position, string)) {
	s.filename = filename
	s.src = src
	s.err = errHandler

	s.sb.Reset()
	s.invalidByte = 0
	s.cur = ' '
	s.off = 0
	s.roff = 0
	s.line = 1
	s.col = 0

	s.atLineStart = true
	s.indents = []string{""}
	s.pendingDedents = 0

	if len(src) >= len(bom) && bytes.Equal(src[:len(bom)], bom[:]) {
		s.off += len(bom)
		s.roff += len(bom)
	}
	s.advance()
}

func (s *Scanner) pos() token.Pos {
	if s.line > token.MaxLines || s.col > token.MaxCols || s.line < 1 || s.col < 1 {
		return token.Pos(0)
	}
	return token.MakePos(s.line, s.col)
}

func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

// advance reads the next rune into s.cur, tracking line/col; s.cur == -1
// means end of input.
func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = -1
		return
	}

	wasNL := s.cur == '\n'
	s.off = s.roff

	s.invalidByte = 0
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error("illegal UTF-8 encoding")
			s.invalidByte = s.src[s.roff]
		}
	}
	s.roff += w
	s.cur = r

	if wasNL {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

func (s *Scanner) error(msg string) {
	if s.err != nil {
		s.err(gotoken.Position{Filename: s.filename, Line: s.line, Column: s.col}, msg)
	}
}

func (s *Scanner) errorf(format string, args ...any) {
	s.error(fmt.Sprintf(format, args...))
}

func (s *Scanner) advanceIf(matches ...byte) bool {
	if bytes.ContainsRune(matches, s.cur) {
		s.advance()
		return true
	}
	return false
}

// Scan returns the next token, filling in tokVal with its literal payload.
func (s *Scanner) Scan(tokVal *token.Value) (tok token.Token) {
	if s.pendingDedents > 0 {
		s.pendingDedents--
		*tokVal = token.Value{Pos: s.pos()}
		return token.DEDENT
	}

	if s.atLineStart {
		if tok, ok := s.handleLineStart(tokVal); ok {
			return tok
		}
	}

	return s.scanOne(tokVal)
}

// handleLineStart consumes blank lines and measures/compares indentation at
// the start of a logical line, producing an INDENT/DEDENT/EOI token if one
// is warranted. ok is false if no token was produced, in which case
// s.atLineStart has been reset to false and the caller should fall through
// to scanning an ordinary token.
func (s *Scanner) handleLineStart(tokVal *token.Value) (token.Token, bool) {
	for {
		var ind strings.Builder
		for s.cur == ' ' || s.cur == '\t' {
			ind.WriteRune(s.cur)
			s.advance()
		}

		switch {
		case s.cur == '\n':
			// blank line: does not affect indentation
			s.advance()
			continue
		case s.cur == -1:
			s.atLineStart = false
			return s.emitFinalDedents(tokVal)
		default:
			return s.emitIndentChange(ind.String(), tokVal)
		}
	}
}

func (s *Scanner) emitFinalDedents(tokVal *token.Value) (token.Token, bool) {
	if len(s.indents) > 1 {
		s.indents = s.indents[:len(s.indents)-1]
		s.pendingDedents = len(s.indents) - 1
		*tokVal = token.Value{Pos: s.pos()}
		return token.DEDENT, true
	}
	*tokVal = token.Value{Pos: s.pos()}
	return token.EOI, true
}

func (s *Scanner) emitIndentChange(ind string, tokVal *token.Value) (token.Token, bool) {
	top := s.indents[len(s.indents)-1]

	switch {
	case ind == top:
		s.atLineStart = false
		return token.ILLEGAL, false

	case strings.HasPrefix(ind, top):
		// proper prefix: indent increased
		s.indents = append(s.indents, ind)
		s.atLineStart = false
		*tokVal = token.Value{Pos: s.pos()}
		return token.INDENT, true

	default:
		// either a dedent to a historical level, or invalid indentation
		depth := -1
		for i := len(s.indents) - 1; i >= 0; i-- {
			if s.indents[i] == ind {
				depth = i
				break
			}
		}
		if depth < 0 {
			s.errorf("invalid indentation")
			s.atLineStart = false
			return token.ILLEGAL, false
		}
		popped := len(s.indents) - 1 - depth
		s.indents = s.indents[:depth+1]
		s.pendingDedents = popped - 1
		s.atLineStart = false
		*tokVal = token.Value{Pos: s.pos()}
		return token.DEDENT, true
	}
}

func (s *Scanner) scanOne(tokVal *token.Value) (tok token.Token) {
	s.skipSpaces()

	pos := s.pos()

	switch cur := s.cur; {
	case isLetter(cur):
		lit := s.ident()
		tok = token.ID
		if len(lit) > 1 {
			tok = token.LookupKw(lit)
		}
		*tokVal = token.Value{Raw: lit, Pos: pos}

	case isDecimal(cur) || (cur == '.' && isDecimal(rune(s.peek()))):
		var base int
		var lit string
		tok, base, lit = s.number()
		*tokVal = token.Value{Raw: lit, Pos: pos}
		if tok == token.INT {
			v, err := numberToInt(lit, base)
			if err != nil && errors.Is(err, strconv.ErrRange) {
				s.error("integer literal value out of range")
			}
			tokVal.Int = int32(v)
		} else if tok == token.REAL {
			v, err := numberToFloat(lit)
			if err != nil && errors.Is(err, strconv.ErrRange) {
				s.error("real literal value out of range")
			}
			tokVal.Float = v
		}

	case cur == '\n':
		s.advance()
		s.atLineStart = true
		tok = token.NL
		*tokVal = token.Value{Pos: pos}

	case cur == -1:
		tok = token.EOI
		*tokVal = token.Value{Pos: pos}

	default:
		s.advance() // always make progress
		switch cur {
		case '"', '\'':
			tok = token.STR
			lit, val := s.shortString(cur)
			*tokVal = token.Value{Raw: lit, Pos: pos, Str: val}

		case '(', ')', ',', '[', ']', ':':
			tok = token.LookupPunct(string(cur))
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '+', '-', '*', '/', '^', '%':
			tok = token.LookupPunct(string(cur))
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '.':
			tok = token.DOT
			*tokVal = token.Value{Raw: ".", Pos: pos}

		case '=':
			tok = token.ASSIGN
			if s.advanceIf('=') {
				tok = token.EQL
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '<':
			tok = token.LT
			if s.advanceIf('=') {
				tok = token.LE
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '>':
			tok = token.GT
			if s.advanceIf('=') {
				tok = token.GE
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '!':
			if s.advanceIf('=') {
				tok = token.NEQ
				*tokVal = token.Value{Raw: tok.String(), Pos: pos}
			} else {
				s.errorf("illegal character %#U (expected '!=')", cur)
				tok = token.ILLEGAL
				*tokVal = token.Value{Raw: "!", Pos: pos}
			}

		default:
			if cur == utf8.RuneError && s.invalidByte > 0 {
				cur = rune(s.invalidByte)
				s.invalidByte = 0
			}
			s.errorf("illegal character %#U", cur)
			tok = token.ILLEGAL
			*tokVal = token.Value{Raw: string(cur), Pos: pos}
		}
	}
	return tok
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

// skipSpaces skips horizontal whitespace only; newlines are significant
// tokens of their own (token.NL) and are never skipped here.
func (s *Scanner) skipSpaces() {
	for s.cur == ' ' || s.cur == '\t' || s.cur == '\r' {
		s.advance()
	}
}

func isLetter(rn rune) bool {
	return 'a' <= rn && rn <= 'z' ||
		'A' <= rn && rn <= 'Z' ||
		rn == '_' ||
		rn >= utf8.RuneSelf && unicode.IsLetter(rn)
}

func isDigit(rn rune) bool {
	return '0' <= rn && rn <= '9' ||
		rn >= utf8.RuneSelf && unicode.IsDigit(rn)
}
