package parser

import (
	"github.com/mna/nenuphar/lang/ast"
	"github.com/mna/nenuphar/lang/token"
)

// precedence levels, low to high, per the precedence-climbing table:
// and/or=2, not=4, equality/relational=6, additive=8, multiplicative/%=10,
// exponent=12 (right-associative), call/index/property=14.
const (
	precLowest   = 0
	precOrAnd    = 2
	precNot      = 4
	precCompare  = 6
	precAdditive = 8
	precMultiply = 10
	precExponent = 12
	precPrefix   = 11 // unary + - bind tighter than every infix but ^
)

var binPrec = map[token.Token]int{
	token.AND: precOrAnd, token.OR: precOrAnd,
	token.EQL: precCompare, token.NEQ: precCompare,
	token.LT: precCompare, token.LE: precCompare,
	token.GT: precCompare, token.GE: precCompare,
	token.PLUS: precAdditive, token.MINUS: precAdditive,
	token.STAR: precMultiply, token.SLASH: precMultiply, token.PCT: precMultiply,
	token.CARET: precExponent,
}

func (p *parser) parseExpr() ast.Expr {
	return p.parseBinExpr(precLowest)
}

// parseBinExpr implements precedence-climbing: it parses a unary/primary
// expression then folds in binary operators whose precedence is strictly
// greater than minPrec. The exponent operator recurses at prec-1 on its
// right operand (instead of prec) to make it right-associative.
func (p *parser) parseBinExpr(minPrec int) ast.Expr {
	left := p.parseUnaryExpr()

	for {
		prec, ok := binPrec[p.tok]
		if !ok || prec <= minPrec {
			return left
		}
		op := p.tok
		opPos := p.expect(op)

		nextMin := prec
		if op == token.CARET {
			nextMin = prec - 1
		}
		right := p.parseBinExpr(nextMin)
		left = &ast.BinaryExpr{Left: left, OpPos: opPos, Op: op, Right: right}
	}
}

func (p *parser) parseUnaryExpr() ast.Expr {
	if p.tok.IsUnop() {
		op := p.tok
		pos := p.expect(op)
		operandMinPrec := precPrefix
		if op == token.NOT {
			// not binds looser than comparison/arithmetic but tighter than
			// and/or, so "not a == b" parses as "not (a == b)".
			operandMinPrec = precNot
		}
		right := p.parseBinExpr(operandMinPrec)
		return &ast.UnaryExpr{OpPos: pos, Op: op, Right: right}
	}
	return p.parseSuffixedExpr()
}

// parseSuffixedExpr parses a primary expression followed by any chain of
// call/index/property suffixes (precedence 14, left-associative).
func (p *parser) parseSuffixedExpr() ast.Expr {
	e := p.parsePrimaryExpr()
	for {
		switch p.tok {
		case token.LPAREN:
			e = p.parseCallSuffix(e)
		case token.LBRACK:
			e = p.parseIndexSuffix(e)
		case token.DOT:
			e = p.parseDotSuffix(e)
		default:
			return e
		}
	}
}

func (p *parser) parseCallSuffix(fn ast.Expr) ast.Expr {
	lparen := p.expect(token.LPAREN)
	var args []ast.Expr
	var commas []token.Pos
	for p.tok != token.RPAREN {
		args = append(args, p.parseExpr())
		if p.tok != token.COMMA {
			break
		}
		commas = append(commas, p.expect(token.COMMA))
	}
	rparen := p.expect(token.RPAREN)
	return &ast.CallExpr{Fn: fn, Lparen: lparen, Args: args, Commas: commas, Rparen: rparen}
}

func (p *parser) parseIndexSuffix(left ast.Expr) ast.Expr {
	lbrack := p.expect(token.LBRACK)
	idx := p.parseExpr()
	rbrack := p.expect(token.RBRACK)
	return &ast.IndexExpr{Left: left, Lbrack: lbrack, Index: idx, Rbrack: rbrack}
}

func (p *parser) parseDotSuffix(left ast.Expr) ast.Expr {
	dot := p.expect(token.DOT)
	namePos := p.val.Pos
	name := p.val.Raw
	p.expect(token.ID)
	return &ast.DotExpr{Left: left, Dot: dot, NamePos: namePos, Name: name}
}

func (p *parser) parsePrimaryExpr() ast.Expr {
	switch p.tok {
	case token.ID:
		pos, name := p.val.Pos, p.val.Raw
		p.expect(token.ID)
		return &ast.IdentExpr{NamePos: pos, Name: name}

	case token.INT:
		pos, raw, v := p.val.Pos, p.val.Raw, p.val.Int
		p.expect(token.INT)
		return &ast.IntExpr{ValuePos: pos, Raw: raw, Value: v}

	case token.REAL:
		pos, raw, v := p.val.Pos, p.val.Raw, p.val.Float
		p.expect(token.REAL)
		return &ast.RealExpr{ValuePos: pos, Raw: raw, Value: v}

	case token.STR:
		pos, raw, v := p.val.Pos, p.val.Raw, p.val.Str
		p.expect(token.STR)
		return &ast.StringExpr{ValuePos: pos, Raw: raw, Value: v}

	case token.NIL, token.TRUE, token.FALSE:
		tok, pos := p.tok, p.val.Pos
		p.expect(tok)
		return &ast.SymbolExpr{TokPos: pos, Tok: tok}

	case token.LPAREN:
		p.expect(token.LPAREN)
		e := p.parseExpr()
		p.expect(token.RPAREN)
		return e

	case token.LBRACK:
		return p.parseListExpr()

	case token.FUN:
		return p.parseFuncExpr()

	default:
		pos := p.val.Pos
		p.errorExpected(pos, []token.Token{token.ID, token.INT, token.REAL, token.STR, token.LPAREN, token.LBRACK, token.FUN})
		panic(errPanicMode)
	}
}

func (p *parser) parseListExpr() ast.Expr {
	lbrack := p.expect(token.LBRACK)
	var elems []ast.Expr
	var commas []token.Pos
	for p.tok != token.RBRACK {
		elems = append(elems, p.parseExpr())
		if p.tok != token.COMMA {
			break
		}
		commas = append(commas, p.expect(token.COMMA))
	}
	rbrack := p.expect(token.RBRACK)
	return &ast.ListExpr{Lbrack: lbrack, Elems: elems, Commas: commas, Rbrack: rbrack}
}

func (p *parser) parseFuncExpr() ast.Expr {
	funPos := p.expect(token.FUN)
	return p.parseFuncTail(funPos)
}

// parseFuncTail parses a function literal's parameter list and body, given
// the already-consumed position that anchors its span (the "fun" keyword
// itself, or the bound name for the "let name(args): ..." sugar).
func (p *parser) parseFuncTail(anchor token.Pos) *ast.FuncExpr {
	lparen := p.expect(token.LPAREN)

	var params []*ast.Param
	var commas []token.Pos
	for p.tok != token.RPAREN {
		namePos, name := p.val.Pos, p.val.Raw
		p.expect(token.ID)
		params = append(params, &ast.Param{NamePos: namePos, Name: name})
		if p.tok != token.COMMA {
			break
		}
		commas = append(commas, p.expect(token.COMMA))
	}
	rparen := p.expect(token.RPAREN)

	body := p.parseBlock()
	return &ast.FuncExpr{
		FunPos: anchor, Lparen: lparen, Params: params, Commas: commas,
		Rparen: rparen, Body: body,
	}
}
