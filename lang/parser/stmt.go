package parser

import (
	"github.com/mna/nenuphar/lang/ast"
	"github.com/mna/nenuphar/lang/token"
)

// parseStmt parses a single statement and consumes its trailing NL (or
// leaves DEDENT/EOI, or the token continuing an enclosing expression, for
// the caller, per finishStatement).
func (p *parser) parseStmt() ast.Stmt {
	switch p.tok {
	case token.LET:
		return p.parseLetStmt()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	default:
		return p.parseSetOrExprStmt()
	}
}

// parseLetStmt parses "let name = expr" or the function-binding sugar
// "let name(params): block", equivalent to "let name = fun(params): block".
func (p *parser) parseLetStmt() ast.Stmt {
	letPos := p.expect(token.LET)
	namePos, name := p.val.Pos, p.val.Raw
	p.expect(token.ID)

	if p.tok == token.LPAREN {
		fn := p.parseFuncTail(namePos)
		return &ast.LetStmt{LetPos: letPos, NamePos: namePos, Name: name, Assign: namePos, Value: fn}
	}

	assign := p.expect(token.ASSIGN)
	value := p.parseExpr()
	p.finishStatement()
	return &ast.LetStmt{LetPos: letPos, NamePos: namePos, Name: name, Assign: assign, Value: value}
}

// parseSetOrExprStmt parses an expression; if followed by ASSIGN it is a
// reassignment to the (assignable) expression just parsed, otherwise the
// expression itself is the statement. Any expression is accepted there,
// not only a call.
func (p *parser) parseSetOrExprStmt() ast.Stmt {
	left := p.parseExpr()
	if p.tok == token.ASSIGN {
		assign := p.expect(token.ASSIGN)
		right := p.parseExpr()
		p.finishStatement()
		return &ast.SetStmt{Left: left, Assign: assign, Right: right}
	}
	p.finishStatement()
	return &ast.ExprStmt{X: left}
}

func (p *parser) parseIfStmt() ast.Stmt {
	return p.parseIfStmtTail(p.expect(token.IF))
}

// parseIfStmtTail parses the cond/then/else portion of an if (or else-if)
// statement; ifPos is the position of the already-consumed if/elif keyword.
func (p *parser) parseIfStmtTail(ifPos token.Pos) *ast.IfStmt {
	var stmt ast.IfStmt
	stmt.IfPos = ifPos
	stmt.Cond = p.parseExpr()
	stmt.Then = p.parseBlock()

	if p.tok == token.ELSE {
		p.expect(token.ELSE)
		if p.tok == token.IF {
			ifPos := p.expect(token.IF)
			stmt.Elif = p.parseIfStmtTail(ifPos)
		} else {
			stmt.Else = p.parseBlock()
		}
	}
	return &stmt
}

func (p *parser) parseWhileStmt() ast.Stmt {
	whilePos := p.expect(token.WHILE)
	cond := p.parseExpr()
	body := p.parseBlock()
	return &ast.WhileStmt{WhilePos: whilePos, Cond: cond, Body: body}
}

func (p *parser) parseReturnStmt() ast.Stmt {
	returnPos := p.expect(token.RETURN)
	var value ast.Expr
	if p.tok != token.NL && p.tok != token.DEDENT && p.tok != token.EOI {
		value = p.parseExpr()
	}
	p.finishStatement()
	return &ast.ReturnStmt{ReturnPos: returnPos, Value: value}
}
