package parser

import (
	"github.com/mna/nenuphar/lang/ast"
	"github.com/mna/nenuphar/lang/token"
)

// parseFile parses an entire source file as the top-level block of
// statements, terminated by EOI.
func (p *parser) parseFile() *ast.Chunk {
	// a leading NL (e.g. a blank first line) is insignificant
	if p.tok == token.NL {
		p.advance()
	}

	block := p.parseStmtsUntil(token.EOI)
	eoi := p.val.Pos
	return &ast.Chunk{Block: block, EOI: eoi}
}

// parseIndentedBlock expects an INDENT, then parses statements until the
// matching DEDENT, which it consumes.
func (p *parser) parseIndentedBlock() *ast.Block {
	start := p.expect(token.INDENT)
	block := p.parseStmtsUntil(token.DEDENT)
	block.Start = start
	end := p.expect(token.DEDENT)
	block.End = end
	return block
}

// parseBlock expects a COLON introducing a block. If it is immediately
// followed by NL, the block is an indented block (parseIndentedBlock);
// otherwise a single statement follows inline on the same line, as in
// "if n <= 1: return 1".
func (p *parser) parseBlock() *ast.Block {
	p.expect(token.COLON)
	if p.tok == token.NL {
		p.advance()
		return p.parseIndentedBlock()
	}
	start := p.val.Pos
	stmt := p.parseStmt()
	_, end := stmt.Span()
	return &ast.Block{Start: start, End: end, Stmts: []ast.Stmt{stmt}}
}

// parseStmtsUntil parses statements, recovering from per-statement parse
// errors, until the current token is stop (not consumed) or EOI.
func (p *parser) parseStmtsUntil(stop token.Token) (block *ast.Block) {
	block = &ast.Block{Start: p.val.Pos}
	for p.tok != stop && p.tok != token.EOI {
		if stmt, ok := p.parseStmtRecover(); ok {
			block.Stmts = append(block.Stmts, stmt)
		}
	}
	block.End = p.val.Pos
	return block
}

func (p *parser) parseStmtRecover() (stmt ast.Stmt, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			p.syncToNextStmt()
			ok = false
		}
	}()
	return p.parseStmt(), true
}

// syncToNextStmt discards tokens until a likely statement boundary (NL,
// DEDENT or EOI) is reached, so that parsing can resume after an error.
func (p *parser) syncToNextStmt() {
	for p.tok != token.NL && p.tok != token.DEDENT && p.tok != token.EOI {
		p.advance()
	}
	if p.tok == token.NL {
		p.advance()
	}
}
