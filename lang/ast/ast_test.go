package ast_test

import (
	"bytes"
	"testing"

	"github.com/mna/nenuphar/lang/ast"
	"github.com/stretchr/testify/require"
)

func TestPrinter(t *testing.T) {
	chunk := &ast.Chunk{
		Name: "test",
		Block: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.LetStmt{
					Name:  "x",
					Value: &ast.IntExpr{Raw: "1", Value: 1},
				},
			},
		},
	}

	var buf bytes.Buffer
	p := &ast.Printer{Output: &buf}
	require.NoError(t, p.Print(chunk))
	require.Contains(t, buf.String(), "chunk")
	require.Contains(t, buf.String(), "let x")
	require.Contains(t, buf.String(), "1")
}

func TestWalkCountsNodes(t *testing.T) {
	block := &ast.Block{
		Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.IdentExpr{Name: "f"}},
		},
	}

	var visited int
	v := ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir == ast.VisitEnter {
			visited++
		}
		return ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
			if dir == ast.VisitEnter {
				visited++
			}
			return nil
		})
	})
	ast.Walk(v, block)
	require.Equal(t, 2, visited)
}
