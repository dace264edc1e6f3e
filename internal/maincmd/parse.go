package maincmd

import (
	"context"

	"github.com/mna/mainer"
	"github.com/mna/nenuphar/lang/ast"
	"github.com/mna/nenuphar/lang/parser"
	"github.com/mna/nenuphar/lang/scanner"
	"github.com/mna/nenuphar/lang/token"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(ctx, stdio, token.PosFull, "", args...)
}

// ParseFiles parses each file in turn and prints its AST, continuing past a
// file that fails to parse so a single bad file in a batch does not hide the
// others' output. The first error encountered, if any, is returned once all
// files have been attempted.
func ParseFiles(ctx context.Context, stdio mainer.Stdio, posMode token.PosMode, nodeFmt string, files ...string) error {
	var firstErr error
	for _, filename := range files {
		ch, err := parser.ParseFile(ctx, filename)
		if ch != nil {
			printer := ast.Printer{
				Output:   stdio.Stdout,
				Pos:      posMode,
				Filename: filename,
				NodeFmt:  nodeFmt,
			}
			if perr := printer.Print(ch); perr != nil {
				return printError(stdio, perr)
			}
		}
		if err != nil {
			scanner.PrintError(stdio.Stderr, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
