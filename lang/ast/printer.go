package ast

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mna/nenuphar/lang/token"
)

// Printer controls pretty-printing of the AST nodes.
type Printer struct {
	// Output is the io.Writer to print to.
	Output io.Writer

	// Pos indicates the position printing mode.
	Pos token.PosMode

	// Filename is printed alongside positions when Pos != token.PosNone and
	// Filename is non-empty.
	Filename string

	// NodeFmt is the format string to use to print the nodes. The verb must
	// be either `s` or `v`, a width can be set, and the `#` and `-` flags are
	// supported. Defaults to `%v`.
	NodeFmt string
}

// Print pretty-prints the AST node n, indenting each nested level.
func (p *Printer) Print(n Node) error {
	if p.Output == nil {
		return errors.New("printer: Output must be set")
	}

	pp := &printer{
		w:        p.Output,
		pos:      p.Pos,
		filename: p.Filename,
		nodeFmt:  p.NodeFmt,
	}
	if p.NodeFmt == "" {
		pp.nodeFmt = "%v"
	}

	Walk(pp, n)
	return pp.err
}

type printer struct {
	w        io.Writer
	pos      token.PosMode
	filename string
	nodeFmt  string
	depth    int
	err      error
}

func (p *printer) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit || p.err != nil {
		p.depth--
		return nil
	}

	p.depth++
	p.printNode(n, p.depth-1)
	return p
}

func (p *printer) printNode(n Node, indent int) {
	if p.err != nil {
		return
	}

	format := "%s"
	args := []interface{}{strings.Repeat(". ", indent)}
	if p.pos != token.PosNone {
		format += "[%s] "
		start, _ := n.Span()
		args = append(args, token.FormatPos(p.pos, p.filename, start))
	}
	format += p.nodeFmt + "\n"
	args = append(args, n)

	_, p.err = fmt.Fprintf(p.w, format, args...)
}
