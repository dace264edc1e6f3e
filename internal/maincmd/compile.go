package maincmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mna/mainer"
	"github.com/mna/nenuphar/lang/compiler"
	"github.com/mna/nenuphar/lang/parser"
	"github.com/mna/nenuphar/lang/scanner"
)

func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return CompileFiles(ctx, stdio, args...)
}

// CompileFiles compiles each source file to a Program and writes it, in the
// .sbf binary format described by compiler.Program.WriteTo, to a sibling
// file with its extension replaced by ".sbf".
func CompileFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, filename := range files {
		prog, err := compileFile(ctx, stdio, filename)
		if err != nil {
			return err
		}

		out := sbfPath(filename)
		f, err := os.Create(out)
		if err != nil {
			return printError(stdio, err)
		}
		_, werr := prog.WriteTo(f)
		cerr := f.Close()
		if werr != nil {
			return printError(stdio, werr)
		}
		if cerr != nil {
			return printError(stdio, cerr)
		}
	}
	return nil
}

func sbfPath(filename string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + ".sbf"
}

// compileFile runs the scanner, parser and compiler over filename, printing
// any error encountered (in the scanner/parser's position-annotated format
// for lexical and syntax errors, as a plain message for type errors).
func compileFile(ctx context.Context, stdio mainer.Stdio, filename string) (*compiler.Program, error) {
	ch, err := parser.ParseFile(ctx, filename)
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return nil, err
	}
	prog, err := compiler.CompileFile(filename, ch)
	if err != nil {
		return nil, printError(stdio, err)
	}
	return prog, nil
}
