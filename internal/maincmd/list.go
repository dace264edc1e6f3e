package maincmd

import (
	"context"

	"github.com/mna/mainer"
)

func (c *Cmd) List(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ListFiles(ctx, stdio, args...)
}

// ListFiles compiles each file and prints a human-readable disassembly of
// its bytecode (compiler.Program.Disassemble) to stdout.
func ListFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, filename := range files {
		prog, err := compileFile(ctx, stdio, filename)
		if err != nil {
			return err
		}
		if err := prog.Disassemble(stdio.Stdout); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}
