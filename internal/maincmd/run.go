package maincmd

import (
	"context"

	"github.com/mna/mainer"
	"github.com/mna/nenuphar/lang/machine"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return RunFiles(ctx, stdio, args...)
}

// RunFiles compiles and executes each file in turn, on its own Thread, in
// the order given. A failing file stops the batch; files are independent
// programs, not a single linked one.
func RunFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, filename := range files {
		prog, err := compileFile(ctx, stdio, filename)
		if err != nil {
			return err
		}

		th := machine.NewThread(filename)
		th.Stdout = stdio.Stdout
		th.Stderr = stdio.Stderr
		if _, err := th.RunProgram(ctx, prog); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}
