// Command optchain synthesizes optional-argument builders from CUE
// declaration specs.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/optchain/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return
	}
	// Commands report their own failures; only cobra's usage errors are
	// left for us to print.
	code := cli.GetExitCode(err)
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		code = cli.ExitCommandError
	}
	stop()
	os.Exit(code)
}
