package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stratum/internal/cli"
	serrors "github.com/matzehuels/stratum/pkg/errors"
)

// Exit statuses. Scripts laying out many graphs tell a bad input apart
// from a graph the engine could not lay out.
const (
	exitFailure     = 1
	exitBadInput    = 2
	exitLayout      = 3
	exitInterrupted = 130
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		code := exitCode(err)
		if code != exitInterrupted {
			fmt.Fprintln(os.Stderr, "stratum:", err)
		}
		os.Exit(code)
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log cache lookups and, with --debug-timing, every layout pass")

	preRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if preRun != nil {
			return preRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

// exitCode maps err to the process exit status.
func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	switch serrors.GetCode(err) {
	case serrors.ErrCodeInvalidInput, serrors.ErrCodeInvalidFormat, serrors.ErrCodeInvalidPath,
		serrors.ErrCodeInvalidConfig, serrors.ErrCodeFileNotFound:
		return exitBadInput
	case serrors.ErrCodeCyclicGraph, serrors.ErrCodeUnassignedRank, serrors.ErrCodeInternal:
		return exitLayout
	}
	return exitFailure
}
