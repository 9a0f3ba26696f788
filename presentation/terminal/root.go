// Package terminal is the command line front end of the test runner
package terminal

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootCmd struct {
	gs      *globalState
	noColor bool
}

func newRootCommand(gs *globalState) *cobra.Command {
	c := &rootCmd{gs: gs}

	root := &cobra.Command{
		Use:   "authflow",
		Short: "Browser end-to-end tests for the login flow",
		Long: "authflow drives a real browser through the login, error and logout " +
			"flows of the application under test and records screenshots, logs and a report.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(gs.stdout)
	root.SetErr(gs.stderr)
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newRunCommand(gs, &c.noColor),
		newConfigCommand(gs, &c.noColor),
	)
	return root
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, newGlobalState(), os.Args[1:])
}

func execute(ctx context.Context, gs *globalState, args []string) int {
	root := newRootCommand(gs)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		noColor, _ := root.PersistentFlags().GetBool("no-color")
		newPrinter(gs.stderr, noColor).fail.Fprintf(gs.stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
