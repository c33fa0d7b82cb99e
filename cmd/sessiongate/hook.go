package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/sessiongate/internal/hookio"
	"github.com/fyrsmithlabs/sessiongate/internal/state"
)

// hookCmd is the pre-tool-use entry point. The host agent pipes the
// candidate tool invocation to stdin as JSON; the exit code carries the
// verdict (0 allow, 1 fatal, 2 block).
var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Mediate one tool invocation read from stdin",
	Long: `Read a tool invocation from stdin, evaluate it against the session's
workflow state, and exit with the verdict.

Exit codes:
  0  allowed
  1  the invocation could not be evaluated (malformed input, corrupted state)
  2  blocked by policy (details on stdout and stderr)

Example host configuration:
  sessiongate hook < invocation.json`,
	Args: cobra.NoArgs,
	Run:  runHook,
}

func runHook(cmd *cobra.Command, args []string) {
	decision := mediate()
	if err := decision.Emit(os.Stdout, os.Stderr); err != nil {
		os.Exit(hookio.CodeFatal)
	}
	os.Exit(decision.ExitCode())
}

func mediate() hookio.Decision {
	req, err := hookio.Decode(os.Stdin)
	if err != nil {
		return hookio.Fatal(err)
	}

	// The request's cwd locates the project when --project is not given.
	if projectDir == "" && req.CWD != "" {
		projectDir = state.FindProjectRoot(req.CWD)
	}

	rt, err := buildRuntime()
	if err != nil {
		return hookio.Fatal(err)
	}
	defer rt.logger.Sync()

	return rt.mediator.Mediate(context.Background(), req)
}
