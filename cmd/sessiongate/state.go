package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/sessiongate/internal/state"
)

var (
	// taskName, taskBranch, taskRepos configure the active task.
	taskName   string
	taskBranch string
	taskRepos  []string
)

// stateCmd inspects and maintains the persisted session state.
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or maintain the persisted session state",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the session state as JSON",
	Args:  cobra.NoArgs,
	RunE:  runStateShow,
}

var stateTaskCmd = &cobra.Command{
	Use:   "task",
	Short: "Set or clear the active task",
	Long: `Set the active task's name, branch, and repository list, or clear it.

While a task with a branch is set, file writes are checked against the
task's repositories and branch.

Examples:
  sessiongate state task --name auth-refactor --branch feature/auth --repo api --repo web
  sessiongate state task --clear`,
	Args: cobra.NoArgs,
	RunE: runStateTask,
}

var clearTask bool

var stateBypassCmd = &cobra.Command{
	Use:   "bypass [on|off]",
	Short: "Set or clear the enforcement bypass flag",
	Args:  cobra.ExactArgs(1),
	RunE:  runStateBypass,
}

func init() {
	stateTaskCmd.Flags().StringVar(&taskName, "name", "", "task name")
	stateTaskCmd.Flags().StringVar(&taskBranch, "branch", "", "required branch for the task's repositories")
	stateTaskCmd.Flags().StringArrayVar(&taskRepos, "repo", nil, "repository short name (repeatable)")
	stateTaskCmd.Flags().BoolVar(&clearTask, "clear", false, "clear the active task")

	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateTaskCmd)
	stateCmd.AddCommand(stateBypassCmd)
}

func runStateShow(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	st, err := rt.store.Load()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runStateTask(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	if !clearTask && taskName == "" {
		return fmt.Errorf("either --name or --clear is required")
	}

	_, err = rt.store.Update(func(st *state.SessionState) error {
		if clearTask {
			st.CurrentTask = nil
			return nil
		}
		st.CurrentTask = &state.Task{
			Name:         taskName,
			Branch:       taskBranch,
			Repositories: taskRepos,
		}
		return nil
	})
	return err
}

func runStateBypass(cmd *cobra.Command, args []string) error {
	var on bool
	switch args[0] {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return fmt.Errorf("argument must be 'on' or 'off', got %q", args[0])
	}

	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	_, err = rt.store.Update(func(st *state.SessionState) error {
		st.Flags.Set(state.FlagBypass, on)
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "bypass: %v\n", on)
	return nil
}
