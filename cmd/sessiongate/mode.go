package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/sessiongate/internal/events"
	"github.com/fyrsmithlabs/sessiongate/internal/state"
)

// modeCmd reads or transitions the workflow mode. Transitions are the
// operator's approval path; the mediator itself never enters
// implementation mode.
var modeCmd = &cobra.Command{
	Use:   "mode [discussion|plan|implementation]",
	Short: "Show or change the workflow mode",
	Long: `Without an argument, print the current workflow mode.

With an argument, transition to that mode. Entering plan mode stashes
the active work items; leaving it restores them. Entering implementation
mode grants the agent write access until the mode changes again.

Examples:
  sessiongate mode
  sessiongate mode implementation
  sessiongate mode discussion`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMode,
}

func runMode(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	if len(args) == 0 {
		st, err := rt.store.Load()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), st.Mode)
		return nil
	}

	name := strings.ToLower(args[0])
	target := state.ParseMode(name)
	if name != target.String() {
		return fmt.Errorf("unknown mode %q", args[0])
	}

	var from state.Mode
	st, err := rt.store.Update(func(st *state.SessionState) error {
		from = st.Mode
		rt.machine.SetMode(st, target)
		return nil
	})
	if err != nil {
		return err
	}

	if st.Mode != from {
		rt.events.Append(events.Event{
			Type: events.TypeModeChanged,
			Mode: st.Mode.String(),
			Fields: map[string]string{
				"from": from.String(),
			},
		})
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "mode: %s\n", st.Mode)
	return nil
}
