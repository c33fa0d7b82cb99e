// Package main implements the sessiongate CLI: the pre-tool-use hook
// entry point plus operator commands for inspecting and transitioning
// workflow state.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/sessiongate/internal/branch"
	"github.com/fyrsmithlabs/sessiongate/internal/events"
	"github.com/fyrsmithlabs/sessiongate/internal/logging"
	"github.com/fyrsmithlabs/sessiongate/internal/policy"
	"github.com/fyrsmithlabs/sessiongate/internal/state"
	"github.com/fyrsmithlabs/sessiongate/internal/workflow"
)

var (
	// projectDir overrides project root discovery.
	projectDir string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sessiongate",
	Short: "Tool-call mediation for AI coding sessions",
	Long: `sessiongate mediates an AI coding agent's tool calls: shell commands,
file edits, and work-item submissions are checked against the session's
workflow mode, the approved work-item scope, and the active task's
branch before they run.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", "", "project root (default: discovered from the working directory)")
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sessiongate version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sessiongate %s\n", version)
	},
}

// runtime bundles the wired components for one invocation.
type runtime struct {
	projectRoot string
	store       *state.Store
	cfg         *policy.Config
	mediator    *workflow.Mediator
	machine     *workflow.Machine
	events      *events.Log
	logger      *zap.Logger
}

// buildRuntime discovers the project root, loads policy, and wires the
// mediation components.
func buildRuntime() (*runtime, error) {
	root := projectDir
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		root = state.FindProjectRoot(cwd)
	}

	cfg, err := policy.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading policy: %w", err)
	}

	logCfg := logging.NewDefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	store := state.NewStore(root)
	checker := branch.NewChecker(cfg.Git.Timeout, logger)
	eventLog := events.NewLog(
		filepath.Join(root, state.DirName),
		cfg.Features.EventLogEnabled(),
		logger,
	)

	return &runtime{
		projectRoot: root,
		store:       store,
		cfg:         cfg,
		mediator:    workflow.NewMediator(root, store, cfg, checker, eventLog, logger),
		machine:     workflow.NewMachine(logger),
		events:      eventLog,
		logger:      logger,
	}, nil
}
