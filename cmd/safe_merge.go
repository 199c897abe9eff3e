package cmd

import (
	"context"

	"confmerge/internal/txn"

	"github.com/spf13/cobra"
)

var safeMergeCmd = &cobra.Command{
	Use:   "safe-merge <target-name>",
	Short: "Merge with preserve-network, dedupe-lists and preserve-existing implied",
	Args:  cobra.ExactArgs(1),
	RunE:  runSafeMerge,
}

func init() {
	safeMergeCmd.Flags().Bool("dry-run", false, "skip commit and restart, report what would change")
	safeMergeCmd.Flags().Bool("no-restart", false, "skip computing and driving the restart plan")
	safeMergeCmd.Flags().Bool("rollback-on-failure", true, "roll back configuration and services on the first restart failure")
	rootCmd.AddCommand(safeMergeCmd)
}

func runSafeMerge(cmd *cobra.Command, args []string) error {
	initLogging()

	orch, err := buildOrchestrator()
	if err != nil {
		return err
	}
	source, err := buildSourceStore(args[0])
	if err != nil {
		return err
	}

	opts := txn.DefaultOptions()
	opts.Merge.PreserveNetwork = true
	opts.Merge.DedupeLists = true
	opts.Merge.PreserveExisting = true
	opts.Merge.DryRun, _ = cmd.Flags().GetBool("dry-run")
	opts.NoRestart, _ = cmd.Flags().GetBool("no-restart")
	opts.RollbackOnFailure, _ = cmd.Flags().GetBool("rollback-on-failure")

	result, txErr := orch.MergeTree(context.Background(), source, opts)
	renderResult(result)
	return txErr
}
