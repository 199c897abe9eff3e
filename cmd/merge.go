package cmd

import (
	"context"
	"os"

	"confmerge/internal/cli"
	"confmerge/internal/txn"

	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <source-directory>",
	Short: "Merge a source configuration tree into the live configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runMerge,
}

func init() {
	mergeCmd.Flags().Bool("dry-run", false, "skip commit and restart, report what would change")
	mergeCmd.Flags().Bool("preserve-network", false, "guard the management network interface against unsafe changes")
	mergeCmd.Flags().Bool("dedupe-lists", false, "deduplicate list entries after merging")
	mergeCmd.Flags().Bool("preserve-existing", true, "keep the current value on conflict (false: incoming wins)")
	mergeCmd.Flags().Bool("no-restart", false, "skip computing and driving the restart plan")
	mergeCmd.Flags().Bool("rollback-on-failure", true, "roll back configuration and services on the first restart failure")
	rootCmd.AddCommand(mergeCmd)
}

func mergeOptionsFromFlags(cmd *cobra.Command) txn.Options {
	opts := txn.DefaultOptions()
	opts.Merge.DryRun, _ = cmd.Flags().GetBool("dry-run")
	opts.Merge.PreserveNetwork, _ = cmd.Flags().GetBool("preserve-network")
	opts.Merge.DedupeLists, _ = cmd.Flags().GetBool("dedupe-lists")
	opts.Merge.PreserveExisting, _ = cmd.Flags().GetBool("preserve-existing")
	opts.NoRestart, _ = cmd.Flags().GetBool("no-restart")
	opts.RollbackOnFailure, _ = cmd.Flags().GetBool("rollback-on-failure")
	return opts
}

func runMerge(cmd *cobra.Command, args []string) error {
	initLogging()

	orch, err := buildOrchestrator()
	if err != nil {
		return err
	}
	source, err := buildSourceStore(args[0])
	if err != nil {
		return err
	}

	opts := mergeOptionsFromFlags(cmd)
	result, txErr := orch.MergeTree(context.Background(), source, opts)
	renderResult(result)
	return txErr
}

// renderResult prints the transaction's final per-package state, the
// service undo log and the conflict list, matching the user-visible
// behavior the error handling design requires on any failure (and is
// equally informative on success).
func renderResult(result *txn.Result) {
	if result == nil {
		return
	}
	cli.RenderPackageStates(os.Stdout, result.PackageStates)
	cli.RenderServiceLog(os.Stdout, result.ServiceLog)
	cli.RenderConflicts(os.Stdout, result.Conflicts)
	cli.RenderChanges(os.Stdout, result.Changes)
}
