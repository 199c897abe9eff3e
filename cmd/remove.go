package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"confmerge/internal/txn"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <target-name>",
	Short: "Remove every section matching the target tree from the live configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	removeCmd.Flags().Bool("dry-run", false, "skip commit and restart, report what would be removed")
	removeCmd.Flags().Bool("no-restart", false, "skip computing and driving the restart plan")
	removeCmd.Flags().Bool("rollback-on-failure", true, "roll back configuration and services on the first restart failure")
	removeCmd.Flags().Bool("force", false, "skip the interactive confirmation prompt")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	initLogging()

	force, _ := cmd.Flags().GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if !force && !dryRun && !confirm(args[0]) {
		return fmt.Errorf("removal of %s cancelled", args[0])
	}

	orch, err := buildOrchestrator()
	if err != nil {
		return err
	}
	target, err := buildSourceStore(args[0])
	if err != nil {
		return err
	}

	opts := txn.DefaultOptions()
	opts.Merge.DryRun = dryRun
	opts.NoRestart, _ = cmd.Flags().GetBool("no-restart")
	opts.RollbackOnFailure, _ = cmd.Flags().GetBool("rollback-on-failure")

	result, txErr := orch.RemoveMatching(context.Background(), target, opts)
	renderResult(result)
	return txErr
}

func confirm(target string) bool {
	fmt.Fprintf(os.Stdout, "Remove sections matching %q from the live configuration? [y/N] ", target)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.EqualFold(strings.TrimSpace(line), "y")
}
