// Package cmd implements confmerge's command-line front end: argument
// parsing, subcommand dispatch and exit-code translation around the
// merge-and-restart transaction core. Everything in this package is an
// external collaborator around internal/txn.Orchestrator, not part of
// the core transaction itself.
package cmd

import (
	"fmt"
	"os"

	"confmerge/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes. 0 is success; every failure category maps to 1, matching
// the spec's exit-code contract (the taxonomy is still reported in
// detail via the rendered conflict/change/service-log tables).
const (
	ExitCodeSuccess = 0
	ExitCodeFailure = 1
)

var version = "dev"

// SetVersion records the build-time version string, set via -ldflags.
func SetVersion(v string) {
	version = v
}

var configPath string
var stateDir string
var verbose bool
var quiet bool

var rootCmd = &cobra.Command{
	Use:   "confmerge",
	Short: "Transactional configuration-merge engine for router-class devices",
	Long: "confmerge merges a source tree of configuration packages into a router's\n" +
		"live configuration, detecting conflicts, deduplicating list entries,\n" +
		"restarting affected services in dependency order, and rolling back\n" +
		"both configuration and service state when any restart fails.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "/etc/confmerge/confmerge.yaml", "path to confmerge's own configuration file")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "override the live configuration directory (defaults to the value in --config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all but error logging")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "confmerge:", err)
		return ExitCodeFailure
	}
	return ExitCodeSuccess
}

func initLogging() {
	level := logging.LevelInfo
	switch {
	case quiet:
		level = logging.LevelError
	case verbose:
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)
}
