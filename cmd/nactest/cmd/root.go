// Package cmd wires the nactest CLI: a thin cobra root command exposing the
// flags CombinedOrchestrator needs. Full CLI UX (help polish, shell
// completion) is out of scope; the command exists only to drive the core.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exitCodeOrchestration is returned when cobra itself fails (bad flags) or
// the orchestrator returns an unexpected error; orchestrator.ExitSuccess/
// ExitFailure flow through lastExitCode directly from CombinedOrchestrator.
const exitCodeOrchestration = 2

var rootCmd = &cobra.Command{
	Use:   "nactest",
	Short: "Run network-infrastructure tests against a merged data model",
	Long: `nactest discovers api and d2d pyATS-style test files under a directory,
fans them out across a worker pool, and reports combined pass/fail results.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

var (
	flagDataFile           string
	flagTemplatesDir       string
	flagOutputDir          string
	flagControllerType     string
	flagDryRun             bool
	flagIncludeTags        []string
	flagExcludeTags        []string
	flagMaxParallelDevices int
	flagKeepArchives       bool
	flagDebug              bool
	flagWorkerPath         string
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&flagDataFile, "data", "", "path to the merged data model YAML file (required)")
	flags.StringVar(&flagTemplatesDir, "templates", ".", "root directory to discover test files under")
	flags.StringVar(&flagOutputDir, "output", "./output", "directory to write reports and archives into")
	flags.StringVar(&flagControllerType, "controller-type", "", "controller type tag to validate credentials for (ACI, SDWAN, CC, MERAKI, FMC, ISE); auto-detected from environment when unset")
	flags.BoolVar(&flagDryRun, "dry-run", false, "discover and print the execution plan without running any test")
	flags.StringSliceVar(&flagIncludeTags, "include-tag", nil, "only run tests carrying this tag (repeatable)")
	flags.StringSliceVar(&flagExcludeTags, "exclude-tag", nil, "skip tests carrying this tag (repeatable)")
	flags.IntVar(&flagMaxParallelDevices, "max-parallel-devices", 0, "override the derived d2d device concurrency (0 keeps the computed value)")
	flags.BoolVar(&flagKeepArchives, "keep-archives", false, "retain per-lane worker archives in the output directory instead of discarding them")
	flags.BoolVar(&flagDebug, "debug", false, "enable debug-level logging")
	flags.StringVar(&flagWorkerPath, "worker-path", "", "path to the nactest-worker binary (defaults to the one next to nactest)")

	_ = rootCmd.MarkFlagRequired("data")
}

// Execute runs the root command and exits the process with the resulting
// exit code: 0 success, 1 test failures/no tests ran/validation failure, 2
// an unexpected orchestration error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCodeOrchestration)
	}
	os.Exit(lastExitCode)
}

// lastExitCode carries the exit code runRoot computed out to Execute, since
// cobra's RunE only returns an error.
var lastExitCode int
