package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/netascode/nac-test-go/internal/nonlane"
	"github.com/netascode/nac-test-go/internal/orchestrator"
	"github.com/netascode/nac-test-go/pkg/logging"
	"github.com/spf13/cobra"
)

func runRoot(cmd *cobra.Command, args []string) error {
	level := logging.LevelInfo
	if flagDebug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, os.Stderr)

	if flagControllerType != "" {
		_ = os.Setenv("CONTROLLER_TYPE", flagControllerType)
	}

	workerPath := flagWorkerPath
	if workerPath == "" {
		workerPath = defaultWorkerPath()
	}

	spin := newDiscoverySpinner()
	spin.Start()

	pyats := orchestrator.NewPyATSOrchestrator(orchestrator.Config{
		TestRoot:           flagTemplatesDir,
		MergedDataFile:     flagDataFile,
		OutputDir:          flagOutputDir,
		WorkerPath:         workerPath,
		IncludeTags:        flagIncludeTags,
		ExcludeTags:        flagExcludeTags,
		MaxParallelDevices: flagMaxParallelDevices,
		DryRun:             flagDryRun,
		Debug:              flagDebug,
		KeepArchives:       flagKeepArchives,
		Out:                cmd.OutOrStdout(),
	})

	spin.Stop()

	combined := orchestrator.NewCombinedOrchestrator(pyats, nonlane.Disabled{LaneName: "robot"}, orchestrator.CombinedConfig{
		OutputDir: flagOutputDir,
		Out:       cmd.OutOrStdout(),
	})

	code, err := combined.Run(cmd.Context())
	if err != nil {
		lastExitCode = exitCodeOrchestration
		return fmt.Errorf("orchestration failed: %w", err)
	}
	lastExitCode = code
	return nil
}

// newDiscoverySpinner returns the spinner runRoot shows while it builds the
// orchestrator. runRoot stops it before CombinedOrchestrator.Run starts, so
// it is not running while Run walks the test tree.
func newDiscoverySpinner() *spinner.Spinner {
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond)
	s.Suffix = " discovering tests..."
	return s
}

func defaultWorkerPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "nactest-worker"
	}
	return filepath.Join(filepath.Dir(exe), "nactest-worker")
}
