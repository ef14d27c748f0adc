package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/netascode/nac-test-go/internal/errs"
	"github.com/netascode/nac-test-go/internal/model"
	"github.com/netascode/nac-test-go/internal/nonlane"
	"github.com/netascode/nac-test-go/internal/report"
	"github.com/netascode/nac-test-go/pkg/logging"
)

// Exit codes per §6: 0 success, 1 test failures or no tests ran or
// controller validation failure, higher values reserved for unexpected
// orchestration errors.
const (
	ExitSuccess       = 0
	ExitFailure       = 1
	ExitOrchestration = 2
)

// CombinedConfig configures a CombinedOrchestrator.
type CombinedConfig struct {
	OutputDir string
	Out       io.Writer
}

// CombinedOrchestrator runs the pyATS family and any other registered test
// family (the "robot" peer, represented by nonlane.Lane), merges their
// TestResults under by_framework, and renders the combined dashboard.
type CombinedOrchestrator struct {
	pyats *PyATSOrchestrator
	robot nonlane.Lane
	cfg   CombinedConfig
}

// NewCombinedOrchestrator returns a CombinedOrchestrator. robot may be
// nonlane.Disabled{} when no peer family is wired in.
func NewCombinedOrchestrator(pyats *PyATSOrchestrator, robot nonlane.Lane, cfg CombinedConfig) *CombinedOrchestrator {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if robot == nil {
		robot = nonlane.Disabled{LaneName: "robot"}
	}
	return &CombinedOrchestrator{pyats: pyats, robot: robot, cfg: cfg}
}

// Run executes every wired family, merges their results, writes the
// combined dashboard, and returns the process exit code. A non-nil error
// means an unexpected orchestration failure, not a test or configuration
// failure - those are reported through the exit code alone, matching §6/§7.
func (c *CombinedOrchestrator) Run(ctx context.Context) (int, error) {
	laneResults, err := c.pyats.Run(ctx)
	if err != nil {
		if errs.OfKind(err, errs.ConfigurationError) {
			fmt.Fprintf(c.cfg.Out, "configuration error: %s\n", err)
			return ExitFailure, nil
		}
		return ExitOrchestration, err
	}

	byFamily := map[string]model.TestResults{"pyats": sumLaneResults(laneResults)}

	robotFailed := false
	if c.robot.HasTests() {
		robotResults, err := c.robot.Run(ctx)
		if err != nil {
			logging.Error(subsystem, err, "robot family execution failed")
			robotResults = model.ErrorResults(0, err.Error())
			robotFailed = true
		}
		byFamily["robot"] = robotResults
	}

	combined := model.EmptyResults()
	for name, r := range byFamily {
		combined = combined.Add(model.WithFramework(name, r))
	}

	if gen, genErr := report.NewSummaryGenerator(); genErr == nil {
		path := combinedSummaryPath(c.cfg.OutputDir)
		if _, err := gen.Combined(byFamily, path); err != nil {
			logging.Warn(subsystem, "rendering combined summary: %s", err)
		}
	} else {
		logging.Warn(subsystem, "building summary generator: %s", genErr)
	}

	report.PrintConsole(c.cfg.Out, consoleRows(byFamily))

	if robotFailed || combined.Total == 0 || combined.Failed > 0 || combined.Errored > 0 {
		return ExitFailure, nil
	}
	return ExitSuccess, nil
}

func sumLaneResults(r LaneResults) model.TestResults {
	total := model.EmptyResults()
	if r.API != nil {
		total = total.Add(*r.API)
	}
	if r.D2D != nil {
		total = total.Add(*r.D2D)
	}
	return total
}

func combinedSummaryPath(outputDir string) string {
	return newLayout(outputDir, outputDir).combinedSummaryPath()
}

func consoleRows(byFamily map[string]model.TestResults) map[string]report.Stats {
	rows := make(map[string]report.Stats, len(byFamily))
	for name, r := range byFamily {
		rows[name] = report.StatsFrom(r, "")
	}
	return rows
}
