package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/netascode/nac-test-go/internal/aggregate"
	"github.com/netascode/nac-test-go/internal/apilane"
	"github.com/netascode/nac-test-go/internal/broker"
	"github.com/netascode/nac-test-go/internal/config"
	"github.com/netascode/nac-test-go/internal/device"
	"github.com/netascode/nac-test-go/internal/discovery"
	"github.com/netascode/nac-test-go/internal/errs"
	"github.com/netascode/nac-test-go/internal/events"
	"github.com/netascode/nac-test-go/internal/execution"
	"github.com/netascode/nac-test-go/internal/inventory"
	"github.com/netascode/nac-test-go/internal/model"
	"github.com/netascode/nac-test-go/internal/report"
	"github.com/netascode/nac-test-go/internal/resources"
	"github.com/netascode/nac-test-go/internal/testbed"
	"github.com/netascode/nac-test-go/pkg/logging"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const subsystem = "orchestrator"

// cpuMultiplier, memoryPerConnectionMB and fdsPerConnection are the
// resource-model tunables §5 describes by formula but does not pin to a
// number; the values here are a conservative starting point absent from the
// merged-data schema.
const (
	cpuMultiplier         = 2.0
	memoryPerConnectionMB = 50.0
	fdsPerConnectionCount = 4
)

// Config describes one orchestration run end to end.
type Config struct {
	TestRoot           string
	MergedDataFile     string
	BaseTestbedFile    string
	OutputDir          string
	TempDir            string
	WorkerPath         string
	IncludeTags        []string
	ExcludeTags        []string
	ExcludeDirs        []string
	MaxParallelDevices int
	DryRun             bool
	Debug              bool
	KeepArchives       bool
	Getenv             func(string) string
	Out                io.Writer
}

// LaneResults is the per-lane outcome of one run. A nil pointer means that
// lane had no tests while the other lane did; when no test is discovered
// at all, both lanes carry empty results.
type LaneResults struct {
	API *model.TestResults
	D2D *model.TestResults
}

// PyATSOrchestrator owns a full run of the pyATS-based test family: both its
// lanes, their shared progress reporting, and the reports each lane leaves
// behind.
type PyATSOrchestrator struct {
	cfg      Config
	status   *execution.StatusMap
	reporter *execution.ProgressReporter
	events   *events.Generator
}

// NewPyATSOrchestrator returns an orchestrator for cfg.
func NewPyATSOrchestrator(cfg Config) *PyATSOrchestrator {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.TempDir == "" {
		cfg.TempDir = filepath.Join(os.TempDir(), "nac-test")
	}
	status := execution.NewStatusMap()
	return &PyATSOrchestrator{
		cfg:      cfg,
		status:   status,
		reporter: execution.NewProgressReporter(cfg.Out, status),
		events:   events.NewGenerator(events.LogRecorder{}),
	}
}

// Run validates the environment, discovers tests, fans the two lanes out in
// parallel, and returns their results. A non-nil error means the run never
// got to execute anything (pre-flight, discovery, output layout, run config
// or testbed setup failure); any other
// infrastructure error is folded into a lane's TestResults instead, per §7's
// propagation policy.
func (o *PyATSOrchestrator) Run(ctx context.Context) (LaneResults, error) {
	o.events.Emit(events.ReasonRunStarted, events.EventData{})
	defer o.events.Emit(events.ReasonRunCompleted, events.EventData{})

	if _, err := Preflight(o.cfg.Getenv); err != nil {
		return LaneResults{}, err
	}

	plan, err := o.discover()
	if err != nil {
		return LaneResults{}, err
	}

	if o.cfg.DryRun {
		o.printPlan(plan)
		return LaneResults{
			API: notRunResults(len(plan.APITests)),
			D2D: notRunResults(len(plan.D2DTests)),
		}, nil
	}

	if plan.TotalCount() == 0 {
		empty := model.EmptyResults()
		return LaneResults{API: &empty, D2D: &empty}, nil
	}

	lay := newLayout(o.cfg.OutputDir, o.cfg.TempDir)
	if err := lay.ensure(); err != nil {
		return LaneResults{}, err
	}

	runCfg, devices, baseTestbed, err := o.loadRunConfig()
	if err != nil {
		return LaneResults{}, err
	}

	calc := resources.NewCalculator()
	workerCapacity := calc.WorkerCapacity(
		float64(runCfg.Concurrency.MemoryPerWorkerMB)/1024,
		cpuMultiplier,
		runCfg.Concurrency.APIConcurrency,
		"NAC_TEST_PYATS_PROCESSES",
	)
	connectionCapacity := calc.ConnectionCapacity(
		memoryPerConnectionMB,
		fdsPerConnectionCount,
		runCfg.Concurrency.SSHConcurrency,
		"NAC_TEST_PYATS_MAX_CONNECTIONS",
	)

	builder := testbed.New()
	consolidated := builder.Consolidated(baseTestbed, devices)
	consolidatedPath, err := writeTestbed(lay.tempDir, "testbed_consolidated.yaml", consolidated)
	if err != nil {
		return LaneResults{}, err
	}

	var g errgroup.Group
	var apiResults, d2dResults *model.TestResults

	if len(plan.APITests) > 0 {
		g.Go(func() error {
			o.events.Emit(events.ReasonLaneStarted, events.EventData{Lane: string(model.TestTypeAPI)})
			start := time.Now()
			r := o.runAPILane(ctx, plan.APIPaths(), runCfg, consolidatedPath, workerCapacity, lay)
			o.emitLaneOutcome(model.TestTypeAPI, r, time.Since(start))
			apiResults = &r
			return nil
		})
	}
	if len(plan.D2DTests) > 0 {
		g.Go(func() error {
			o.events.Emit(events.ReasonLaneStarted, events.EventData{Lane: string(model.TestTypeD2D)})
			start := time.Now()
			r := o.runD2DLane(ctx, plan.D2DPaths(), devices, baseTestbed, consolidated, workerCapacity, connectionCapacity, lay)
			o.emitLaneOutcome(model.TestTypeD2D, r, time.Since(start))
			d2dResults = &r
			return nil
		})
	}
	_ = g.Wait()

	return LaneResults{API: apiResults, D2D: d2dResults}, nil
}

func (o *PyATSOrchestrator) discover() (*model.ExecutionPlan, error) {
	opts := []discovery.Option{
		discovery.WithExcludeDirs(o.cfg.ExcludeDirs),
		discovery.WithTagFilter(discovery.NewTagFilter(o.cfg.IncludeTags, o.cfg.ExcludeTags)),
	}
	return discovery.New(o.cfg.TestRoot, opts...).Discover()
}

func (o *PyATSOrchestrator) printPlan(plan *model.ExecutionPlan) {
	fmt.Fprintf(o.cfg.Out, "dry run: %d api test(s), %d d2d test(s), %d skipped, %d filtered by tag\n",
		len(plan.APITests), len(plan.D2DTests), len(plan.SkippedFiles), plan.FilteredCount)
}

// loadRunConfig reads the merged-data file twice: once through config.Load
// for the strongly-typed settings (concurrency, broker, controller), and
// once as a raw map for inventory.Resolve, which intentionally stays
// untyped so a user's device entries can carry fields this package doesn't
// know about.
func (o *PyATSOrchestrator) loadRunConfig() (config.RunConfig, []model.DeviceRecord, *model.Testbed, error) {
	runCfg, err := config.Load(o.cfg.MergedDataFile)
	if err != nil {
		return config.RunConfig{}, nil, nil, err
	}

	raw, err := os.ReadFile(o.cfg.MergedDataFile)
	if err != nil {
		return config.RunConfig{}, nil, nil, errs.Wrap(errs.ConfigurationError, "read merged data file", subsystem, o.cfg.MergedDataFile, err)
	}
	var data map[string]interface{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return config.RunConfig{}, nil, nil, errs.Wrap(errs.ConfigurationError, "parse merged data file", subsystem, o.cfg.MergedDataFile, err)
	}

	devices, skipped := inventory.New().Resolve(data, inventory.Options{})
	if len(skipped) > 0 {
		logging.Warn(subsystem, "inventory resolution skipped %d device(s)", len(skipped))
	}

	builder := testbed.New()
	baseTestbed, err := builder.LoadBase(o.cfg.BaseTestbedFile)
	if err != nil {
		return config.RunConfig{}, nil, nil, err
	}

	return runCfg, devices, baseTestbed, nil
}

func (o *PyATSOrchestrator) runAPILane(ctx context.Context, paths []string, runCfg config.RunConfig, testbedFile string, workerCapacity int, lay *layout) model.TestResults {
	executor := apilane.New(apilane.Config{
		WorkerPath:     o.cfg.WorkerPath,
		TempDir:        lay.tempDir,
		ArchiveDir:     lay.tempDir,
		MergedDataFile: o.cfg.MergedDataFile,
		TestbedFile:    testbedFile,
		WorkerCapacity: workerCapacity,
		Debug:          o.cfg.Debug,
		Out:            o.cfg.Out,
	}, o.reporter)

	archive, err := executor.Run(ctx, paths)
	if err != nil {
		logging.Error(subsystem, err, "api lane execution failed")
		return model.ErrorResults(len(paths), err.Error())
	}

	results, err := resultsFromArchive(archive.Path)
	if err != nil {
		logging.Error(subsystem, err, "reading api lane archive summary")
		return model.ErrorResults(len(paths), err.Error())
	}
	o.backfillStatusFromArchive(archive.Path, "api")

	if xunitPath, err := extractXUnitToDir(archive.Path, lay.tempDir, "api"); err == nil {
		merger := aggregate.NewXUnitMerger()
		if err := merger.Merge([]aggregate.Input{{Path: xunitPath, SourceTag: "pyats_api"}}, lay.laneXUnitPath(model.TestTypeAPI)); err != nil {
			logging.Warn(subsystem, "merging api lane xunit: %s", err)
		}
	} else {
		logging.Warn(subsystem, "extracting api lane xunit: %s", err)
	}

	if gen, genErr := report.NewSummaryGenerator(); genErr == nil {
		if _, err := gen.LaneSummary("api", results, lay.laneSummaryPath(model.TestTypeAPI)); err != nil {
			logging.Warn(subsystem, "rendering api lane summary: %s", err)
		}
	}

	if o.cfg.KeepArchives {
		_ = lay.retainArchive(archive.Path, model.TestTypeAPI)
	}
	_ = os.Remove(archive.Path)

	return results
}

func (o *PyATSOrchestrator) runD2DLane(ctx context.Context, paths []string, devices []model.DeviceRecord, baseTestbed, consolidated *model.Testbed, workerCapacity, connectionCapacity int, lay *layout) model.TestResults {
	brokerSocket := filepath.Join(lay.tempDir, "broker.sock")

	b := broker.New(broker.Config{
		SocketPath:       brokerSocket,
		Testbed:          consolidated,
		TransportFactory: broker.NewSubprocessTransportFactory(),
		MaxConnections:   connectionCapacity,
	})
	if err := b.Start(ctx); err != nil {
		logging.Error(subsystem, err, "starting connection broker")
		return model.ErrorResults(len(paths)*len(devices), err.Error())
	}
	defer func() { _ = b.Stop(ctx) }()

	executor := device.New(device.Config{
		WorkerPath:         o.cfg.WorkerPath,
		TempDir:            lay.tempDir,
		ArchiveDir:         lay.tempDir,
		MergedDataFile:     o.cfg.MergedDataFile,
		BrokerSocket:       brokerSocket,
		BaseTestbed:        baseTestbed,
		WorkerCapacity:     workerCapacity,
		MaxParallelDevices: o.cfg.MaxParallelDevices,
		Debug:              o.cfg.Debug,
		Out:                o.cfg.Out,
	}, o.reporter)

	deviceResults := executor.Run(ctx, paths, devices)

	results := model.EmptyResults()
	var archives []model.Archive
	for _, r := range deviceResults {
		if r.Err != nil {
			logging.Error(subsystem, r.Err, "device %s lane execution failed", r.Device.Hostname)
			results = results.Add(model.ErrorResults(len(paths), r.Err.Error()))
			continue
		}

		summary, err := resultsFromArchive(r.Archive.Path)
		if err != nil {
			logging.Error(subsystem, err, "reading archive summary for device %s", r.Device.Hostname)
			results = results.Add(model.ErrorResults(len(paths), err.Error()))
			continue
		}
		results = results.Add(summary)
		archives = append(archives, r.Archive)
		o.backfillStatusFromArchive(r.Archive.Path, r.Device.Hostname)

		if xunitPath, err := extractXUnitToDir(r.Archive.Path, lay.tempDir, r.Device.Hostname); err == nil {
			merger := aggregate.NewXUnitMerger()
			_ = os.MkdirAll(filepath.Dir(lay.deviceXUnitPath(r.Device.Hostname)), 0o755)
			if err := merger.Merge([]aggregate.Input{{Path: xunitPath, SourceTag: "pyats_d2d_" + r.Device.Hostname}}, lay.deviceXUnitPath(r.Device.Hostname)); err != nil {
				logging.Warn(subsystem, "merging device xunit for %s: %s", r.Device.Hostname, err)
			}
		}
	}

	if len(archives) > 0 {
		combinedPath := filepath.Join(lay.tempDir, "d2d_combined.zip")
		combined, err := aggregate.NewArchiveAggregator().Aggregate(archives, combinedPath)
		if err != nil {
			logging.Error(subsystem, err, "aggregating d2d archives")
		} else {
			if o.cfg.KeepArchives {
				_ = lay.retainArchive(combined.Path, model.TestTypeD2D)
			}
			_ = os.Remove(combined.Path)
		}
	}

	merger := aggregate.NewXUnitMerger()
	var laneInputs []aggregate.Input
	for _, r := range deviceResults {
		if r.Err == nil {
			laneInputs = append(laneInputs, aggregate.Input{Path: lay.deviceXUnitPath(r.Device.Hostname), SourceTag: "pyats_d2d_" + r.Device.Hostname})
		}
	}
	if len(laneInputs) > 0 {
		if err := merger.Merge(laneInputs, lay.laneXUnitPath(model.TestTypeD2D)); err != nil {
			logging.Warn(subsystem, "merging d2d lane xunit: %s", err)
		}
	}

	if gen, genErr := report.NewSummaryGenerator(); genErr == nil {
		if _, err := gen.LaneSummary("d2d", results, lay.laneSummaryPath(model.TestTypeD2D)); err != nil {
			logging.Warn(subsystem, "rendering d2d lane summary: %s", err)
		}
	}

	for _, r := range deviceResults {
		if r.Err == nil {
			_ = os.Remove(r.Archive.Path)
		}
	}

	return results
}

// backfillStatusFromArchive repopulates the live status map from a worker's
// archived per-test XML detail for any test the progress stream never
// reported a task_end for - covering a worker that crashes mid-batch (e.g.
// during setup) before it emits anything on stdout for its remaining tests,
// which would otherwise leave those tests stuck at EXECUTING forever in the
// live console view even though the worker's own archive accounts for them.
func (o *PyATSOrchestrator) backfillStatusFromArchive(archivePath, workerID string) {
	cases, err := testcasesFromArchive(archivePath)
	if err != nil {
		logging.Warn(subsystem, "backfilling status from archive %s: %s", archivePath, err)
		return
	}
	for _, tc := range cases {
		if entry, ok := o.status.Get(tc.Name); ok && entry.State != "EXECUTING" {
			continue
		}
		result := model.ResultPassed
		if tc.Failure != nil {
			result = model.ResultFailed
		}
		o.status.Set(tc.Name, model.TestStatusEntry{
			TestName:  tc.Name,
			State:     string(result),
			Result:    result,
			DurationS: tc.Time,
			WorkerID:  workerID,
		})
	}
}

// emitLaneOutcome records a LaneCompleted or LaneFailed milestone depending
// on whether the lane produced any failed/errored test.
func (o *PyATSOrchestrator) emitLaneOutcome(lane model.TestType, r model.TestResults, elapsed time.Duration) {
	if r.Failed > 0 || r.Errored > 0 {
		o.events.Emit(events.ReasonLaneFailed, events.EventData{Lane: string(lane), Error: r.Reason})
		return
	}
	o.events.Emit(events.ReasonLaneCompleted, events.EventData{Lane: string(lane), Duration: elapsed})
}

func notRunResults(count int) *model.TestResults {
	r := model.TestResults{Total: count, Reason: "dry run, not executed"}
	return &r
}

func writeTestbed(dir, name string, tb *model.Testbed) (string, error) {
	data, err := yaml.Marshal(tb)
	if err != nil {
		return "", errs.Wrap(errs.ConfigurationError, "marshal consolidated testbed", subsystem, name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", errs.Wrap(errs.ConfigurationError, "write consolidated testbed", subsystem, path, err)
	}
	return path, nil
}
