package device

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/netascode/nac-test-go/internal/execution"
	"github.com/netascode/nac-test-go/internal/jobgen"
	"github.com/netascode/nac-test-go/internal/model"
	"github.com/netascode/nac-test-go/internal/testbed"
	"github.com/netascode/nac-test-go/pkg/logging"
	"golang.org/x/sync/semaphore"
	"gopkg.in/yaml.v3"
)

const subsystem = "device"

// Config describes everything the executor needs to run the D2D lane once.
type Config struct {
	WorkerPath         string
	TempDir            string
	ArchiveDir         string
	MergedDataFile     string
	BrokerSocket       string
	BaseTestbed        *model.Testbed
	WorkerCapacity     int
	MaxParallelDevices int // 0 means unset, use WorkerCapacity alone
	Debug              bool
	Out                io.Writer // handed to execution.NewRunner, whose Run does not write to it; defaults to os.Stdout
}

// Executor runs D2D tests, one worker subprocess per device, batched and
// bounded by a semaphore.
type Executor struct {
	cfg      Config
	builder  *testbed.Builder
	jobs     *jobgen.Generator
	reporter *execution.ProgressReporter
}

// New returns an Executor that reports worker progress through reporter.
func New(cfg Config, reporter *execution.ProgressReporter) *Executor {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	return &Executor{
		cfg:      cfg,
		builder:  testbed.New(),
		jobs:     jobgen.New(cfg.TempDir),
		reporter: reporter,
	}
}

// Result is one device's outcome: either a produced archive, or an error
// that leaves the device's tests unaccounted for (counted as errored by
// the caller).
type Result struct {
	Device  model.DeviceRecord
	Archive model.Archive
	Err     error
}

// Run partitions devices into batches sized by worker capacity (capped by
// MaxParallelDevices when set), running batches serially and devices within
// a batch concurrently. Cancellation of ctx aborts remaining batches; the
// current batch's in-flight workers are still awaited.
func (e *Executor) Run(ctx context.Context, testPaths []string, devices []model.DeviceRecord) []Result {
	sortedPaths := append([]string(nil), testPaths...)
	sort.Strings(sortedPaths)

	batchSize := e.cfg.WorkerCapacity
	if e.cfg.MaxParallelDevices > 0 && e.cfg.MaxParallelDevices < batchSize {
		batchSize = e.cfg.MaxParallelDevices
	}
	if batchSize < 1 {
		batchSize = 1
	}

	var results []Result
	for start := 0; start < len(devices); start += batchSize {
		if ctx.Err() != nil {
			logging.Warn(subsystem, "cancellation observed, skipping remaining %d device(s)", len(devices)-start)
			break
		}

		end := start + batchSize
		if end > len(devices) {
			end = len(devices)
		}
		batch := devices[start:end]

		semSize := batchSize
		if e.cfg.WorkerCapacity < semSize {
			semSize = e.cfg.WorkerCapacity
		}
		if semSize < 1 {
			semSize = 1
		}

		results = append(results, e.runBatch(ctx, sortedPaths, batch, semSize)...)
	}
	return results
}

func (e *Executor) runBatch(ctx context.Context, testPaths []string, batch []model.DeviceRecord, semSize int) []Result {
	sem := semaphore.NewWeighted(int64(semSize))
	results := make([]Result, len(batch))

	var wg sync.WaitGroup
	for i, dev := range batch {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = Result{Device: dev, Err: err}
			continue
		}
		wg.Add(1)
		go func(idx int, device model.DeviceRecord) {
			defer wg.Done()
			defer sem.Release(1)
			results[idx] = e.runOneDevice(ctx, testPaths, device)
		}(i, dev)
	}
	wg.Wait()
	return results
}

func (e *Executor) runOneDevice(ctx context.Context, testPaths []string, device model.DeviceRecord) Result {
	tb := e.builder.SingleDevice(e.cfg.BaseTestbed, device)

	testbedPath, err := e.writeTestbed(device.Hostname, tb)
	if err != nil {
		logging.Error(subsystem, err, "writing testbed for device %s", device.Hostname)
		return Result{Device: device, Err: err}
	}

	archiveName := fmt.Sprintf("%s_%s", device.Hostname, model.ArchiveName(model.TestTypeD2D, time.Now()))
	job, err := e.jobs.Build(testPaths, 1, model.TestTypeD2D, e.cfg.MergedDataFile, testbedPath, e.cfg.ArchiveDir, map[string]string{
		"NAC_TEST_DEVICE_ID": device.DeviceID,
	})
	if err != nil {
		logging.Error(subsystem, err, "building job for device %s", device.Hostname)
		return Result{Device: device, Err: err}
	}
	job.ArchiveName = archiveName

	jobFile, err := e.jobs.Write(job)
	if err != nil {
		logging.Error(subsystem, err, "writing job file for device %s", device.Hostname)
		return Result{Device: device, Err: err}
	}

	runner := execution.NewRunner(e.cfg.Out)
	processor := execution.NewOutputProcessor(e.reporter, e.cfg.Debug)

	archivePath, err := runner.Run(ctx, execution.RunnerConfig{
		WorkerPath:     e.cfg.WorkerPath,
		JobFile:        jobFile,
		WorkDir:        e.cfg.TempDir,
		Lane:           model.TestTypeD2D,
		MergedDataFile: e.cfg.MergedDataFile,
		BrokerSocket:   e.cfg.BrokerSocket,
		ArchiveDir:     e.cfg.ArchiveDir,
		ArchiveName:    archiveName,
		Debug:          e.cfg.Debug,
	}, processor)
	if err != nil {
		logging.Error(subsystem, err, "running worker for device %s", device.Hostname)
		return Result{Device: device, Err: err}
	}

	return Result{
		Device: device,
		Archive: model.Archive{
			Path:      archivePath,
			Lane:      model.TestTypeD2D,
			Hostname:  device.Hostname,
			CreatedAt: time.Now(),
		},
	}
}

func (e *Executor) writeTestbed(hostname string, tb *model.Testbed) (string, error) {
	data, err := yaml.Marshal(tb)
	if err != nil {
		return "", err
	}
	path := filepath.Join(e.cfg.TempDir, "testbed_"+hostname+".yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
