package apilane

import (
	"context"
	"io"
	"os"
	"sort"
	"time"

	"github.com/netascode/nac-test-go/internal/execution"
	"github.com/netascode/nac-test-go/internal/jobgen"
	"github.com/netascode/nac-test-go/internal/model"
)

// Config describes the single worker invocation that runs every API test.
type Config struct {
	WorkerPath     string
	TempDir        string
	ArchiveDir     string
	MergedDataFile string
	TestbedFile    string
	WorkerCapacity int // conveyed to the worker so it can parallelize internally
	Debug          bool
	Out            io.Writer
}

// Executor runs the entire API lane as one worker subprocess.
type Executor struct {
	cfg      Config
	jobs     *jobgen.Generator
	reporter *execution.ProgressReporter
}

// New returns an Executor reporting progress through reporter.
func New(cfg Config, reporter *execution.ProgressReporter) *Executor {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	return &Executor{cfg: cfg, jobs: jobgen.New(cfg.TempDir), reporter: reporter}
}

// Run launches the single API-lane worker and returns its archive path.
func (e *Executor) Run(ctx context.Context, testPaths []string) (model.Archive, error) {
	sortedPaths := append([]string(nil), testPaths...)
	sort.Strings(sortedPaths)

	createdAt := time.Now()
	archiveName := model.ArchiveName(model.TestTypeAPI, createdAt)

	job, err := e.jobs.Build(sortedPaths, e.cfg.WorkerCapacity, model.TestTypeAPI, e.cfg.MergedDataFile, e.cfg.TestbedFile, e.cfg.ArchiveDir, nil)
	if err != nil {
		return model.Archive{}, err
	}
	job.ArchiveName = archiveName

	jobFile, err := e.jobs.Write(job)
	if err != nil {
		return model.Archive{}, err
	}

	runner := execution.NewRunner(e.cfg.Out)
	processor := execution.NewOutputProcessor(e.reporter, e.cfg.Debug)

	archivePath, err := runner.Run(ctx, execution.RunnerConfig{
		WorkerPath:     e.cfg.WorkerPath,
		JobFile:        jobFile,
		WorkDir:        e.cfg.TempDir,
		Lane:           model.TestTypeAPI,
		MergedDataFile: e.cfg.MergedDataFile,
		ArchiveDir:     e.cfg.ArchiveDir,
		ArchiveName:    archiveName,
		Debug:          e.cfg.Debug,
	}, processor)
	if err != nil {
		return model.Archive{}, err
	}

	return model.Archive{
		Path:      archivePath,
		Lane:      model.TestTypeAPI,
		CreatedAt: createdAt,
	}, nil
}
