// Command nactest-worker is the subprocess execution.Runner launches: it
// reads a JobDescriptor, runs the test paths it names through a minimal
// TestExecutor, and packs the results into the archive the orchestrator
// reads back.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/netascode/nac-test-go/internal/model"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: nactest-worker <job-descriptor.json>")
		return 2
	}

	job, err := loadJob(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading job descriptor: %s\n", err)
		return 2
	}

	workerID := "worker-" + uuid.NewString()[:8]
	events := newEmitter(workerID)

	executor, closeFn, err := buildExecutor(job)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building executor: %s\n", err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	ctx := context.Background()
	var outcomes []taskOutcome
	anyFailed := false

	for _, path := range job.TestPaths {
		events.taskStart(path)
		outcome := executor.Execute(ctx, path)
		events.taskEnd(path, outcome.Result, outcome.Duration)
		outcomes = append(outcomes, outcome)
		if outcome.Result != model.ResultPassed && outcome.Result != model.ResultSkipped {
			anyFailed = true
		}
	}

	archivePath := filepath.Join(job.OutputDir, job.ArchiveName)
	if err := writeArchive(archivePath, job.Lane, outcomes); err != nil {
		fmt.Fprintf(os.Stderr, "writing archive: %s\n", err)
		return 2
	}

	if anyFailed {
		return 1
	}
	return 0
}

func loadJob(path string) (model.JobDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.JobDescriptor{}, err
	}
	var job model.JobDescriptor
	if err := json.Unmarshal(data, &job); err != nil {
		return model.JobDescriptor{}, err
	}
	return job, nil
}

func buildExecutor(job model.JobDescriptor) (TestExecutor, func() error, error) {
	if job.Lane == model.TestTypeD2D {
		socket := os.Getenv("NAC_TEST_BROKER_SOCKET")
		deviceID := os.Getenv("NAC_TEST_DEVICE_ID")
		if socket != "" && deviceID != "" {
			exec, err := newBrokerExecutor(socket, deviceID)
			if err != nil {
				return nil, nil, err
			}
			return exec, exec.Close, nil
		}
	}
	return newCommandExecutor(), nil, nil
}
