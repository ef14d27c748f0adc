package device

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/netascode/nac-test-go/internal/execution"
	"github.com/netascode/nac-test-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWorkerScript reads the job descriptor's output_dir/archive_name
// fields out of the JSON file it's given and touches that path, standing
// in for a worker that produces an archive.
func fakeWorkerScript(t *testing.T) string {
	t.Helper()
	script := filepath.Join(t.TempDir(), "worker.sh")
	body := "#!/bin/sh\n" +
		`JOB="$1"` + "\n" +
		`ARCHIVE=$(sed -n 's/.*"archive_name": *"\([^"]*\)".*/\1/p' "$JOB")` + "\n" +
		`OUTDIR=$(sed -n 's/.*"output_dir": *"\([^"]*\)".*/\1/p' "$JOB")` + "\n" +
		`touch "$OUTDIR/$ARCHIVE"` + "\n" +
		"exit 0\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	return script
}

func testDevices() []model.DeviceRecord {
	return []model.DeviceRecord{
		{DeviceID: "r1", Hostname: "r1", Host: "10.0.0.1", OS: "iosxe", Username: "admin", Password: "secret"},
		{DeviceID: "r2", Hostname: "r2", Host: "10.0.0.2", OS: "iosxe", Username: "admin", Password: "secret"},
		{DeviceID: "r3", Hostname: "r3", Host: "10.0.0.3", OS: "iosxe", Username: "admin", Password: "secret"},
	}
}

func newTestExecutor(t *testing.T, workerCapacity, maxParallel int) *Executor {
	t.Helper()
	cfg := Config{
		WorkerPath:         fakeWorkerScript(t),
		TempDir:            t.TempDir(),
		ArchiveDir:         t.TempDir(),
		MergedDataFile:     "merged.yaml",
		BaseTestbed:        model.NewTestbed(),
		WorkerCapacity:     workerCapacity,
		MaxParallelDevices: maxParallel,
		Out:                &bytes.Buffer{},
	}
	reporter := execution.NewProgressReporter(&bytes.Buffer{}, execution.NewStatusMap())
	return New(cfg, reporter)
}

func TestExecutorRunProducesOneArchivePerDevice(t *testing.T) {
	ex := newTestExecutor(t, 2, 0)
	results := ex.Run(context.Background(), []string{"tests/d2d/test_a.py"}, testDevices())

	require.Len(t, results, 3)
	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.FileExists(t, r.Archive.Path)
		assert.Equal(t, r.Device.Hostname, r.Archive.Hostname)
	}
}

func TestExecutorRunRespectsMaxParallelDevicesCap(t *testing.T) {
	ex := newTestExecutor(t, 10, 1)
	results := ex.Run(context.Background(), []string{"tests/d2d/test_a.py"}, testDevices())

	require.Len(t, results, 3)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
}

func TestExecutorRunSkipsRemainingBatchesOnCancellation(t *testing.T) {
	ex := newTestExecutor(t, 1, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := ex.Run(ctx, []string{"tests/d2d/test_a.py"}, testDevices())
	assert.Empty(t, results)
}

func TestExecutorRunNoDevicesProducesNoResults(t *testing.T) {
	ex := newTestExecutor(t, 2, 0)
	results := ex.Run(context.Background(), []string{"tests/d2d/test_a.py"}, nil)
	assert.Empty(t, results)
}
