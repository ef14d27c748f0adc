package apilane

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/netascode/nac-test-go/internal/execution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func TestExecutorRunProducesArchive(t *testing.T) {
	archiveDir := t.TempDir()
	cfg := Config{
		WorkerPath:     fakeWorkerScript(t),
		TempDir:        t.TempDir(),
		ArchiveDir:     archiveDir,
		MergedDataFile: "merged.yaml",
		TestbedFile:    "testbed.yaml",
		WorkerCapacity: 55,
		Out:            &bytes.Buffer{},
	}
	reporter := execution.NewProgressReporter(&bytes.Buffer{}, execution.NewStatusMap())
	ex := New(cfg, reporter)

	archive, err := ex.Run(context.Background(), []string{"tests/api/test_b.py", "tests/api/test_a.py"})
	require.NoError(t, err)
	assert.FileExists(t, archive.Path)
	assert.Equal(t, "api", string(archive.Lane))
}

func TestExecutorRunMissingArchiveIsError(t *testing.T) {
	script := filepath.Join(t.TempDir(), "worker.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	cfg := Config{
		WorkerPath:     script,
		TempDir:        t.TempDir(),
		ArchiveDir:     t.TempDir(),
		MergedDataFile: "merged.yaml",
		Out:            &bytes.Buffer{},
	}
	reporter := execution.NewProgressReporter(&bytes.Buffer{}, execution.NewStatusMap())
	ex := New(cfg, reporter)

	_, err := ex.Run(context.Background(), []string{"tests/api/test_a.py"})
	assert.Error(t, err)
}
