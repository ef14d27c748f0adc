package jobgen

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/netascode/nac-test-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildResolvesAbsolutePaths(t *testing.T) {
	g := New(t.TempDir())
	job, err := g.Build([]string{"verify_bgp.py"}, 4, model.TestTypeAPI, "/data/merged.yaml", "/data/testbed.yaml", "/out", nil)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(job.TestPaths[0]))
	assert.Equal(t, model.TestTypeAPI, job.Lane)
	assert.Equal(t, 4, job.WorkerCount)
	assert.Contains(t, job.ArchiveName, "nac_test_job_api_")
}

func TestWritePersistsJobAsJSON(t *testing.T) {
	dir := t.TempDir()
	g := New(dir)
	job, err := g.Build([]string{"verify_bgp.py"}, 2, model.TestTypeD2D, "/data/merged.yaml", "/data/testbed.yaml", "/out", map[string]string{"NAC_TEST_LANE": "d2d"})
	require.NoError(t, err)

	path, err := g.Write(job)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded model.JobDescriptor
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, job.Lane, decoded.Lane)
	assert.Equal(t, job.EnvironmentExtras, decoded.EnvironmentExtras)
}
