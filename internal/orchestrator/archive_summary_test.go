package orchestrator

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/netascode/nac-test-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestArchive(t *testing.T, members map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range members {
		mw, err := w.Create(name)
		require.NoError(t, err)
		_, err = mw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestResultsFromArchiveParsesSummaryJSON(t *testing.T) {
	archive := writeTestArchive(t, map[string]string{
		summaryJSONName: `{"passed":3,"failed":1,"skipped":0,"errored":0,"total":4}`,
	})

	results, err := resultsFromArchive(archive)
	require.NoError(t, err)
	assert.Equal(t, 3, results.Passed)
	assert.Equal(t, 1, results.Failed)
	assert.Equal(t, 4, results.Total)
}

func TestResultsFromArchiveMissingSummaryIsError(t *testing.T) {
	archive := writeTestArchive(t, map[string]string{"other.txt": "x"})
	_, err := resultsFromArchive(archive)
	require.Error(t, err)
}

func TestExtractXUnitToDirWritesTaggedFile(t *testing.T) {
	archive := writeTestArchive(t, map[string]string{
		summaryXMLName: `<testsuite name="s" tests="1"></testsuite>`,
	})
	destDir := t.TempDir()

	path, err := extractXUnitToDir(archive, destDir, "leaf-1")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "testsuite")
}

func TestTestcasesFromArchiveParsesFailureDetail(t *testing.T) {
	archive := writeTestArchive(t, map[string]string{
		"ResultsDetails.xml": `<testsuite name="s">` +
			`<testcase name="bgp_check" time="1.5"/>` +
			`<testcase name="ospf_check" time="0.5"><failure>boom</failure></testcase>` +
			`</testsuite>`,
	})

	cases, err := testcasesFromArchive(archive)
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, "bgp_check", cases[0].Name)
	assert.Equal(t, 1.5, cases[0].Time)
	assert.Nil(t, cases[0].Failure)

	assert.Equal(t, "ospf_check", cases[1].Name)
	assert.Equal(t, 0.5, cases[1].Time)
	require.NotNil(t, cases[1].Failure)
	assert.Equal(t, "boom", cases[1].Failure.Message)
}

func TestBackfillStatusFromArchiveFillsMissingAndExecutingOnly(t *testing.T) {
	archive := writeTestArchive(t, map[string]string{
		"ResultsDetails.xml": `<testsuite name="s">` +
			`<testcase name="bgp_check" time="1.5"/>` +
			`<testcase name="ospf_check" time="0.5"><failure>boom</failure></testcase>` +
			`<testcase name="already_done" time="0.2"/>` +
			`</testsuite>`,
	})

	o := NewPyATSOrchestrator(Config{})
	o.status.Set("already_done", model.TestStatusEntry{
		TestName: "already_done",
		State:    string(model.ResultFailed),
		Result:   model.ResultFailed,
	})
	o.status.Set("bgp_check", model.TestStatusEntry{TestName: "bgp_check", State: "EXECUTING"})

	o.backfillStatusFromArchive(archive, "worker-1")

	bgp, ok := o.status.Get("bgp_check")
	require.True(t, ok)
	assert.Equal(t, model.ResultPassed, bgp.Result)
	assert.Equal(t, "worker-1", bgp.WorkerID)
	assert.Equal(t, 1.5, bgp.DurationS)

	ospf, ok := o.status.Get("ospf_check")
	require.True(t, ok)
	assert.Equal(t, model.ResultFailed, ospf.Result)

	already, ok := o.status.Get("already_done")
	require.True(t, ok)
	assert.Equal(t, model.ResultFailed, already.Result)
	assert.Empty(t, already.WorkerID)
}
