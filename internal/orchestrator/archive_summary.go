package orchestrator

import (
	"archive/zip"
	"encoding/json"
	"encoding/xml"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/netascode/nac-test-go/internal/errs"
	"github.com/netascode/nac-test-go/internal/model"
)

const (
	summaryJSONName = "results.json"
	summaryXMLName  = "ResultsSummary.xml"

	archiveSummarySubsystem = "orchestrator.archive"
)

// archiveSummary mirrors the worker's results.json, the authoritative
// source for a lane's TestResults - more reliable than the live status map
// when a worker exits before emitting task_end for every test.
type archiveSummary struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Errored int `json:"errored"`
	Total   int `json:"total"`
}

// resultsFromArchive reads results.json out of the worker archive at path
// and returns the TestResults it records.
func resultsFromArchive(archivePath string) (model.TestResults, error) {
	data, err := readArchiveMember(archivePath, summaryJSONName)
	if err != nil {
		return model.TestResults{}, err
	}
	var s archiveSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return model.TestResults{}, errs.Wrap(errs.AggregationError, "parse archive summary", archiveSummarySubsystem, archivePath, err)
	}
	return model.TestResults{Passed: s.Passed, Failed: s.Failed, Skipped: s.Skipped, Errored: s.Errored, Total: s.Total}, nil
}

// extractXUnitToDir pulls ResultsSummary.xml out of the worker archive at
// archivePath and writes it to destDir, returning its path. Used to hand
// XUnitMerger an on-disk Input before a device archive is folded into the
// lane's combined archive.
func extractXUnitToDir(archivePath, destDir, tag string) (string, error) {
	data, err := readArchiveMember(archivePath, summaryXMLName)
	if err != nil {
		return "", err
	}
	out := filepath.Join(destDir, tag+"_"+summaryXMLName)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", errs.Wrap(errs.AggregationError, "write extracted xunit", archiveSummarySubsystem, out, err)
	}
	return out, nil
}

// archiveTestcase is the subset of the worker's ResultsDetails.xml testcase
// element backfillStatusFromArchive needs: a name and whether it failed. The
// XML schema doesn't distinguish skipped/errored at the testcase level, only
// at the suite level, so a backfilled entry is only ever passed or failed -
// an approximation acceptable for the fallback path it serves.
type archiveTestcase struct {
	Name    string  `xml:"name,attr"`
	Time    float64 `xml:"time,attr"`
	Failure *struct {
		Message string `xml:",chardata"`
	} `xml:"failure,omitempty"`
}

type archiveTestsuite struct {
	Testcases []archiveTestcase `xml:"testcase"`
}

// testcasesFromArchive reads ResultsDetails.xml out of the worker archive at
// archivePath and returns its per-test detail.
func testcasesFromArchive(archivePath string) ([]archiveTestcase, error) {
	data, err := readArchiveMember(archivePath, "ResultsDetails.xml")
	if err != nil {
		return nil, err
	}
	var suite archiveTestsuite
	if err := xml.Unmarshal(data, &suite); err != nil {
		return nil, errs.Wrap(errs.AggregationError, "parse archive testcase detail", archiveSummarySubsystem, archivePath, err)
	}
	return suite.Testcases, nil
}

func readArchiveMember(archivePath, name string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, errs.Wrap(errs.AggregationError, "open archive", archiveSummarySubsystem, archivePath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if path.Base(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errs.Wrap(errs.AggregationError, "open archive member", archiveSummarySubsystem, name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, errs.New(errs.AggregationError, "archive missing member "+name, nil)
}
