package orchestrator

import (
	"os"
	"path/filepath"

	"github.com/netascode/nac-test-go/internal/errs"
	"github.com/netascode/nac-test-go/internal/model"
)

// layout computes the fixed output-directory tree §6 specifies:
//
//	<out>/combined_summary.html
//	<out>/xunit.xml
//	<out>/pyats_results/api/html_reports/summary_report.html
//	<out>/pyats_results/api/xunit.xml
//	<out>/pyats_results/d2d/html_reports/summary_report.html
//	<out>/pyats_results/d2d/xunit.xml
//	<out>/pyats_results/d2d/<hostname>/xunit.xml
//
// Archive zips only persist under outDir when KeepArchives is set; callers
// otherwise write them to tempDir and delete them after ingestion.
type layout struct {
	outDir  string
	tempDir string
}

func newLayout(outDir, tempDir string) *layout {
	return &layout{outDir: outDir, tempDir: tempDir}
}

func (l *layout) ensure() error {
	dirs := []string{
		l.outDir,
		l.tempDir,
		filepath.Join(l.outDir, "pyats_results", "api", "html_reports"),
		filepath.Join(l.outDir, "pyats_results", "d2d", "html_reports"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return errs.Wrap(errs.ConfigurationError, "create output directory", "orchestrator.layout", d, err)
		}
	}
	return nil
}

func (l *layout) combinedSummaryPath() string {
	return filepath.Join(l.outDir, "combined_summary.html")
}

func (l *layout) aggregatedXUnitPath() string {
	return filepath.Join(l.outDir, "xunit.xml")
}

func (l *layout) laneSummaryPath(lane model.TestType) string {
	return filepath.Join(l.outDir, "pyats_results", string(lane), "html_reports", "summary_report.html")
}

func (l *layout) laneXUnitPath(lane model.TestType) string {
	return filepath.Join(l.outDir, "pyats_results", string(lane), "xunit.xml")
}

func (l *layout) deviceXUnitPath(hostname string) string {
	return filepath.Join(l.outDir, "pyats_results", "d2d", hostname, "xunit.xml")
}

func (l *layout) laneArchivePath(lane model.TestType, createdAt string) string {
	return filepath.Join(l.tempDir, "nac_test_job_"+string(lane)+"_"+createdAt+".zip")
}

// retainArchive copies an archive into outDir when debug retention is
// requested, matching §6's "retained only in debug" note.
func (l *layout) retainArchive(path string, lane model.TestType) error {
	if path == "" {
		return nil
	}
	dest := filepath.Join(l.outDir, filepath.Base(path))
	return copyFile(path, dest)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
