package execution

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/netascode/nac-test-go/internal/model"
	pkgstrings "github.com/netascode/nac-test-go/pkg/strings"
)

// testNameColumnWidth is how wide the test-name column in a progress line
// gets before TruncateTestPath shortens it.
const testNameColumnWidth = 40

// ProgressReporter prints one formatted line per task_start/task_end and
// hands out monotonically increasing test ids.
type ProgressReporter struct {
	counter   int64
	startedAt time.Time
	out       io.Writer
	status    *StatusMap
}

// NewProgressReporter returns a reporter writing to out, backed by status.
func NewProgressReporter(out io.Writer, status *StatusMap) *ProgressReporter {
	return &ProgressReporter{startedAt: time.Now(), out: out, status: status}
}

// NextTestID returns the next monotonically increasing id, safe for
// concurrent callers.
func (p *ProgressReporter) NextTestID() int {
	return int(atomic.AddInt64(&p.counter, 1))
}

// ReportStart prints a line for a task_start event and records it as
// EXECUTING in the status map.
func (p *ProgressReporter) ReportStart(testName string, taskID int, workerID string) {
	p.status.Set(testName, model.TestStatusEntry{TestName: testName, TaskID: taskID, State: "EXECUTING", WorkerID: workerID})
	fmt.Fprintf(p.out, "%-6d %s %-40s %s\n", taskID, text.Colors{text.FgYellow}.Sprint("RUNNING "),
		pkgstrings.TruncateTestPath(testName, testNameColumnWidth), workerID)
}

// ReportEnd prints a line for a task_end event and updates the status map
// with its result.
func (p *ProgressReporter) ReportEnd(testName string, taskID int, result model.TaskResult, durationS float64, workerID string) {
	p.status.Set(testName, model.TestStatusEntry{
		TestName: testName, TaskID: taskID, State: string(result), Result: result, DurationS: durationS, WorkerID: workerID,
	})
	fmt.Fprintf(p.out, "%-6d %s %-40s %6.2fs %s\n", taskID, colorizeResult(result),
		pkgstrings.TruncateTestPath(testName, testNameColumnWidth), durationS, workerID)
}

func colorizeResult(result model.TaskResult) string {
	switch result {
	case model.ResultPassed:
		return text.Colors{text.FgGreen}.Sprint("PASSED  ")
	case model.ResultFailed:
		return text.Colors{text.FgRed}.Sprint("FAILED  ")
	case model.ResultSkipped:
		return text.Colors{text.FgCyan}.Sprint("SKIPPED ")
	default:
		return text.Colors{text.FgHiRed}.Sprint("ERRORED ")
	}
}

// Elapsed returns the wall-clock time since the reporter was created.
func (p *ProgressReporter) Elapsed() time.Duration {
	return time.Since(p.startedAt)
}
