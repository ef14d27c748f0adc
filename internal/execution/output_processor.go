package execution

import (
	"bufio"
	"encoding/json"
	"io"
	"regexp"
	"strings"

	"github.com/netascode/nac-test-go/internal/model"
	"github.com/netascode/nac-test-go/pkg/logging"
)

const (
	progressSentinel = "NAC_PROGRESS:"
	outputSubsystem  = "execution.output"
)

var suppressPattern = regexp.MustCompile(`(?i)^(DEBUG|TRACE)\b`)

// OutputProcessor parses a worker's merged stdout/stderr line stream,
// forwarding WorkerEvents to a ProgressReporter and deciding which plain
// log lines are worth showing.
type OutputProcessor struct {
	reporter *ProgressReporter
	debug    bool
	taskIDs  map[string]int
}

// NewOutputProcessor returns a processor backed by reporter. debug enables
// pass-through of every raw line, matching NAC_TEST_DEBUG.
func NewOutputProcessor(reporter *ProgressReporter, debug bool) *OutputProcessor {
	return &OutputProcessor{reporter: reporter, debug: debug, taskIDs: make(map[string]int)}
}

// Consume reads lines from r until EOF, classifying each one. It never
// returns an error for malformed JSON - the raw line is shown in debug mode
// instead.
func (p *OutputProcessor) Consume(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.handleLine(scanner.Text())
	}
}

func (p *OutputProcessor) handleLine(line string) {
	if rest, ok := strings.CutPrefix(line, progressSentinel); ok {
		p.handleEvent(strings.TrimSpace(rest), line)
		return
	}

	if p.debug {
		logging.Debug(outputSubsystem, "%s", line)
		return
	}
	if !suppressPattern.MatchString(line) && line != "" {
		logging.Info(outputSubsystem, "%s", line)
	}
}

func (p *OutputProcessor) handleEvent(payload, rawLine string) {
	var event model.WorkerEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		if p.debug {
			logging.Debug(outputSubsystem, "unparsable progress line: %s", rawLine)
		}
		return
	}

	if event.Version != model.WorkerEventVersion {
		logging.Warn(outputSubsystem, "worker event schema version %q does not match %q, forwarding anyway", event.Version, model.WorkerEventVersion)
	}

	switch event.Kind {
	case model.EventTaskStart:
		taskID := p.reporter.NextTestID()
		p.taskIDs[event.TestName] = taskID
		p.reporter.ReportStart(event.TestName, taskID, event.WorkerID)
	case model.EventTaskEnd:
		taskID, ok := p.taskIDs[event.TestName]
		if !ok {
			taskID = p.reporter.NextTestID()
		}
		p.reporter.ReportEnd(event.TestName, taskID, event.Result, event.DurationS, event.WorkerID)
	default:
		// section_start/section_end carry no status-map update.
	}
}
