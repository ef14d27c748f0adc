package events

import (
	"sync"
	"time"

	"github.com/netascode/nac-test-go/pkg/logging"
)

// Record is a single generated event, kept by an in-memory Recorder so
// callers can replay the run's milestones after the fact.
type Record struct {
	Timestamp time.Time
	Reason    EventReason
	Type      EventType
	Message   string
	Data      EventData
}

// Recorder accepts generated events. Implementations must be safe for
// concurrent use, since both lanes generate events at once.
type Recorder interface {
	Record(reason EventReason, eventType EventType, message string, data EventData)
}

// LogRecorder forwards events to pkg/logging under the "events" subsystem.
type LogRecorder struct{}

func (LogRecorder) Record(reason EventReason, eventType EventType, message string, data EventData) {
	if eventType == EventTypeWarning {
		logging.Warn("events", "%s: %s", reason, message)
		return
	}
	logging.Info("events", "%s: %s", reason, message)
}

// MemoryRecorder accumulates events for later inspection; used by tests.
type MemoryRecorder struct {
	mu      sync.Mutex
	Records []Record
}

func (m *MemoryRecorder) Record(reason EventReason, eventType EventType, message string, data EventData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, Record{Timestamp: time.Now(), Reason: reason, Type: eventType, Message: message, Data: data})
}

// MultiRecorder fans an event out to every recorder in the list.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(reason EventReason, eventType EventType, message string, data EventData) {
	for _, r := range m {
		r.Record(reason, eventType, message, data)
	}
}

// Generator renders events through a MessageTemplateEngine and hands the
// result to a Recorder.
type Generator struct {
	recorder  Recorder
	templates *MessageTemplateEngine
}

func NewGenerator(recorder Recorder) *Generator {
	if recorder == nil {
		recorder = LogRecorder{}
	}
	return &Generator{recorder: recorder, templates: NewMessageTemplateEngine()}
}

// Emit renders and records an event for the given reason and data.
func (g *Generator) Emit(reason EventReason, data EventData) {
	message := g.templates.Render(reason, data)
	g.recorder.Record(reason, eventTypeFor(reason), message, data)
}

// SetTemplate overrides the wording used for a reason.
func (g *Generator) SetTemplate(reason EventReason, template string) {
	g.templates.SetTemplate(reason, template)
}
