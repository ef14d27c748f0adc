package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/netascode/nac-test-go/internal/model"
)

const progressSentinel = "NAC_PROGRESS:"

// emitter prints NAC_PROGRESS lines to stdout, the contract
// execution.OutputProcessor parses on the orchestrator side.
type emitter struct {
	workerID string
}

func newEmitter(workerID string) *emitter {
	return &emitter{workerID: workerID}
}

func (e *emitter) taskStart(testName string) {
	e.emit(model.WorkerEvent{
		Version:  model.WorkerEventVersion,
		Kind:     model.EventTaskStart,
		TestName: testName,
		PID:      os.Getpid(),
		WorkerID: e.workerID,
	})
}

func (e *emitter) taskEnd(testName string, result model.TaskResult, durationS float64) {
	e.emit(model.WorkerEvent{
		Version:   model.WorkerEventVersion,
		Kind:      model.EventTaskEnd,
		TestName:  testName,
		Result:    result,
		DurationS: durationS,
		WorkerID:  e.workerID,
	})
}

func (e *emitter) emit(event model.WorkerEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Println(progressSentinel + string(data))
}
