package main

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/netascode/nac-test-go/internal/broker"
	"github.com/netascode/nac-test-go/internal/model"
)

// taskOutcome is one test file's result, recorded into the worker's archive.
type taskOutcome struct {
	TestName string
	Result   model.TaskResult
	Duration float64
	Output   string
}

// TestExecutor runs one test path and reports its outcome. The real
// device-session protocol and test fixtures this wraps are external
// collaborators (§1 Non-goals); both implementations here exist to exercise
// the orchestration pipeline end to end without them.
type TestExecutor interface {
	Execute(ctx context.Context, testPath string) taskOutcome
}

// commandExecutor runs a named external command per test file, used for
// the API lane where no per-device session is involved.
type commandExecutor struct {
	command string
}

func newCommandExecutor() *commandExecutor {
	command := os.Getenv("NAC_TEST_WORKER_COMMAND")
	if command == "" {
		command = "python3"
	}
	return &commandExecutor{command: command}
}

func (e *commandExecutor) Execute(ctx context.Context, testPath string) taskOutcome {
	start := time.Now()
	cmd := exec.CommandContext(ctx, e.command, testPath)
	out, err := cmd.CombinedOutput()
	duration := time.Since(start).Seconds()

	return taskOutcome{
		TestName: testPath,
		Result:   resultFor(err),
		Duration: duration,
		Output:   string(out),
	}
}

// brokerExecutor drives a test file's command through the connection
// broker against one device, used for the D2D lane.
type brokerExecutor struct {
	client   *broker.Client
	deviceID string
}

func newBrokerExecutor(socketPath, deviceID string) (*brokerExecutor, error) {
	client, err := broker.Dial(socketPath)
	if err != nil {
		return nil, err
	}
	return &brokerExecutor{client: client, deviceID: deviceID}, nil
}

func (e *brokerExecutor) Close() error {
	return e.client.Close()
}

// Execute sends the test file's trimmed contents as the device command; a
// real test fixture would instead parse the file for named CLI steps.
func (e *brokerExecutor) Execute(ctx context.Context, testPath string) taskOutcome {
	start := time.Now()

	data, err := os.ReadFile(testPath)
	if err != nil {
		return taskOutcome{TestName: testPath, Result: model.ResultErrored, Duration: time.Since(start).Seconds(), Output: err.Error()}
	}
	command := strings.TrimSpace(string(data))
	if command == "" {
		command = "show version"
	}

	output, _, err := e.client.Execute(e.deviceID, command)
	duration := time.Since(start).Seconds()

	return taskOutcome{
		TestName: testPath,
		Result:   resultFor(err),
		Duration: duration,
		Output:   output,
	}
}

func resultFor(err error) model.TaskResult {
	if err == nil {
		return model.ResultPassed
	}
	return model.ResultFailed
}
