package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, test := range tests {
		if result := test.level.String(); result != test.expected {
			t.Errorf("LogLevel(%d).String() = %s, expected %s", test.level, result, test.expected)
		}
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{LogLevel(999), slog.LevelInfo},
	}

	for _, test := range tests {
		if result := test.level.SlogLevel(); result != test.expected {
			t.Errorf("LogLevel(%d).SlogLevel() = %v, expected %v", test.level, result, test.expected)
		}
	}
}

func TestInitForCLI(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)

	if collectorMode {
		t.Error("expected collectorMode to be false after InitForCLI")
	}
	if defaultLogger == nil {
		t.Error("expected defaultLogger to be set after InitForCLI")
	}

	Info("test-subsystem", "test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Error("expected log message to appear in CLI output")
	}
	if !strings.Contains(output, "test-subsystem") {
		t.Error("expected subsystem to appear in CLI output")
	}
}

func TestCLILevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)

	Debug("test", "debug message")
	Info("test", "info message")

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Error("debug message should be filtered out at INFO level")
	}
	if !strings.Contains(output, "info message") {
		t.Error("info message should appear at INFO level")
	}
}

func TestInitForCollector(t *testing.T) {
	ch := InitForCollector(LevelDebug, 4)
	Info("broker", "connected to %s", "device-1")

	select {
	case entry := <-ch:
		if entry.Subsystem != "broker" {
			t.Errorf("expected subsystem broker, got %s", entry.Subsystem)
		}
		if entry.Message != "connected to device-1" {
			t.Errorf("unexpected message %q", entry.Message)
		}
	default:
		t.Fatal("expected a collector entry to be available")
	}
}

func TestLogEntry(t *testing.T) {
	now := time.Now()
	testErr := errors.New("test error")

	entry := LogEntry{
		Timestamp: now,
		Level:     LevelError,
		Subsystem: "test-subsystem",
		Message:   "test message",
		Err:       testErr,
	}

	if entry.Timestamp != now || entry.Level != LevelError || entry.Subsystem != "test-subsystem" ||
		entry.Message != "test message" || entry.Err != testErr {
		t.Error("LogEntry fields not set correctly")
	}
}

func TestAudit(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)

	Audit(BrokerAuditEvent{Action: "connect", Outcome: "success", Device: "leaf-1"})

	output := buf.String()
	if !strings.Contains(output, "[AUDIT]") || !strings.Contains(output, "device=leaf-1") {
		t.Errorf("expected audit line with device, got %q", output)
	}
}
