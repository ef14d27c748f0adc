package broker

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/netascode/nac-test-go/internal/errs"
)

const subprocessTransportSentinel = "NAC_TEST_TRANSPORT_EOF"

// subprocessTransport backs a device session with a long-lived subprocess,
// the mechanism DeviceRecord.Command documents: the subprocess's stdin
// takes one command per line, and its stdout carries that command's
// captured output terminated by a sentinel line. Stands in for a real
// transport in testbeds built around DeviceRecord.Command rather than a
// live SSH session.
type subprocessTransport struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	reader *bufio.Reader
}

func newSubprocessTransport(command string) (*subprocessTransport, error) {
	cmd := exec.Command("sh", "-c", command)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errs.Wrap(errs.BrokerTransportError, "open transport stdin", "broker.transport", command, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errs.Wrap(errs.BrokerTransportError, "open transport stdout", "broker.transport", command, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, errs.Wrap(errs.BrokerTransportError, "start transport subprocess", "broker.transport", command, err)
	}
	return &subprocessTransport{cmd: cmd, stdin: stdin, reader: bufio.NewReader(stdout)}, nil
}

func (t *subprocessTransport) Execute(ctx context.Context, command string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := io.WriteString(t.stdin, command+"\n"); err != nil {
		return "", errs.Wrap(errs.BrokerTransportError, "write transport command", "broker.transport", command, err)
	}

	var out strings.Builder
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return "", errs.Wrap(errs.BrokerTransportError, "read transport output", "broker.transport", command, err)
		}
		if strings.TrimRight(line, "\r\n") == subprocessTransportSentinel {
			break
		}
		out.WriteString(line)
	}
	return out.String(), nil
}

func (t *subprocessTransport) Healthy(ctx context.Context) bool {
	return t.cmd.ProcessState == nil
}

func (t *subprocessTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.stdin.Close()
	if t.cmd.Process != nil {
		_ = t.cmd.Process.Kill()
		_, _ = t.cmd.Wait()
	}
	return nil
}

// NewSubprocessTransportFactory returns a TransportFactory honoring
// DeviceRecord.Command-backed devices - the only transport mechanism this
// package implements. A real SSH transport is out of scope; devices without
// a configured command fail to open with BrokerTransportError.
func NewSubprocessTransportFactory() TransportFactory {
	return func(ctx context.Context, hostname string, entry map[string]interface{}) (Transport, error) {
		command, ok := extractCommand(entry)
		if !ok {
			return nil, errs.New(errs.BrokerTransportError, "device "+hostname+" has no subprocess command configured", nil)
		}
		return newSubprocessTransport(command)
	}
}

func extractCommand(entry map[string]interface{}) (string, bool) {
	connections, _ := entry["connections"].(map[string]interface{})
	cli, _ := connections["cli"].(map[string]interface{})
	command, ok := cli["command"].(string)
	return command, ok && command != ""
}
