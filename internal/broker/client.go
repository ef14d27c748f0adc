package broker

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/netascode/nac-test-go/internal/errs"
)

// Client is the thin adapter a worker process uses to talk to the broker
// over its Unix-domain socket. One Client serializes all of a worker's
// requests through a single connection and lock.
type Client struct {
	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

// Dial connects to the broker listening at socketPath.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, errs.Wrap(errs.BrokerTransportError, "dial broker socket", "broker.client", socketPath, err)
	}
	return &Client{conn: conn, reader: bufio.NewReader(conn)}, nil
}

// Execute sends an exec request for deviceID/command and returns the
// output and whether it was served from cache.
func (c *Client) Execute(deviceID, command string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := Request{Op: OpExec, DeviceID: deviceID, Command: command, RequestID: uuid.NewString()}
	resp, err := c.roundTrip(req)
	if err != nil {
		return "", false, err
	}
	if !resp.OK {
		return "", false, errs.New(errs.BrokerTransportError, fmt.Sprintf("exec on %s: %s", deviceID, resp.Message), nil)
	}
	return resp.Output, resp.Cached, nil
}

// Stats requests the broker's current hit/miss counters.
func (c *Client) Stats() (Statistics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.roundTrip(Request{Op: OpStats, RequestID: uuid.NewString()})
	if err != nil {
		return Statistics{}, err
	}
	if resp.Stats == nil {
		return Statistics{}, nil
	}
	return *resp.Stats, nil
}

// Close disconnects from the broker.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

func (c *Client) roundTrip(req Request) (Response, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return Response{}, err
	}
	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		return Response{}, errs.Wrap(errs.BrokerTransportError, "write broker request", "broker.client", "", err)
	}

	line, err := c.reader.ReadString('\n')
	if err != nil {
		return Response{}, errs.Wrap(errs.BrokerTransportError, "read broker response", "broker.client", "", err)
	}

	var resp Response
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &resp); err != nil {
		return Response{}, errs.Wrap(errs.BrokerTransportError, "decode broker response", "broker.client", "", err)
	}
	return resp, nil
}
