package broker

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/coreos/go-systemd/v22/activation"
	"github.com/netascode/nac-test-go/internal/errs"
	"github.com/netascode/nac-test-go/internal/model"
	"github.com/netascode/nac-test-go/internal/services"
	"github.com/netascode/nac-test-go/pkg/logging"
	"golang.org/x/sync/semaphore"
)

const subsystem = "broker"

// Config configures a Broker instance.
type Config struct {
	SocketPath       string
	Testbed          *model.Testbed
	TransportFactory TransportFactory
	MaxConnections   int // caps concurrently executing transports
	CommandTimeout   time.Duration
}

// Broker is the long-lived local connection-pooling service. It embeds
// services.BaseService for its start/stop lifecycle.
type Broker struct {
	*services.BaseService

	cfg      Config
	pool     *pool
	sem      *semaphore.Weighted
	stats    Statistics
	listener net.Listener
	cancel   context.CancelFunc
	done     chan struct{}
}

// New returns a Broker that has not been started (services.StateUnknown).
// When cfg.MaxConnections is
// unset, it defaults to min(50, 2x the testbed's device count).
func New(cfg Config) *Broker {
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = defaultMaxConnections(cfg.Testbed)
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 30 * time.Second
	}
	return &Broker{
		BaseService: services.NewBaseService("ConnectionBroker", services.TypeConnectionBroker, nil),
		cfg:         cfg,
		pool:        newPool(),
		sem:         semaphore.NewWeighted(int64(cfg.MaxConnections)),
	}
}

// Start listens on the configured Unix-domain socket and begins accepting
// connections in the background.
func (b *Broker) Start(ctx context.Context) error {
	b.UpdateState(services.StateStarting, services.HealthChecking, nil)

	listener, err := b.acquireListener()
	if err != nil {
		b.UpdateState(services.StateFailed, services.HealthUnhealthy, err)
		return errs.Wrap(errs.BrokerTransportError, "listen on broker socket", subsystem, b.cfg.SocketPath, err)
	}
	b.listener = listener

	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{})

	go b.acceptLoop(runCtx)

	b.UpdateState(services.StateRunning, services.HealthHealthy, nil)
	return nil
}

// acquireListener prefers a systemd socket-activated listener (LISTEN_FDS
// set by a supervising systemd unit) so the broker never has to race its own
// net.Listen against a client dialing before the socket exists. Falls back
// to binding cfg.SocketPath directly when this process wasn't socket-
// activated.
func (b *Broker) acquireListener() (net.Listener, error) {
	listeners, err := activation.Listeners()
	if err == nil && len(listeners) > 0 {
		logging.Info(subsystem, "using systemd socket-activated listener, ignoring configured socket path")
		return listeners[0], nil
	}

	_ = os.Remove(b.cfg.SocketPath)
	return net.Listen("unix", b.cfg.SocketPath)
}

func (b *Broker) acceptLoop(ctx context.Context) {
	defer close(b.done)
	for {
		conn, err := b.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Warn(subsystem, "accept error: %s", err)
			continue
		}
		go b.handleConn(ctx, conn)
	}
}

func (b *Broker) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			continue
		}

		resp := b.dispatch(ctx, req)
		data, _ := json.Marshal(resp)
		_, _ = writer.Write(data)
		_, _ = writer.WriteString("\n")
		_ = writer.Flush()
	}
}

func (b *Broker) dispatch(ctx context.Context, req Request) Response {
	switch req.Op {
	case OpExec:
		return b.handleExec(ctx, req)
	case OpDisconnect:
		return b.handleDisconnect(req)
	case OpStats:
		return b.handleStats(req)
	default:
		return Response{RequestID: req.RequestID, OK: false, ErrorKind: ErrorKindTransport, Message: "unknown op " + req.Op}
	}
}

func (b *Broker) handleExec(ctx context.Context, req Request) Response {
	slot := b.pool.slotFor(req.DeviceID)

	if err := b.sem.Acquire(ctx, 1); err != nil {
		return Response{RequestID: req.RequestID, OK: false, ErrorKind: ErrorKindTimeout, Message: err.Error()}
	}
	defer b.sem.Release(1)

	entry, _ := b.cfg.Testbed.Devices[req.DeviceID].(map[string]interface{})

	// Resolve the transport (and record the connection hit/miss) before
	// consulting the command cache, so a cached command still counts as a
	// connection hit against the device's already-open transport.
	transport, _, err := slot.withTransport(ctx, req.DeviceID, entry, b.cfg.TransportFactory, &b.stats)
	if err != nil {
		return Response{RequestID: req.RequestID, OK: false, ErrorKind: classifyError(err), Message: err.Error()}
	}

	if cached, ok := slot.conn.Lookup(req.Command); ok {
		atomic.AddInt64(&b.stats.CommandHits, 1)
		return Response{RequestID: req.RequestID, OK: true, Output: cached.Output, Cached: true}
	}

	execCtx, cancel := context.WithTimeout(ctx, b.cfg.CommandTimeout)
	defer cancel()

	start := time.Now()
	output, err := executeWithRetry(execCtx, transport, req.Command)
	duration := time.Since(start)

	if err != nil {
		atomic.AddInt64(&b.stats.CommandMisses, 1)
		return Response{RequestID: req.RequestID, OK: false, ErrorKind: classifyError(err), Message: err.Error()}
	}

	atomic.AddInt64(&b.stats.CommandMisses, 1)
	slot.conn.Store(model.CachedCommandResult{CommandText: req.Command, Output: output, CapturedAt: time.Now(), SizeBytes: len(output)})

	return Response{RequestID: req.RequestID, OK: true, Output: output, Cached: false, DurationMs: duration.Milliseconds()}
}

func (b *Broker) handleDisconnect(req Request) Response {
	slot := b.pool.slotFor(req.DeviceID)
	slot.mu.Lock()
	if slot.transport != nil {
		_ = slot.transport.Close()
		slot.transport = nil
	}
	slot.mu.Unlock()
	return Response{RequestID: req.RequestID, OK: true}
}

func (b *Broker) handleStats(req Request) Response {
	snapshot := Statistics{
		ConnectionHits:   atomic.LoadInt64(&b.stats.ConnectionHits),
		ConnectionMisses: atomic.LoadInt64(&b.stats.ConnectionMisses),
		CommandHits:      atomic.LoadInt64(&b.stats.CommandHits),
		CommandMisses:    atomic.LoadInt64(&b.stats.CommandMisses),
		RestartCount:     b.RestartCount(),
		UptimeSeconds:    b.Uptime().Seconds(),
	}
	return Response{RequestID: req.RequestID, OK: true, Stats: &snapshot}
}

// Stop closes the listener, every open transport, and logs the final
// statistics line. Safe to call on all exit paths, including after a panic
// recovered by the caller.
func (b *Broker) Stop(ctx context.Context) error {
	b.UpdateState(services.StateStopping, services.HealthChecking, nil)

	if b.cancel != nil {
		b.cancel()
	}
	if b.listener != nil {
		_ = b.listener.Close()
	}
	if b.done != nil {
		select {
		case <-b.done:
		case <-time.After(5 * time.Second):
		}
	}
	b.pool.closeAll()
	_ = os.Remove(b.cfg.SocketPath)

	logging.Info(subsystem, "BROKER_STATISTICS: connection_hits=%d, connection_misses=%d, command_hits=%d, command_misses=%d, restart_count=%d, uptime_seconds=%.2f",
		atomic.LoadInt64(&b.stats.ConnectionHits), atomic.LoadInt64(&b.stats.ConnectionMisses),
		atomic.LoadInt64(&b.stats.CommandHits), atomic.LoadInt64(&b.stats.CommandMisses),
		b.RestartCount(), b.Uptime().Seconds())

	b.UpdateState(services.StateStopped, services.HealthUnknown, nil)
	return nil
}

// Restart stops and starts the broker again.
func (b *Broker) Restart(ctx context.Context) error {
	if err := b.Stop(ctx); err != nil {
		return err
	}
	return b.Start(ctx)
}

func defaultMaxConnections(tb *model.Testbed) int {
	const maxCap = 50
	if tb == nil {
		return maxCap
	}
	if n := 2 * len(tb.Devices); n < maxCap {
		return n
	}
	return maxCap
}

func executeWithRetry(ctx context.Context, t Transport, command string) (string, error) {
	output, err := t.Execute(ctx, command)
	if err == nil || !isTransient(err) {
		return output, err
	}
	time.Sleep(200 * time.Millisecond)
	return t.Execute(ctx, command)
}

func isTransient(err error) bool {
	return errs.OfKind(err, errs.BrokerTransportError) || errs.OfKind(err, errs.BrokerTimeoutError)
}

func classifyError(err error) string {
	switch {
	case errs.OfKind(err, errs.BrokerAuthError):
		return ErrorKindAuth
	case errs.OfKind(err, errs.BrokerTimeoutError):
		return ErrorKindTimeout
	default:
		return ErrorKindTransport
	}
}
