package broker

import "context"

// Transport is one open device session. The broker never knows whether a
// transport is real SSH, a subprocess-backed session, or a test fake - it
// only opens, probes, executes against, and closes one per device.
type Transport interface {
	Execute(ctx context.Context, command string) (string, error)
	Healthy(ctx context.Context) bool
	Close() error
}

// TransportFactory opens a Transport for a device, given its consolidated
// testbed entry (the map TestbedBuilder produced for that hostname).
type TransportFactory func(ctx context.Context, hostname string, entry map[string]interface{}) (Transport, error)
