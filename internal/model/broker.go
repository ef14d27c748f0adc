package model

import "time"

// CachedCommandResult is one command's captured output, keyed by the exact
// command text a worker sent. Never evicted within a run.
type CachedCommandResult struct {
	CommandText string
	Output      string
	CapturedAt  time.Time
	SizeBytes   int
}

// BrokerConnection is the broker's per-device session state: the live
// transport plus every command result captured on it so far.
type BrokerConnection struct {
	DeviceID string
	Transport string
	LastUsed time.Time
	InUse    bool
	Cache    map[string]CachedCommandResult
}

// NewBrokerConnection returns a connection with an initialized cache.
func NewBrokerConnection(deviceID, transport string) *BrokerConnection {
	return &BrokerConnection{
		DeviceID:  deviceID,
		Transport: transport,
		Cache:     make(map[string]CachedCommandResult),
	}
}

// Lookup returns the cached result for commandText, if present.
func (c *BrokerConnection) Lookup(commandText string) (CachedCommandResult, bool) {
	r, ok := c.Cache[commandText]
	return r, ok
}

// Store records a new command result, overwriting any prior entry for the
// same command text.
func (c *BrokerConnection) Store(result CachedCommandResult) {
	c.Cache[result.CommandText] = result
}
