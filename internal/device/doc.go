// Package device runs the D2D lane: one worker subprocess per device,
// batched and bounded by a semaphore sized to the host's worker capacity.
package device
