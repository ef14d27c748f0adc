// Package resources computes safe worker and broker-connection capacities
// from system limits: CPU count, load average, available memory, and (on
// Linux) the open-file-descriptor ceiling. Every calculation accepts an
// environment variable override and always returns a positive integer -
// resource probing degrading or failing never aborts a run.
package resources
