// Package testbed builds the YAML testbed descriptor the pyATS worker
// reads: a single-device form for per-device D2D workers, and a
// consolidated form for the connection broker. A user-supplied base
// testbed always wins over an auto-generated entry for the same hostname.
package testbed
