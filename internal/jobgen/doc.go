// Package jobgen builds the self-contained JobDescriptor passed to a
// worker subprocess, and serializes it to the JSON file SubprocessRunner
// hands the worker its path to.
package jobgen
