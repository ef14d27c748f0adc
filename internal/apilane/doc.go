// Package apilane runs the API lane: every API test in one subprocess, so
// that worker parallelizes internally instead of through process fan-out.
package apilane
