// Package orchestrator owns a run end to end: pre-flight controller
// validation, test discovery, fanning the API and D2D lanes out in
// parallel, and folding their results into the combined statistics the
// CLI reports.
package orchestrator
