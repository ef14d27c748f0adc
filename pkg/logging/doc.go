// Package logging provides a structured logging system for nac-test-go that
// supports both direct CLI output and channel-based collection, so the same
// subsystem-tagged log calls work whether the process is run interactively
// or embedded as a library behind a different front end.
//
// # Architecture
//
// ## Log Levels
//   - Debug: detailed information for diagnosing orchestration decisions
//   - Info: general informational messages about run progress
//   - Warn: recoverable problems (skipped files, backoff retries)
//   - Error: failures, always carrying the causing error
//
// ## Execution Modes
//   - CLI mode: logs go directly to a writer (stdout/stderr) via slog.TextHandler
//   - Collector mode: logs are sent on a buffered channel for a caller to
//     render (e.g. a summary UI aggregating logs across both test lanes)
//
// Every log call carries a subsystem string (e.g. "discovery", "broker",
// "orchestrator") so downstream consumers can filter or color by origin.
package logging
