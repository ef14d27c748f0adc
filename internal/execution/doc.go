// Package execution launches worker subprocesses, streams and parses
// their event output, and renders live progress. SubprocessRunner owns
// one process's lifecycle; OutputProcessor classifies its stdout;
// ProgressReporter renders a line per task_start/task_end.
package execution
