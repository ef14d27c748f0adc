// Package events generates structured, human-readable records for the
// milestones of a test run: lane start/stop, worker launch, individual test
// start/end, device connection outcomes, broker statistics, and report
// generation.
//
// The package follows a template-engine design: the wording for each
// EventReason is defined once in MessageTemplateEngine and reused by every
// caller, so ProgressReporter, ConnectionBroker, and the orchestrators all
// produce consistently worded lines. Events are delivered through a
// Recorder interface so callers can plug in a logger, a channel consumed by
// a summary view, or (in tests) an in-memory slice.
package events
