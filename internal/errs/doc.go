// Package errs defines the error taxonomy the orchestrator and its
// components use to classify failures. Errors carry a Kind rather than
// being distinguished by concrete type, so callers can branch on
// errors.As(err, &kindErr) without a type per failure mode.
//
// Test failures (a test that ran and failed assertions) are never
// represented here - they are recorded in model.TestResults. Only
// infrastructure failures that should abort or degrade a run produce an
// *Error.
package errs
