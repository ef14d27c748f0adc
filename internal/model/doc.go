// Package model holds the data structures shared across discovery,
// execution, the broker, and reporting: ExecutionPlan, TestFileRecord,
// DeviceRecord, Testbed, JobDescriptor, WorkerEvent, Archive, TestResults,
// CachedCommandResult, and BrokerConnection. Keeping these in one package
// (rather than each owning package defining its own) avoids import cycles
// between discovery, the broker, and the orchestrators, all of which need
// to refer to the same few shapes.
package model
