// Package aggregate combines the outputs of one or more worker
// subprocesses into the artifacts PyATSOrchestrator and CombinedOrchestrator
// hand to reporting: a single lane archive (ArchiveAggregator) and a merged
// xUnit document (XUnitMerger).
package aggregate
