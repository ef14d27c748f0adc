// Package services provides the long-running-process abstraction used by
// components that must be started once and supervised for the life of a
// run: the connection broker implements Service and embeds BaseService for
// lifecycle state, health tracking, and state-change notification.
//
// # Service Lifecycle
//
// 1. Creation: a BaseService is constructed with a name, type, and any
// dependencies it waits on.
// 2. Starting: Start transitions Stopped/Unknown -> Starting -> Running.
// 3. Health Monitoring: services that implement HealthChecker are polled
// periodically by their owner.
// 4. Stopping: Stop transitions Running -> Stopping -> Stopped.
// 5. Failure: any lifecycle method can leave the service in StateFailed
// with GetLastError populated.
//
// State changes are delivered through a StateChangeCallback fired outside
// the service's internal lock, so callbacks may safely call back into the
// service without deadlocking.
package services
