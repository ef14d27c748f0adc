// Package nonlane exposes the capability surface CombinedOrchestrator needs
// to run the non-core ("robot"/template) lane, which this repository treats
// as an external peer and does not implement.
package nonlane
