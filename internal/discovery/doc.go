// Package discovery walks a test tree, classifies each file into the api
// or d2d lane by static analysis, and applies tag-pattern filtering to
// build the execution plan the orchestrator runs from.
package discovery
