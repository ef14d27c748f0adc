// Package config loads the merged-data file that describes a test run:
// the device inventory, controller credentials, and run-option overrides.
// It follows the same shape as a typical CLI tool's config loader: start
// from compiled-in defaults, unmarshal a YAML file over them, resolve any
// *File secret indirections, then validate the result before handing it to
// the orchestrator.
package config
