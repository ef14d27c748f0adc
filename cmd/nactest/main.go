// Command nactest discovers and runs a network-infrastructure test suite
// against a merged-data model, then reports combined pass/fail results.
package main

import (
	"github.com/netascode/nac-test-go/cmd/nactest/cmd"
)

func main() {
	cmd.Execute()
}
