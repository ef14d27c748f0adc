package nonlane

import (
	"context"

	"github.com/netascode/nac-test-go/internal/model"
)

// Lane is the capability surface CombinedOrchestrator needs from any peer
// test family (the "robot"/template lane in the original system). Its
// rendering pipeline and device-session protocol are out of scope; a real
// implementation would live in its own package and satisfy this interface.
type Lane interface {
	Name() string
	HasTests() bool
	Run(ctx context.Context) (model.TestResults, error)
}

// Disabled is a Lane that never has tests to run, used when a peer family
// isn't wired in.
type Disabled struct {
	LaneName string
}

func (d Disabled) Name() string { return d.LaneName }

func (d Disabled) HasTests() bool { return false }

func (d Disabled) Run(ctx context.Context) (model.TestResults, error) {
	return model.EmptyResults(), nil
}
