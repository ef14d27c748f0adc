package resources

import (
	"os"
	"strconv"

	"github.com/netascode/nac-test-go/pkg/logging"
)

const subsystem = "resources"

// Calculator computes worker and connection capacities from system limits.
// It never fails: every introspection error degrades to the cap or to 1.
type Calculator struct {
	probe SystemProbe
}

// NewCalculator returns a Calculator backed by the real system probe.
func NewCalculator() *Calculator {
	return &Calculator{probe: NewSystemProbe()}
}

// NewCalculatorWithProbe returns a Calculator backed by a fake probe, for
// tests.
func NewCalculatorWithProbe(probe SystemProbe) *Calculator {
	return &Calculator{probe: probe}
}

// WorkerCapacity computes the number of parallel pyATS worker processes
// this host can safely run. memoryPerWorkerGB and cpuMultiplier bound the
// memory and CPU sides respectively; the result never exceeds maxWorkersCap
// and never drops below 1. If envOverrideName is set to a positive integer,
// that value is used instead.
func (c *Calculator) WorkerCapacity(memoryPerWorkerGB float64, cpuMultiplier float64, maxWorkersCap int, envOverrideName string) int {
	if v, ok := c.envOverride(envOverrideName); ok {
		return v
	}

	cpuCount := c.probe.CPUCount()
	cpuBound := float64(cpuCount) * cpuMultiplier

	if load, err := c.probe.LoadAverage1(); err == nil && load > float64(cpuCount) {
		cpuBound /= 2
	}

	bound := cpuBound
	if mem, err := c.probe.AvailableMemoryGB(); err == nil && memoryPerWorkerGB > 0 {
		memBound := mem / memoryPerWorkerGB
		if memBound < bound {
			bound = memBound
		}
	}

	return clampCapacity(bound, maxWorkersCap)
}

// ConnectionCapacity computes the number of concurrent broker connections
// this host can safely hold, analogous to WorkerCapacity but bounded by
// file-descriptor ceiling and memory-per-connection instead of CPU.
func (c *Calculator) ConnectionCapacity(memoryPerConnectionMB float64, fdsPerConnection int, maxConnectionsCap int, envOverrideName string) int {
	if v, ok := c.envOverride(envOverrideName); ok {
		return v
	}

	bound := float64(maxConnectionsCap)

	if fds, err := c.probe.MaxFileDescriptors(); err == nil && fdsPerConnection > 0 {
		fdBound := float64(fds) / float64(fdsPerConnection)
		if fdBound < bound {
			bound = fdBound
		}
	}

	if mem, err := c.probe.AvailableMemoryGB(); err == nil && memoryPerConnectionMB > 0 {
		memBound := (mem * 1024) / memoryPerConnectionMB
		if memBound < bound {
			bound = memBound
		}
	}

	return clampCapacity(bound, maxConnectionsCap)
}

func (c *Calculator) envOverride(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	raw, set := os.LookupEnv(name)
	if !set || raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		logging.Warn(subsystem, "invalid %s value %q, falling back to calculated capacity", name, raw)
		return 0, false
	}
	return v, true
}

func clampCapacity(bound float64, maxCap int) int {
	if bound > float64(maxCap) {
		bound = float64(maxCap)
	}
	v := int(bound)
	if v < 1 {
		v = 1
	}
	return v
}
