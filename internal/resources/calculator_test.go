package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProbe struct {
	cpuCount  int
	loadAvg   float64
	loadErr   error
	memGB     float64
	memErr    error
	maxFDs    int
	maxFDsErr error
}

func (f fakeProbe) CPUCount() int                     { return f.cpuCount }
func (f fakeProbe) LoadAverage1() (float64, error)    { return f.loadAvg, f.loadErr }
func (f fakeProbe) AvailableMemoryGB() (float64, error) { return f.memGB, f.memErr }
func (f fakeProbe) MaxFileDescriptors() (int, error)  { return f.maxFDs, f.maxFDsErr }

func TestWorkerCapacityCPUBound(t *testing.T) {
	probe := fakeProbe{cpuCount: 4, memGB: 1000}
	calc := NewCalculatorWithProbe(probe)

	got := calc.WorkerCapacity(0.5, 2.0, 100, "")
	assert.Equal(t, 8, got)
}

func TestWorkerCapacityMemoryBound(t *testing.T) {
	probe := fakeProbe{cpuCount: 32, memGB: 4}
	calc := NewCalculatorWithProbe(probe)

	got := calc.WorkerCapacity(1.0, 2.0, 100, "")
	assert.Equal(t, 4, got)
}

func TestWorkerCapacityHalvedUnderLoad(t *testing.T) {
	probe := fakeProbe{cpuCount: 4, loadAvg: 10, memGB: 1000}
	calc := NewCalculatorWithProbe(probe)

	got := calc.WorkerCapacity(0.5, 2.0, 100, "")
	assert.Equal(t, 4, got)
}

func TestWorkerCapacityNeverBelowOne(t *testing.T) {
	probe := fakeProbe{cpuCount: 1, memGB: 0.01}
	calc := NewCalculatorWithProbe(probe)

	got := calc.WorkerCapacity(10, 0.1, 100, "")
	assert.Equal(t, 1, got)
}

func TestWorkerCapacityRespectsCap(t *testing.T) {
	probe := fakeProbe{cpuCount: 128, memGB: 1000}
	calc := NewCalculatorWithProbe(probe)

	got := calc.WorkerCapacity(0.1, 4.0, 16, "")
	assert.Equal(t, 16, got)
}

func TestWorkerCapacityEnvOverride(t *testing.T) {
	t.Setenv("NAC_TEST_PYATS_PROCESSES", "42")
	calc := NewCalculatorWithProbe(fakeProbe{cpuCount: 4, memGB: 8})

	got := calc.WorkerCapacity(0.5, 2.0, 100, "NAC_TEST_PYATS_PROCESSES")
	require.Equal(t, 42, got)
}

func TestWorkerCapacityInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("NAC_TEST_PYATS_PROCESSES", "not_a_number")
	calc := NewCalculatorWithProbe(fakeProbe{cpuCount: 4, memGB: 8})

	got := calc.WorkerCapacity(0.5, 2.0, 100, "NAC_TEST_PYATS_PROCESSES")
	assert.GreaterOrEqual(t, got, 1)
}

func TestConnectionCapacityFDBound(t *testing.T) {
	probe := fakeProbe{cpuCount: 4, maxFDs: 1024, memGB: 1000}
	calc := NewCalculatorWithProbe(probe)

	got := calc.ConnectionCapacity(10, 4, 1000, "")
	assert.Equal(t, 256, got)
}

func TestConnectionCapacityEnvOverride(t *testing.T) {
	t.Setenv("NAC_TEST_PYATS_MAX_CONNECTIONS", "500")
	calc := NewCalculatorWithProbe(fakeProbe{maxFDs: 1024, memGB: 8})

	got := calc.ConnectionCapacity(10, 4, 1000, "NAC_TEST_PYATS_MAX_CONNECTIONS")
	require.Equal(t, 500, got)
}

func TestConnectionCapacityInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("NAC_TEST_PYATS_MAX_CONNECTIONS", "invalid")
	calc := NewCalculatorWithProbe(fakeProbe{maxFDs: 1024, memGB: 8})

	got := calc.ConnectionCapacity(10, 4, 1000, "NAC_TEST_PYATS_MAX_CONNECTIONS")
	assert.GreaterOrEqual(t, got, 1)
}

func TestConnectionCapacityNeverFails(t *testing.T) {
	probe := fakeProbe{loadErr: assert.AnError, memErr: assert.AnError, maxFDsErr: assert.AnError}
	calc := NewCalculatorWithProbe(probe)

	got := calc.ConnectionCapacity(10, 4, 50, "")
	assert.Equal(t, 50, got)
}
