package resources

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// SystemProbe abstracts the OS introspection ResourceCalculator needs, so
// tests can fake load and memory without touching /proc.
type SystemProbe interface {
	CPUCount() int
	LoadAverage1() (float64, error)
	AvailableMemoryGB() (float64, error)
	MaxFileDescriptors() (int, error)
}

// linuxProbe reads /proc/loadavg and /proc/meminfo directly; no third-party
// package in the pack wraps these, and psutil's breadth (the original's
// dependency) is not worth pulling a whole system-info library in for two
// files - see DESIGN.md.
type linuxProbe struct{}

// NewSystemProbe returns the probe for the running GOOS: linuxProbe on
// linux, a degraded portableProbe elsewhere.
func NewSystemProbe() SystemProbe {
	if runtime.GOOS == "linux" {
		return linuxProbe{}
	}
	return portableProbe{}
}

func (linuxProbe) CPUCount() int {
	return runtime.NumCPU()
}

func (linuxProbe) LoadAverage1() (float64, error) {
	data, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, errLoadAvgFormat
	}
	return strconv.ParseFloat(fields[0], 64)
}

func (linuxProbe) AvailableMemoryGB() (float64, error) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemAvailable:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, errMemInfoFormat
		}
		kb, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return 0, err
		}
		return kb / (1024 * 1024), nil
	}
	return 0, errMemInfoMissing
}

// portableProbe is used on non-Linux platforms: CPU count is accurate,
// memory and fd limits are unknown, so callers fall back to their caps.
type portableProbe struct{}

func (portableProbe) CPUCount() int { return runtime.NumCPU() }

func (portableProbe) LoadAverage1() (float64, error) {
	return 0, errUnsupportedPlatform
}

func (portableProbe) AvailableMemoryGB() (float64, error) {
	return 0, errUnsupportedPlatform
}

func (portableProbe) MaxFileDescriptors() (int, error) {
	return 0, errUnsupportedPlatform
}
