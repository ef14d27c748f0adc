package resources

import "errors"

var (
	errLoadAvgFormat       = errors.New("resources: unexpected /proc/loadavg format")
	errMemInfoFormat       = errors.New("resources: unexpected /proc/meminfo MemAvailable format")
	errMemInfoMissing      = errors.New("resources: MemAvailable not found in /proc/meminfo")
	errUnsupportedPlatform = errors.New("resources: introspection not supported on this platform")
)
