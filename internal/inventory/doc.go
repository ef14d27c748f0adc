// Package inventory resolves device entries out of merged configuration
// data into DeviceRecord values ready for TestbedBuilder, skipping devices
// missing required fields rather than failing the run.
package inventory
