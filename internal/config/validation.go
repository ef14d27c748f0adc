package config

import "fmt"

// Validate checks the invariants the rest of the pipeline relies on:
// at least one device, a controller URL for the API lane, and non-negative
// concurrency overrides.
func Validate(cfg RunConfig) error {
	if cfg.Controller.URL == "" {
		return &Error{Field: "controller.url", Cause: fmt.Errorf("must be set")}
	}
	if len(cfg.Devices) == 0 {
		return &Error{Field: "devices", Cause: fmt.Errorf("at least one device is required")}
	}
	for name, d := range cfg.Devices {
		if d.Host == "" {
			return &Error{Field: fmt.Sprintf("devices.%s.host", name), Cause: fmt.Errorf("must be set")}
		}
	}
	if cfg.Concurrency.APIConcurrency < 0 || cfg.Concurrency.SSHConcurrency < 0 || cfg.Concurrency.MaxParallelDevices < 0 {
		return &Error{Field: "concurrency", Cause: fmt.Errorf("values must be non-negative")}
	}
	return nil
}
