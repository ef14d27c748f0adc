package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/netascode/nac-test-go/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Load reads and validates the merged-data file at path, starting from
// Default() so any field the file omits keeps its library default.
func Load(path string) (RunConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, &Error{Path: path, Cause: err}
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, &Error{Path: path, Cause: fmt.Errorf("parsing yaml: %w", err)}
	}
	logging.Info("config", "loaded configuration from %s (%d devices)", path, len(cfg.Devices))

	if err := resolveSecretFiles(&cfg); err != nil {
		return RunConfig{}, &Error{Path: path, Cause: err}
	}
	if err := Validate(cfg); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

// resolveSecretFiles reads *File-suffixed indirections so credentials can
// be mounted as files (e.g. from a secret volume) instead of living in the
// merged-data YAML in plaintext.
func resolveSecretFiles(cfg *RunConfig) error {
	if cfg.Controller.PasswordFile != "" && cfg.Controller.Password == "" {
		secret, err := readSecretFile(cfg.Controller.PasswordFile)
		if err != nil {
			return fmt.Errorf("reading controller password file: %w", err)
		}
		cfg.Controller.Password = secret
	}
	if cfg.Controller.TokenFile != "" && cfg.Controller.Token == "" {
		secret, err := readSecretFile(cfg.Controller.TokenFile)
		if err != nil {
			return fmt.Errorf("reading controller token file: %w", err)
		}
		cfg.Controller.Token = secret
	}
	return nil
}

func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
