package config

import "time"

// RunConfig is the merged-data configuration for a single orchestration run.
type RunConfig struct {
	Controller   ControllerConfig          `yaml:"controller"`
	Devices      map[string]DeviceRecord   `yaml:"devices"`
	Concurrency  ConcurrencyConfig         `yaml:"concurrency,omitempty"`
	Broker       BrokerConfig              `yaml:"broker,omitempty"`
	Discovery    DiscoveryConfig           `yaml:"discovery,omitempty"`
	Reporting    ReportingConfig           `yaml:"reporting,omitempty"`
	TestVariables map[string]interface{}   `yaml:"test_variables,omitempty"`
}

// ControllerType identifies which network controller generated the data model.
type ControllerType string

const (
	ControllerNDFC ControllerType = "ndfc"
	ControllerACI  ControllerType = "aci"
	ControllerSDWAN ControllerType = "sdwan"
)

// ControllerConfig carries the credentials the API lane uses to reach the
// network controller. *File-suffixed fields are resolved at load time
// so secrets never need to live in the merged-data file itself.
type ControllerConfig struct {
	Type             ControllerType `yaml:"type"`
	URL              string         `yaml:"url"`
	Username         string         `yaml:"username,omitempty"`
	Password         string         `yaml:"password,omitempty"`
	PasswordFile     string         `yaml:"password_file,omitempty"`
	Token            string         `yaml:"token,omitempty"`
	TokenFile        string         `yaml:"token_file,omitempty"`
	InsecureSkipTLSVerify bool      `yaml:"insecure_skip_tls_verify,omitempty"`
}

// DeviceRecord is one device's entry from the merged-data device map, the
// input DeviceInventory resolves into TestbedBuilder's device configs.
type DeviceRecord struct {
	Hostname   string            `yaml:"hostname"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port,omitempty"`
	Protocol   string            `yaml:"protocol,omitempty"` // "ssh" or a named command protocol
	Username   string            `yaml:"username,omitempty"`
	Password   string            `yaml:"password,omitempty"`
	Platform   string            `yaml:"platform,omitempty"`
	Model      string            `yaml:"model,omitempty"`
	Series     string            `yaml:"series,omitempty"`
	Groups     []string          `yaml:"groups,omitempty"`
	SSHOptions map[string]string `yaml:"ssh_options,omitempty"`
}

// ConcurrencyConfig overrides ResourceCalculator's derived worker counts.
type ConcurrencyConfig struct {
	APIConcurrency         int `yaml:"api_concurrency,omitempty"`
	SSHConcurrency         int `yaml:"ssh_concurrency,omitempty"`
	MaxParallelDevices     int `yaml:"max_parallel_devices,omitempty"`
	MemoryPerWorkerMB      int `yaml:"memory_per_worker_mb,omitempty"`
}

// BrokerConfig tunes ConnectionBroker's transport and caching behavior.
type BrokerConfig struct {
	MaxConnections int           `yaml:"max_connections,omitempty"`
	DialTimeout    time.Duration `yaml:"dial_timeout,omitempty"`
	CommandTimeout time.Duration `yaml:"command_timeout,omitempty"`
}

// DiscoveryConfig tunes TestDiscovery/TestTypeResolver defaults.
type DiscoveryConfig struct {
	DefaultTestType  string   `yaml:"default_test_type,omitempty"`
	ExcludeDirs      []string `yaml:"exclude_dirs,omitempty"`
	IncludeTags      []string `yaml:"include_tags,omitempty"`
	ExcludeTags      []string `yaml:"exclude_tags,omitempty"`
}

// ReportingConfig controls SummaryGenerator/ArchiveAggregator output behavior.
type ReportingConfig struct {
	KeepArchives   bool   `yaml:"keep_archives,omitempty"`
	MinimalReports bool   `yaml:"minimal_reports,omitempty"`
	OutputDir      string `yaml:"output_dir,omitempty"`
}
