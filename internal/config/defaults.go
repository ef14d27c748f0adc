package config

import "time"

// Defaults centralizes the tunables ResourceCalculator, ConnectionBroker,
// and the retry-aware executors fall back to when neither the merged-data
// file nor an environment override supplies a value. The values themselves
// are carried over from the original implementation's core/constants.py.
var Defaults = struct {
	APIConcurrency     int
	SSHConcurrency     int
	MaxParallelDevices int
	MemoryPerWorkerMB  int
	BrokerMaxConnections int
	BrokerDialTimeout    time.Duration
	BrokerCommandTimeout time.Duration
	DefaultTestType      string
	TestTimeout          time.Duration
	RetryMaxAttempts     int
	RetryInitialDelay    time.Duration
	RetryMaxDelay        time.Duration
	RetryExponentialBase float64

	PyATSResultsDirname   string
	RobotResultsDirname   string
	HTMLReportsDirname    string
	SummaryReportFilename string
	CombinedSummaryFilename string
}{
	APIConcurrency:       55,
	SSHConcurrency:       20,
	MaxParallelDevices:   20,
	MemoryPerWorkerMB:    512,
	BrokerMaxConnections: 50,
	BrokerDialTimeout:    10 * time.Second,
	BrokerCommandTimeout: 120 * time.Second,
	DefaultTestType:      "api",
	TestTimeout:          6 * time.Hour,
	RetryMaxAttempts:     3,
	RetryInitialDelay:    time.Second,
	RetryMaxDelay:        30 * time.Second,
	RetryExponentialBase: 2.0,

	PyATSResultsDirname:     "pyats_results",
	RobotResultsDirname:     "robot_results",
	HTMLReportsDirname:      "html_reports",
	SummaryReportFilename:   "summary_report.html",
	CombinedSummaryFilename: "combined_summary.html",
}

// Default returns a RunConfig populated with library defaults, used as the
// base that a merged-data YAML file is unmarshaled on top of.
func Default() RunConfig {
	return RunConfig{
		Concurrency: ConcurrencyConfig{
			APIConcurrency:     Defaults.APIConcurrency,
			SSHConcurrency:     Defaults.SSHConcurrency,
			MaxParallelDevices: Defaults.MaxParallelDevices,
			MemoryPerWorkerMB:  Defaults.MemoryPerWorkerMB,
		},
		Broker: BrokerConfig{
			MaxConnections: Defaults.BrokerMaxConnections,
			DialTimeout:    Defaults.BrokerDialTimeout,
			CommandTimeout: Defaults.BrokerCommandTimeout,
		},
		Discovery: DiscoveryConfig{
			DefaultTestType: Defaults.DefaultTestType,
		},
	}
}
