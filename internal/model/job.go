package model

// JobDescriptor is a self-contained description of one worker invocation,
// serialized to JSON and passed to the worker subprocess by path.
type JobDescriptor struct {
	TestPaths         []string          `json:"test_paths"`
	WorkerCount       int               `json:"worker_count"`
	MergedDataFile    string            `json:"merged_data_file"`
	TestbedFile       string            `json:"testbed_file"`
	Lane              TestType          `json:"lane"`
	OutputDir         string            `json:"output_dir"`
	ArchiveName       string            `json:"archive_name"`
	EnvironmentExtras map[string]string `json:"environment_extras,omitempty"`
}
