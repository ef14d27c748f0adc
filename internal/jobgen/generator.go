package jobgen

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/netascode/nac-test-go/internal/errs"
	"github.com/netascode/nac-test-go/internal/model"
)

// Generator builds JobDescriptors and writes them to a temp file for a
// subprocess to read.
type Generator struct {
	tempDir string
}

// New returns a Generator that writes job files under tempDir.
func New(tempDir string) *Generator {
	return &Generator{tempDir: tempDir}
}

// Build constructs a job descriptor for one worker invocation. testPaths
// are made absolute; the archive name is built from lane and the current
// time.
func (g *Generator) Build(testPaths []string, workerCount int, lane model.TestType, mergedDataFile, testbedFile, outputDir string, environmentExtras map[string]string) (model.JobDescriptor, error) {
	absPaths := make([]string, len(testPaths))
	for i, p := range testPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return model.JobDescriptor{}, errs.Wrap(errs.WorkerLaunchError, "resolve test path", "jobgen", p, err)
		}
		absPaths[i] = abs
	}

	return model.JobDescriptor{
		TestPaths:         absPaths,
		WorkerCount:       workerCount,
		MergedDataFile:    mergedDataFile,
		TestbedFile:       testbedFile,
		Lane:              lane,
		OutputDir:         outputDir,
		ArchiveName:       model.ArchiveName(lane, time.Now()),
		EnvironmentExtras: environmentExtras,
	}, nil
}

// Write serializes job to a new JSON file under the generator's temp
// directory and returns its path.
func (g *Generator) Write(job model.JobDescriptor) (string, error) {
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", errs.Wrap(errs.WorkerLaunchError, "marshal job descriptor", "jobgen", "", err)
	}

	path := filepath.Join(g.tempDir, "job-"+uuid.NewString()+".json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", errs.Wrap(errs.WorkerLaunchError, "write job descriptor", "jobgen", path, err)
	}
	return path, nil
}
