package model

import "sort"

// TestType is the lane a test file belongs to.
type TestType string

const (
	TestTypeAPI TestType = "api"
	TestTypeD2D TestType = "d2d"
)

// TestFileRecord is one file resolved by TestTypeResolver. Never mutated
// after construction.
type TestFileRecord struct {
	Path     string
	TestType TestType
	Groups   []string
}

// SkippedFile records a file discovery rejected, with the reason why.
type SkippedFile struct {
	Path   string
	Reason string
}

// ExecutionPlan is the immutable record of which files will run and in
// which lane, built once by TestDiscovery.
type ExecutionPlan struct {
	APITests       []TestFileRecord
	D2DTests       []TestFileRecord
	SkippedFiles   []SkippedFile
	FilteredCount  int
	pathToType     map[string]TestType
}

// NewExecutionPlan builds a plan from the classified and filtered test
// records, pre-computing the path->type map the invariant in the data
// model requires.
func NewExecutionPlan(apiTests, d2dTests []TestFileRecord, skipped []SkippedFile, filteredCount int) *ExecutionPlan {
	sortRecords(apiTests)
	sortRecords(d2dTests)

	pathToType := make(map[string]TestType, len(apiTests)+len(d2dTests))
	for _, r := range apiTests {
		pathToType[r.Path] = TestTypeAPI
	}
	for _, r := range d2dTests {
		pathToType[r.Path] = TestTypeD2D
	}

	return &ExecutionPlan{
		APITests:      apiTests,
		D2DTests:      d2dTests,
		SkippedFiles:  skipped,
		FilteredCount: filteredCount,
		pathToType:    pathToType,
	}
}

func sortRecords(records []TestFileRecord) {
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
}

// GetTestType returns the lane a path was classified into, and whether the
// path is part of the plan at all (a filtered-out or skipped path is not).
func (p *ExecutionPlan) GetTestType(path string) (TestType, bool) {
	t, ok := p.pathToType[path]
	return t, ok
}

// AllTests returns every active test record across both lanes.
func (p *ExecutionPlan) AllTests() []TestFileRecord {
	all := make([]TestFileRecord, 0, len(p.APITests)+len(p.D2DTests))
	all = append(all, p.APITests...)
	all = append(all, p.D2DTests...)
	return all
}

// TotalCount is the number of tests that will actually run.
func (p *ExecutionPlan) TotalCount() int {
	return len(p.APITests) + len(p.D2DTests)
}

// APIPaths returns the sorted paths of the API lane.
func (p *ExecutionPlan) APIPaths() []string {
	paths := make([]string, len(p.APITests))
	for i, r := range p.APITests {
		paths[i] = r.Path
	}
	return paths
}

// D2DPaths returns the sorted paths of the D2D lane.
func (p *ExecutionPlan) D2DPaths() []string {
	paths := make([]string, len(p.D2DTests))
	for i, r := range p.D2DTests {
		paths[i] = r.Path
	}
	return paths
}
