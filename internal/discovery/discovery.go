package discovery

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/netascode/nac-test-go/internal/errs"
	"github.com/netascode/nac-test-go/internal/model"
	"github.com/netascode/nac-test-go/pkg/logging"
)

const discoverySubsystem = "discovery"

var (
	importPattern    = regexp.MustCompile(`(?m)^\s*(?:from|import)\s+(?:nac_test|nac_test_pyats_common)\b`)
	decoratorPattern = regexp.MustCompile(`(?m)^\s*@aetest\.(test|setup|cleanup)\b`)
)

// Discovery walks a test tree, validates and classifies each file, and
// applies tag filtering to build the ExecutionPlan.
type Discovery struct {
	root        string
	excludeDirs map[string]struct{}
	resolver    *Resolver
	tagFilter   *TagFilter
}

// Option configures a Discovery.
type Option func(*Discovery)

// WithExcludeDirs skips any file under one of these absolute directories.
func WithExcludeDirs(dirs []string) Option {
	return func(d *Discovery) {
		for _, dir := range dirs {
			abs, err := filepath.Abs(dir)
			if err != nil {
				continue
			}
			d.excludeDirs[abs] = struct{}{}
		}
	}
}

// WithTagFilter applies include/exclude tag patterns to the discovered set.
func WithTagFilter(f *TagFilter) Option {
	return func(d *Discovery) { d.tagFilter = f }
}

// New returns a Discovery rooted at root.
func New(root string, opts ...Option) *Discovery {
	d := &Discovery{
		root:        root,
		excludeDirs: make(map[string]struct{}),
		resolver:    NewResolver(),
		tagFilter:   NewTagFilter(nil, nil),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// HasTests reports whether at least one valid test file exists under root,
// without building the full plan.
func (d *Discovery) HasTests() bool {
	found := false
	_ = filepath.WalkDir(d.root, func(path string, entry os.DirEntry, err error) error {
		if found {
			return filepath.SkipAll
		}
		if err != nil || entry.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".py") {
			return nil
		}
		if d.shouldSkipPath(path, entry.Name()) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if valid, _ := isValidTest(string(content)); valid {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

// Discover walks the tree, classifies accepted files, applies tag
// filtering, and returns the resulting ExecutionPlan.
func (d *Discovery) Discover() (*model.ExecutionPlan, error) {
	var accepted []string
	var skipped []model.SkippedFile

	err := filepath.WalkDir(d.root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".py") {
			return nil
		}
		if d.shouldSkipPath(path, entry.Name()) {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			skipped = append(skipped, model.SkippedFile{Path: path, Reason: readErr.Error()})
			return nil
		}

		valid, reason := isValidTest(string(content))
		if !valid {
			skipped = append(skipped, model.SkippedFile{Path: path, Reason: reason})
			return nil
		}

		accepted = append(accepted, path)
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.DiscoveryError, "walk test directory", "discovery", d.root, err)
	}

	sort.Strings(accepted)
	logSkipped(skipped)

	var apiTests, d2dTests []model.TestFileRecord
	for _, path := range accepted {
		record, resolveErr := d.resolver.Resolve(path)
		if resolveErr != nil {
			return nil, resolveErr
		}
		switch record.TestType {
		case model.TestTypeD2D:
			d2dTests = append(d2dTests, record)
		default:
			apiTests = append(apiTests, record)
		}
	}

	beforeFilter := len(apiTests) + len(d2dTests)
	apiTests = d.tagFilter.Apply(apiTests)
	d2dTests = d.tagFilter.Apply(d2dTests)
	filteredCount := beforeFilter - len(apiTests) - len(d2dTests)

	return model.NewExecutionPlan(apiTests, d2dTests, skipped, filteredCount), nil
}

func (d *Discovery) shouldSkipPath(path, name string) bool {
	if strings.Contains(path, "__pycache__") {
		return true
	}
	if strings.HasPrefix(name, "_") {
		return true
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	for dir := range d.excludeDirs {
		if strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func isValidTest(content string) (bool, string) {
	if !importPattern.MatchString(content) {
		return false, "no nac_test imports"
	}
	if !decoratorPattern.MatchString(content) {
		return false, "no @aetest decorators"
	}
	return true, ""
}

func logSkipped(skipped []model.SkippedFile) {
	if len(skipped) == 0 {
		return
	}
	logging.Info(discoverySubsystem, "skipped %d file(s) during discovery", len(skipped))
	limit := len(skipped)
	if limit > 5 {
		limit = 5
	}
	for _, s := range skipped[:limit] {
		logging.Debug(discoverySubsystem, "  - %s: %s", filepath.Base(s.Path), s.Reason)
	}
	if len(skipped) > limit {
		logging.Debug(discoverySubsystem, "  ... and %d more", len(skipped)-limit)
	}
}
