package aggregate

import (
	"encoding/xml"
	"os"

	"github.com/netascode/nac-test-go/internal/errs"
	"github.com/netascode/nac-test-go/pkg/logging"
)

const xunitSubsystem = "aggregate.xunit"

// xunitTestsuite mirrors the subset of JUnit XML's testsuite element this
// package reads and writes. Unknown attributes and child elements pass
// through via InnerXML so no test-case detail is lost.
type xunitTestsuite struct {
	XMLName  xml.Name `xml:"testsuite"`
	Name     string   `xml:"name,attr"`
	Tests    int      `xml:"tests,attr"`
	Failures int      `xml:"failures,attr"`
	Errors   int      `xml:"errors,attr"`
	Skipped  int      `xml:"skipped,attr"`
	Time     float64  `xml:"time,attr"`
	InnerXML string   `xml:",innerxml"`
}

type xunitTestsuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Skipped    int              `xml:"skipped,attr"`
	Time       float64          `xml:"time,attr"`
	Testsuites []xunitTestsuite `xml:"testsuite"`
}

// Input is one xUnit document to merge, tagged with the source lane/family
// that produced it (e.g. "pyats_api").
type Input struct {
	Path      string
	SourceTag string
}

// XUnitMerger combines N xUnit documents into a single testsuites root.
// Never deduplicates identically named suites; always prefixes names by
// source tag, matching how the original implementation aggregates results.
type XUnitMerger struct{}

// NewXUnitMerger returns an XUnitMerger.
func NewXUnitMerger() *XUnitMerger {
	return &XUnitMerger{}
}

// Merge reads every input, skipping missing paths silently and malformed
// documents with a warning, and writes the aggregated testsuites document
// to outputPath.
func (m *XUnitMerger) Merge(inputs []Input, outputPath string) error {
	var suites []xunitTestsuite
	var totalTests, totalFailures, totalErrors, totalSkipped int
	var totalTime float64

	for _, in := range inputs {
		info, err := os.Stat(in.Path)
		if err != nil || info.IsDir() {
			continue
		}

		parsed, err := parseXUnitFile(in.Path)
		if err != nil {
			logging.Warn(xunitSubsystem, "skipping malformed xunit file %s: %s", in.Path, err)
			continue
		}

		for _, suite := range parsed {
			suite.Name = in.SourceTag + ":" + suite.Name
			suites = append(suites, suite)
			totalTests += suite.Tests
			totalFailures += suite.Failures
			totalErrors += suite.Errors
			totalSkipped += suite.Skipped
			totalTime += suite.Time
		}
	}

	combined := xunitTestsuites{
		XMLName:    xml.Name{Local: "testsuites"},
		Tests:      totalTests,
		Failures:   totalFailures,
		Errors:     totalErrors,
		Skipped:    totalSkipped,
		Time:       totalTime,
		Testsuites: suites,
	}

	data, err := xml.MarshalIndent(combined, "", "  ")
	if err != nil {
		return errs.Wrap(errs.AggregationError, "marshal combined xunit", xunitSubsystem, outputPath, err)
	}

	body := append([]byte(xml.Header), data...)
	if err := os.WriteFile(outputPath, body, 0o644); err != nil {
		return errs.Wrap(errs.AggregationError, "write combined xunit", xunitSubsystem, outputPath, err)
	}
	return nil
}

// parseXUnitFile reads one xUnit document, which may be a bare testsuite or
// a testsuites wrapper, and returns its testsuite elements.
func parseXUnitFile(path string) ([]xunitTestsuite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var peek struct {
		XMLName xml.Name
	}
	if err := xml.Unmarshal(data, &peek); err != nil {
		return nil, err
	}

	switch peek.XMLName.Local {
	case "testsuites":
		var wrapper xunitTestsuites
		if err := xml.Unmarshal(data, &wrapper); err != nil {
			return nil, err
		}
		return wrapper.Testsuites, nil
	case "testsuite":
		var suite xunitTestsuite
		if err := xml.Unmarshal(data, &suite); err != nil {
			return nil, err
		}
		return []xunitTestsuite{suite}, nil
	default:
		return nil, errs.New(errs.AggregationError, "unrecognized xunit root element "+peek.XMLName.Local, nil)
	}
}
