package main

import (
	"archive/zip"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"

	"github.com/netascode/nac-test-go/internal/model"
)

type resultsSummary struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Errored int `json:"errored"`
	Total   int `json:"total"`
}

type xmlTestcase struct {
	XMLName xml.Name `xml:"testcase"`
	Name    string   `xml:"name,attr"`
	Time    float64  `xml:"time,attr"`
	Failure *struct {
		Message string `xml:",chardata"`
	} `xml:"failure,omitempty"`
}

type xmlTestsuite struct {
	XMLName   xml.Name      `xml:"testsuite"`
	Name      string        `xml:"name,attr"`
	Tests     int           `xml:"tests,attr"`
	Failures  int           `xml:"failures,attr"`
	Errors    int           `xml:"errors,attr"`
	Skipped   int           `xml:"skipped,attr"`
	Time      float64       `xml:"time,attr"`
	Testcases []xmlTestcase `xml:"testcase"`
}

// writeArchive packs the worker's results.json, ResultsDetails.xml,
// ResultsSummary.xml and one log file per task into a zip at path, matching
// the contract internal/orchestrator/archive_summary.go reads back.
func writeArchive(path string, lane model.TestType, outcomes []taskOutcome) error {
	summary := resultsSummary{}
	suite := xmlTestsuite{Name: "nactest_" + string(lane)}

	for _, o := range outcomes {
		summary.Total++
		suite.Tests++
		suite.Time += o.Duration

		tc := xmlTestcase{Name: o.TestName, Time: o.Duration}
		switch o.Result {
		case model.ResultPassed:
			summary.Passed++
		case model.ResultSkipped:
			summary.Skipped++
			suite.Skipped++
		case model.ResultFailed:
			summary.Failed++
			suite.Failures++
			tc.Failure = &struct {
				Message string `xml:",chardata"`
			}{Message: o.Output}
		default:
			summary.Errored++
			suite.Errors++
			tc.Failure = &struct {
				Message string `xml:",chardata"`
			}{Message: o.Output}
		}
		suite.Testcases = append(suite.Testcases, tc)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := zip.NewWriter(f)

	if err := writeJSONMember(w, "results.json", summary); err != nil {
		return err
	}
	if err := writeXMLMember(w, "ResultsSummary.xml", suite); err != nil {
		return err
	}
	if err := writeXMLMember(w, "ResultsDetails.xml", suite); err != nil {
		return err
	}
	for i, o := range outcomes {
		name := fmt.Sprintf("logs/task_%03d.log", i+1)
		entry, err := w.Create(name)
		if err != nil {
			return err
		}
		if _, err := entry.Write([]byte(o.Output)); err != nil {
			return err
		}
	}

	return w.Close()
}

func writeJSONMember(w *zip.Writer, name string, v interface{}) error {
	entry, err := w.Create(name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = entry.Write(data)
	return err
}

func writeXMLMember(w *zip.Writer, name string, v interface{}) error {
	entry, err := w.Create(name)
	if err != nil {
		return err
	}
	data, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if _, err := entry.Write([]byte(xml.Header)); err != nil {
		return err
	}
	_, err = entry.Write(data)
	return err
}
