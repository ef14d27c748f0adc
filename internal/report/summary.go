package report

import (
	"html/template"
	"os"

	"github.com/Masterminds/sprig/v3"
	"github.com/netascode/nac-test-go/internal/errs"
	"github.com/netascode/nac-test-go/internal/model"
)

const subsystem = "report"

// Stats is the ready-to-embed statistics record the templating layer
// consumes, keyed exactly as spec'd: total_tests, passed_tests,
// failed_tests, skipped_tests, success_rate, report_path.
type Stats struct {
	TotalTests   int     `json:"total_tests"`
	PassedTests  int     `json:"passed_tests"`
	FailedTests  int     `json:"failed_tests"`
	SkippedTests int     `json:"skipped_tests"`
	SuccessRate  float64 `json:"success_rate"`
	ReportPath   string  `json:"report_path"`
}

// StatsFrom builds a Stats record from a lane or family's TestResults.
func StatsFrom(results model.TestResults, reportPath string) Stats {
	return Stats{
		TotalTests:   results.Total,
		PassedTests:  results.Passed,
		FailedTests:  results.Failed + results.Errored,
		SkippedTests: results.Skipped,
		SuccessRate:  results.SuccessRate(),
		ReportPath:   reportPath,
	}
}

// SummaryGenerator renders per-lane and combined HTML summaries.
type SummaryGenerator struct {
	tmpl *template.Template
}

// NewSummaryGenerator returns a SummaryGenerator using the package's
// built-in dashboard template.
func NewSummaryGenerator() (*SummaryGenerator, error) {
	tmpl, err := template.New("summary").Funcs(sprig.FuncMap()).Parse(summaryTemplate)
	if err != nil {
		return nil, errs.Wrap(errs.ReportingError, "parse summary template", subsystem, "", err)
	}
	return &SummaryGenerator{tmpl: tmpl}, nil
}

// LaneSummary renders one lane's HTML summary to path, returning its Stats.
func (g *SummaryGenerator) LaneSummary(lane string, results model.TestResults, path string) (Stats, error) {
	stats := StatsFrom(results, path)
	if err := g.render(path, dashboardView{Stats: stats}); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// Combined renders the dashboard spanning every family/lane's TestResults,
// keyed by family name (e.g. "pyats", the out-of-scope "robot" peer), to
// path.
func (g *SummaryGenerator) Combined(byFamily map[string]model.TestResults, path string) (Stats, error) {
	total := model.EmptyResults()
	for _, r := range byFamily {
		total = total.Add(r)
	}
	stats := StatsFrom(total, path)

	view := dashboardView{Stats: stats}
	for name, r := range byFamily {
		view.Families = append(view.Families, laneView{Title: name, Stats: StatsFrom(r, "")})
	}

	if err := g.render(path, view); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (g *SummaryGenerator) render(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ReportingError, "create report file", subsystem, path, err)
	}
	defer f.Close()

	if err := g.tmpl.Execute(f, data); err != nil {
		return errs.Wrap(errs.ReportingError, "render report template", subsystem, path, err)
	}
	return nil
}

type laneView struct {
	Title string
	Stats Stats
}

type dashboardView struct {
	Stats    Stats
	Families []laneView
}

const summaryTemplate = `<!DOCTYPE html>
<html>
<head><title>nac-test summary</title></head>
<body>
<h1>{{.Stats.ReportPath}}</h1>
<table>
<tr><th>total</th><th>passed</th><th>failed</th><th>skipped</th><th>success rate</th></tr>
<tr>
  <td>{{.Stats.TotalTests}}</td>
  <td>{{.Stats.PassedTests}}</td>
  <td>{{.Stats.FailedTests}}</td>
  <td>{{.Stats.SkippedTests}}</td>
  <td>{{printf "%.1f" .Stats.SuccessRate}}%</td>
</tr>
</table>
{{if .Families}}
<h2>By family</h2>
<table>
<tr><th>family</th><th>total</th><th>passed</th><th>failed</th><th>skipped</th><th>status</th></tr>
{{range .Families}}
<tr>
  <td>{{.Title | upper}}</td>
  <td>{{.Stats.TotalTests}}</td>
  <td>{{.Stats.PassedTests}}</td>
  <td>{{.Stats.FailedTests}}</td>
  <td>{{.Stats.SkippedTests}}</td>
  <td>{{ternary "FAIL" "PASS" (gt .Stats.FailedTests 0)}}</td>
</tr>
{{end}}
</table>
{{end}}
</body>
</html>
`
