package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// PrintConsole renders a compact results table to out, one row per named
// lane or family.
func PrintConsole(out io.Writer, rows map[string]Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("LANE"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("TOTAL"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("PASSED"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("FAILED"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("SKIPPED"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("SUCCESS"),
	})

	for name, s := range rows {
		t.AppendRow(table.Row{
			text.Colors{text.FgHiYellow, text.Bold}.Sprint(name),
			s.TotalTests,
			text.Colors{text.FgGreen}.Sprint(s.PassedTests),
			text.Colors{text.FgRed}.Sprint(s.FailedTests),
			text.Colors{text.FgCyan}.Sprint(s.SkippedTests),
			formatRate(s.SuccessRate),
		})
	}

	t.Render()
}

func formatRate(rate float64) string {
	return text.Colors{text.FgHiWhite}.Sprint(fmt.Sprintf("%.1f%%", rate))
}
