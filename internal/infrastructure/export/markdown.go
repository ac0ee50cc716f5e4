package export

import (
	"embed"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
)

//go:embed templates/report.md
var templateFS embed.FS

var markdownTemplate = template.Must(
	template.New("report.md").Funcs(template.FuncMap{
		"formatTime": func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04 MST") },
	}).ParseFS(templateFS, "templates/report.md"),
)

type moduleRow struct {
	Label string
	Score int
	Max   int
}

type reportData struct {
	Record      analysis.Record
	Feedback    []analysis.Feedback
	Modules     []moduleRow
	GeneratedAt time.Time
}

func newReportData(record analysis.Record, feedback []analysis.Feedback, generatedAt time.Time) reportData {
	rows := make([]moduleRow, 0, 4)
	for _, m := range []struct {
		module analysis.Module
		score  int
	}{
		{analysis.ModuleURL, record.URLScore},
		{analysis.ModuleDomain, record.DomainScore},
		{analysis.ModuleSSL, record.SSLScore},
		{analysis.ModuleContent, record.ContentScore},
	} {
		rows = append(rows, moduleRow{Label: m.module.Label(), Score: m.score, Max: m.module.MaxScore()})
	}
	return reportData{Record: record, Feedback: feedback, Modules: rows, GeneratedAt: generatedAt}
}

// WriteMarkdown renders the same report as WritePDF in Markdown.
func WriteMarkdown(w io.Writer, record analysis.Record, feedback []analysis.Feedback, generatedAt time.Time) error {
	if err := markdownTemplate.Execute(w, newReportData(record, feedback, generatedAt)); err != nil {
		return fmt.Errorf("render markdown report: %w", err)
	}
	return nil
}
