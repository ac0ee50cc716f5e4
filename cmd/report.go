package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"github.com/khanhnv2901/festguard/internal/infrastructure/export"
	consts "github.com/khanhnv2901/festguard/internal/shared/constants"
	"github.com/spf13/cobra"
)

// reportWriters maps each --format to its renderer and default extension.
var reportWriters = map[string]struct {
	ext   string
	write func(io.Writer, analysis.Record, []analysis.Feedback, time.Time) error
}{
	"pdf":  {".pdf", export.WritePDF},
	"md":   {".md", export.WriteMarkdown},
	"json": {".json", writeJSONReport},
}

var reportCmd = &cobra.Command{
	Use:   "report <analysis-id>",
	Short: "Generate a report (PDF, Markdown or JSON) for a stored analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		format = strings.ToLower(strings.TrimSpace(format))
		renderer, ok := reportWriters[format]
		if !ok {
			return fmt.Errorf("invalid format: %s (must be pdf, md or json)", format)
		}

		services, err := appCtx.Container()
		if err != nil {
			return err
		}
		record, feedback, err := services.AnalysisService.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if outPath == "-" {
			return renderer.write(cmd.OutOrStdout(), *record, feedback, time.Now())
		}
		if outPath == "" {
			outPath = defaultReportName(record.ID, renderer.ext)
		}

		f, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, consts.DefaultFilePerm)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		if err := renderer.write(f, *record, feedback, time.Now()); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to generate report: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Report generated: %s\n", outPath)
		fmt.Fprintf(out, "Format: %s\n", format)
		fmt.Fprintf(out, "Verdict: %s (%d/100)\n", formatCategory(record.Category), record.TotalScore)
		return nil
	},
}

func init() {
	reportCmd.Flags().String("format", "pdf", "report format: pdf, md or json")
	reportCmd.Flags().StringP("out", "o", "", "output file (default festguard-report-<id>.<ext>, - for stdout)")
	rootCmd.AddCommand(reportCmd)
}

func defaultReportName(id, ext string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return "festguard-report-" + id + ext
}

func writeJSONReport(w io.Writer, record analysis.Record, feedback []analysis.Feedback, generatedAt time.Time) error {
	if feedback == nil {
		feedback = []analysis.Feedback{}
	}
	return writeJSONOutput(w, struct {
		Analysis    analysis.Record     `json:"analysis"`
		Feedback    []analysis.Feedback `json:"feedback"`
		GeneratedAt time.Time           `json:"generated_at"`
	}{record, feedback, generatedAt.UTC()})
}
