package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
)

const (
	jsonPrefix = ""
	jsonIndent = "  "
)

// printResult renders one analysis for a terminal.
func printResult(w io.Writer, id string, r *analysis.Result) {
	fmt.Fprintf(w, "%s %s  %s (score %d/100, confidence %s)\n",
		categoryIcon(r.Category()), r.URL(), formatCategory(r.Category()), r.TotalScore(), r.Confidence())
	if id != "" {
		fmt.Fprintf(w, "  %s %s\n", colorDim("id:"), id)
	}
	if r.Partial() {
		fmt.Fprintf(w, "  %s\n", colorWarn("partial result: some checks did not finish in time"))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, m := range r.Modules() {
		fmt.Fprintf(tw, "  %s\t%d/%d\n", m.Module.Label(), m.Score, m.Module.MaxScore())
	}
	_ = tw.Flush()

	printList(w, "Issues", r.AllIssues())
	printList(w, "Recommendations", r.Recommendations())
	fmt.Fprintln(w)
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "    - %s\n", item)
	}
}

// printRecords renders stored analyses as a table, newest first.
func printRecords(w io.Writer, records []analysis.Record) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tCATEGORY\tSCORE\tURL")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Category, r.TotalScore, truncate(r.URL, 60))
	}
	_ = tw.Flush()
}

func printStatistics(w io.Writer, overall analysis.Statistics, daily []analysis.DailyStatistic) {
	fmt.Fprintf(w, "Total scans:        %d\n", overall.TotalScans)
	fmt.Fprintf(w, "Safe:               %d\n", overall.Safe)
	fmt.Fprintf(w, "Suspicious/caution: %d\n", overall.Suspicious)
	fmt.Fprintf(w, "Deceptive:          %d\n", overall.Deceptive)
	fmt.Fprintf(w, "Average score:      %.1f\n", overall.AverageScore)
	if len(daily) == 0 {
		return
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSCANS\tSAFE\tSUSPICIOUS\tDECEPTIVE\tAVG")
	for _, d := range daily {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.1f\n", d.Date, d.TotalScans, d.Safe, d.Suspicious, d.Deceptive, d.AverageScore)
	}
	_ = tw.Flush()
}

func writeJSONOutput(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent(jsonPrefix, jsonIndent)
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	return string([]rune(s)[:max-1]) + "…"
}

func formatDurationLabel(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
