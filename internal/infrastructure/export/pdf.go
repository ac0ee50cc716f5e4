package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/khanhnv2901/festguard/internal/domain/analysis"
)

// Page break threshold in mm from the top of an A4 page.
const pageBreakY = 270

// categoryFill is the verdict banner colour per category.
var categoryFill = map[analysis.Category][3]int{
	analysis.CategorySafe:       {212, 237, 218},
	analysis.CategoryCaution:    {255, 243, 205},
	analysis.CategorySuspicious: {255, 224, 178},
	analysis.CategoryDeceptive:  {248, 215, 218},
}

// WritePDF renders a one-analysis report with its feedback.
func WritePDF(w io.Writer, record analysis.Record, feedback []analysis.Feedback, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("FestGuard analysis report", true)
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "FestGuard Analysis Report", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf("URL: %s", record.URL)), "", "", false)
	pdf.CellFormat(0, 6, fmt.Sprintf("Analysis ID: %s", record.ID), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Analyzed: %s", record.CreatedAt.UTC().Format(time.RFC1123)), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", generatedAt.UTC().Format(time.RFC1123)), "", 1, "", false, 0, "")
	pdf.Ln(4)

	// Verdict banner
	fill, ok := categoryFill[record.Category]
	if !ok {
		fill = [3]int{240, 240, 240}
	}
	pdf.SetFillColor(fill[0], fill[1], fill[2])
	pdf.SetFont("Arial", "B", 13)
	verdict := fmt.Sprintf("%s  |  Risk score %d/100  |  Confidence: %s", record.Category, record.TotalScore, record.Confidence)
	pdf.CellFormat(0, 10, verdict, "1", 1, "C", true, 0, "")
	if record.Partial {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 6, "Some modules did not finish in time; their timeout scores were used.", "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	// Module scores
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Module Scores", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, row := range newReportData(record, feedback, generatedAt).Modules {
		pdf.CellFormat(60, 6, row.Label, "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%d / %d", row.Score, row.Max), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	writeList(pdf, tr, "Detected Issues", record.Issues, "No issues detected.")
	writeList(pdf, tr, "Recommendations", record.Recommendations, "")

	if len(feedback) > 0 {
		lines := make([]string, 0, len(feedback))
		for _, fb := range feedback {
			line := fmt.Sprintf("%s (%s)", fb.Verdict, fb.CreatedAt.UTC().Format("2006-01-02"))
			if c := strings.TrimSpace(fb.Comment); c != "" {
				line += ": " + c
			}
			lines = append(lines, line)
		}
		writeList(pdf, tr, "User Feedback", lines, "")
	}

	pdf.SetFont("Arial", "I", 8)
	pdf.MultiCell(0, 4, "This report is a heuristic assessment and does not guarantee that a website is safe or malicious.", "", "", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}
	return nil
}

func writeList(pdf *gofpdf.Fpdf, tr func(string) string, title string, items []string, empty string) {
	if len(items) == 0 && empty == "" {
		return
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if len(items) == 0 {
		pdf.MultiCell(0, 5, empty, "", "", false)
	}
	for _, item := range items {
		if pdf.GetY() > pageBreakY {
			pdf.AddPage()
		}
		pdf.MultiCell(0, 5, tr("- "+item), "", "", false)
	}
	pdf.Ln(3)
}
