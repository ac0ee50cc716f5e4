package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
)

// CSVHeader lists the history export columns in order.
var CSVHeader = []string{
	"id", "url", "total_score", "category", "confidence",
	"url_score", "domain_score", "ssl_score", "content_score", "created_at",
}

// WriteCSV writes records as CSV with a header row.
func WriteCSV(w io.Writer, records []analysis.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.ID,
			r.URL,
			strconv.Itoa(r.TotalScore),
			string(r.Category),
			string(r.Confidence),
			strconv.Itoa(r.URLScore),
			strconv.Itoa(r.DomainScore),
			strconv.Itoa(r.SSLScore),
			strconv.Itoa(r.ContentScore),
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
