package analysis

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	sharedErrors "github.com/khanhnv2901/festguard/internal/shared/errors"
)

// Record is the persisted, flattened form of a Result.
type Record struct {
	ID              string     `json:"id"`
	URL             string     `json:"url"`
	TotalScore      int        `json:"total_score"`
	Category        Category   `json:"category"`
	Confidence      Confidence `json:"confidence"`
	URLScore        int        `json:"url_score"`
	DomainScore     int        `json:"domain_score"`
	SSLScore        int        `json:"ssl_score"`
	ContentScore    int        `json:"content_score"`
	Issues          []string   `json:"issues"`
	Recommendations []string   `json:"recommendations"`
	Partial         bool       `json:"partial,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewRecord flattens a result for storage. The ID is assigned by the repository.
func NewRecord(r *Result) Record {
	scores := r.ModuleScores()
	createdAt := r.AnalyzedAt()
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return Record{
		URL:             r.URL(),
		TotalScore:      r.TotalScore(),
		Category:        r.Category(),
		Confidence:      r.Confidence(),
		URLScore:        scores[ModuleURL],
		DomainScore:     scores[ModuleDomain],
		SSLScore:        scores[ModuleSSL],
		ContentScore:    scores[ModuleContent],
		Issues:          r.AllIssues(),
		Recommendations: r.Recommendations(),
		Partial:         r.Partial(),
		CreatedAt:       createdAt.UTC(),
	}
}

// ValidateURL rejects input that cannot be analyzed: it must be absolute with a host.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sharedErrors.ErrEmptyURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", sharedErrors.ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return fmt.Errorf("%w: %q must include a scheme and host (e.g. https://example.com)", sharedErrors.ErrInvalidURL, raw)
	}
	return nil
}
