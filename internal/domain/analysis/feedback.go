package analysis

import (
	"fmt"
	"strings"
	"time"

	sharedErrors "github.com/khanhnv2901/festguard/internal/shared/errors"
)

// Verdict is a user's judgement of a stored analysis.
type Verdict string

const (
	VerdictAccurate   Verdict = "accurate"
	VerdictInaccurate Verdict = "inaccurate"
	VerdictUnsure     Verdict = "unsure"
)

const maxCommentLength = 2000

// ParseVerdict normalizes user input into a Verdict.
func ParseVerdict(s string) (Verdict, error) {
	switch v := Verdict(strings.ToLower(strings.TrimSpace(s))); v {
	case VerdictAccurate, VerdictInaccurate, VerdictUnsure:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", sharedErrors.ErrInvalidVerdict, s)
	}
}

// Feedback records whether a user agreed with an analysis.
type Feedback struct {
	ID         string    `json:"id"`
	AnalysisID string    `json:"analysis_id"`
	Verdict    Verdict   `json:"verdict"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewFeedback validates and builds a feedback entry.
func NewFeedback(analysisID string, verdict Verdict, comment string, now time.Time) (*Feedback, error) {
	if strings.TrimSpace(analysisID) == "" {
		return nil, fmt.Errorf("%w: analysis id is required", sharedErrors.ErrInvalidFeedback)
	}
	if _, err := ParseVerdict(string(verdict)); err != nil {
		return nil, fmt.Errorf("%w: %v", sharedErrors.ErrInvalidFeedback, err)
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > maxCommentLength {
		return nil, fmt.Errorf("%w: comment exceeds %d characters", sharedErrors.ErrInvalidFeedback, maxCommentLength)
	}
	return &Feedback{
		AnalysisID: analysisID,
		Verdict:    verdict,
		Comment:    comment,
		CreatedAt:  now.UTC(),
	}, nil
}
