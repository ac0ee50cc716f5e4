package analysis

import (
	"encoding/json"
	"time"

	"github.com/khanhnv2901/festguard/internal/shared/constants"
)

// Category is the coarse risk verdict of an analysis.
type Category string

const (
	CategorySafe       Category = "SAFE"
	CategoryCaution    Category = "CAUTION"
	CategorySuspicious Category = "SUSPICIOUS"
	CategoryDeceptive  Category = "DECEPTIVE"
)

// Confidence qualifies how certain the verdict is.
type Confidence string

const (
	ConfidenceLow       Confidence = "Low"
	ConfidenceLowMedium Confidence = "Low-Medium"
	ConfidenceMedium    Confidence = "Medium"
	ConfidenceHigh      Confidence = "High"
)

// Result is the aggregate outcome of analyzing one URL. It is immutable once built.
type Result struct {
	url             string
	totalScore      int
	category        Category
	confidence      Confidence
	modules         []ModuleResult
	recommendations []string
	partial         bool
	analyzedAt      time.Time
	duration        time.Duration
}

// ResultParams carries everything the engine has assembled for a Result.
type ResultParams struct {
	URL             string
	Modules         []ModuleResult
	Category        Category
	Confidence      Confidence
	Recommendations []string
	Partial         bool
	AnalyzedAt      time.Time
	Duration        time.Duration
}

// NewResult builds a Result. Module results are normalized and the total score
// is derived from them so that it always equals the capped sum.
func NewResult(p ResultParams) *Result {
	modules := make([]ModuleResult, 0, len(p.Modules))
	for _, m := range p.Modules {
		modules = append(modules, m.Normalized())
	}
	return &Result{
		url:             p.URL,
		totalScore:      TotalScore(modules),
		category:        p.Category,
		confidence:      p.Confidence,
		modules:         modules,
		recommendations: append([]string{}, p.Recommendations...),
		partial:         p.Partial,
		analyzedAt:      p.AnalyzedAt,
		duration:        p.Duration,
	}
}

// TotalScore sums module scores and caps the sum at 100.
func TotalScore(modules []ModuleResult) int {
	sum := 0
	for _, m := range modules {
		sum += m.Score
	}
	if sum > constants.MaxTotalScore {
		return constants.MaxTotalScore
	}
	return sum
}

// Getters

func (r *Result) URL() string               { return r.url }
func (r *Result) TotalScore() int           { return r.totalScore }
func (r *Result) Category() Category        { return r.category }
func (r *Result) Confidence() Confidence    { return r.confidence }
func (r *Result) Partial() bool             { return r.partial }
func (r *Result) AnalyzedAt() time.Time     { return r.analyzedAt }
func (r *Result) Duration() time.Duration   { return r.duration }
func (r *Result) Recommendations() []string { return append([]string{}, r.recommendations...) }

// Modules returns the module results in fixed reporting order.
func (r *Result) Modules() []ModuleResult {
	out := make([]ModuleResult, len(r.modules))
	for i, m := range r.modules {
		out[i] = m.Normalized()
	}
	return out
}

// Module returns the result of a single module.
func (r *Result) Module(m Module) (ModuleResult, bool) {
	for _, res := range r.modules {
		if res.Module == m {
			return res.Normalized(), true
		}
	}
	return ModuleResult{}, false
}

// ModuleScores maps each module to its score.
func (r *Result) ModuleScores() map[Module]int {
	scores := make(map[Module]int, len(r.modules))
	for _, m := range r.modules {
		scores[m.Module] = m.Score
	}
	return scores
}

// AllIssues concatenates module issues in module order.
func (r *Result) AllIssues() []string {
	return CollectIssues(r.modules)
}

// CollectIssues concatenates issues of the given modules in order.
func CollectIssues(modules []ModuleResult) []string {
	issues := make([]string, 0)
	for _, m := range modules {
		issues = append(issues, m.Issues...)
	}
	return issues
}

type resultJSON struct {
	URL             string                  `json:"url"`
	TotalScore      int                     `json:"total_score"`
	Category        Category                `json:"category"`
	Confidence      Confidence              `json:"confidence"`
	ModuleScores    map[Module]int          `json:"module_scores"`
	Modules         map[Module]ModuleResult `json:"modules"`
	AllIssues       []string                `json:"all_issues"`
	Recommendations []string                `json:"recommendations"`
	Partial         bool                    `json:"partial,omitempty"`
	AnalyzedAt      time.Time               `json:"analyzed_at"`
	DurationMillis  int64                   `json:"duration_ms"`
}

// MarshalJSON renders the result in its public wire shape.
func (r *Result) MarshalJSON() ([]byte, error) {
	modules := make(map[Module]ModuleResult, len(r.modules))
	for _, m := range r.modules {
		modules[m.Module] = m
	}
	return json.Marshal(resultJSON{
		URL:             r.url,
		TotalScore:      r.totalScore,
		Category:        r.category,
		Confidence:      r.confidence,
		ModuleScores:    r.ModuleScores(),
		Modules:         modules,
		AllIssues:       r.AllIssues(),
		Recommendations: r.Recommendations(),
		Partial:         r.partial,
		AnalyzedAt:      r.analyzedAt,
		DurationMillis:  r.duration.Milliseconds(),
	})
}
