package analysis

// Module identifies one of the four detection modules.
type Module string

const (
	ModuleURL     Module = "url_analysis"
	ModuleDomain  Module = "domain_analysis"
	ModuleSSL     Module = "ssl_analysis"
	ModuleContent Module = "content_analysis"
)

// Modules lists the detection modules in their fixed reporting order.
var Modules = []Module{ModuleURL, ModuleDomain, ModuleSSL, ModuleContent}

// MaxScore returns the ceiling of the module's score range.
func (m Module) MaxScore() int {
	switch m {
	case ModuleURL:
		return 30
	case ModuleDomain:
		return 25
	case ModuleSSL:
		return 20
	case ModuleContent:
		return 25
	default:
		return 0
	}
}

// Label is the short human name of the module.
func (m Module) Label() string {
	switch m {
	case ModuleURL:
		return "URL"
	case ModuleDomain:
		return "Domain"
	case ModuleSSL:
		return "SSL"
	case ModuleContent:
		return "Content"
	default:
		return string(m)
	}
}

// Valid reports whether m names a known module.
func (m Module) Valid() bool {
	return m.MaxScore() > 0
}

// ModuleResult is the outcome of one detection module. Score is always within
// [0, Module.MaxScore()]; a failed module reports its failure through Issues and
// a Details "error" entry instead of an error value.
type ModuleResult struct {
	Module  Module         `json:"module"`
	Score   int            `json:"score"`
	Issues  []string       `json:"issues"`
	Details map[string]any `json:"details"`
}

// FailureResult builds the result a module reports when it could not complete.
func FailureResult(m Module, score int, kind, issue string) ModuleResult {
	return ModuleResult{
		Module:  m,
		Score:   Clamp(score, m.MaxScore()),
		Issues:  []string{issue},
		Details: map[string]any{"error": kind},
	}
}

// FailureKind returns the Details "error" entry, if any.
func (r ModuleResult) FailureKind() (string, bool) {
	if r.Details == nil {
		return "", false
	}
	kind, ok := r.Details["error"].(string)
	return kind, ok && kind != ""
}

// Normalized returns a copy with the score clamped to the module range and
// nil collections replaced by empty ones.
func (r ModuleResult) Normalized() ModuleResult {
	out := ModuleResult{
		Module:  r.Module,
		Score:   Clamp(r.Score, r.Module.MaxScore()),
		Issues:  append([]string{}, r.Issues...),
		Details: make(map[string]any, len(r.Details)),
	}
	for k, v := range r.Details {
		out.Details[k] = v
	}
	return out
}

// Clamp bounds score to [0, limit].
func Clamp(score, limit int) int {
	if score < 0 {
		return 0
	}
	if score > limit {
		return limit
	}
	return score
}
