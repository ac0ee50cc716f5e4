package engine

import "github.com/khanhnv2901/festguard/internal/domain/analysis"

const (
	deceptiveThreshold  = 70
	suspiciousThreshold = 45
	cautionThreshold    = 25
	clearlySafeBelow    = 10

	// A module scoring above this counts as strongly flagged.
	strongModuleScore = 15
)

// Classify maps a total score to a category and confidence. The bands
// partition [0, 100]; only SUSPICIOUS looks at individual modules.
func Classify(total int, modules []analysis.ModuleResult) (analysis.Category, analysis.Confidence) {
	switch {
	case total >= deceptiveThreshold:
		return analysis.CategoryDeceptive, analysis.ConfidenceHigh
	case total >= suspiciousThreshold:
		if strongModules(modules) >= 2 {
			return analysis.CategorySuspicious, analysis.ConfidenceMedium
		}
		return analysis.CategorySuspicious, analysis.ConfidenceLowMedium
	case total >= cautionThreshold:
		return analysis.CategoryCaution, analysis.ConfidenceLow
	case total < clearlySafeBelow:
		return analysis.CategorySafe, analysis.ConfidenceHigh
	default:
		return analysis.CategorySafe, analysis.ConfidenceMedium
	}
}

func strongModules(modules []analysis.ModuleResult) int {
	n := 0
	for _, m := range modules {
		if m.Score > strongModuleScore {
			n++
		}
	}
	return n
}
