package checker

import (
	"context"
	"math"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"go.uber.org/zap"
)

// Checker is the interface that all detection modules must satisfy
type Checker interface {
	// Check analyzes a single URL. It never fails: problems are reported
	// through the score, issues and a details "error" entry.
	Check(ctx context.Context, target string) analysis.ModuleResult

	// Module returns the module this checker reports for
	Module() analysis.Module
}

// scorecard accumulates a module's running score. The total may go negative
// or exceed the module maximum; it is clamped once, in result.
type scorecard struct {
	module  analysis.Module
	total   float64
	issues  []string
	details map[string]any
}

func newScorecard(m analysis.Module) *scorecard {
	return &scorecard{
		module:  m,
		issues:  []string{},
		details: map[string]any{},
	}
}

// add records an issue together with the points it contributes.
func (s *scorecard) add(points float64, issue string) {
	s.total += points
	s.issues = append(s.issues, issue)
}

// adjust changes the running total without reporting an issue.
func (s *scorecard) adjust(points float64) {
	s.total += points
}

func (s *scorecard) set(key string, value any) {
	s.details[key] = value
}

// result rounds the running total half-up and clamps it to the module range.
func (s *scorecard) result() analysis.ModuleResult {
	score := int(math.Floor(s.total + 0.5))
	return analysis.ModuleResult{
		Module:  s.module,
		Score:   analysis.Clamp(score, s.module.MaxScore()),
		Issues:  s.issues,
		Details: s.details,
	}
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
