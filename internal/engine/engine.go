package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/khanhnv2901/festguard/internal/checker"
	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	sharedErrors "github.com/khanhnv2901/festguard/internal/shared/errors"
	"go.uber.org/zap"
)

const (
	failureInternal = "internal_error"
	failureDeadline = "deadline_exceeded"
)

// Scores a module contributes when its checker panics. Each is the module's
// worst documented failure score.
var panicScores = map[analysis.Module]int{
	analysis.ModuleURL:     5,
	analysis.ModuleDomain:  8,
	analysis.ModuleSSL:     15,
	analysis.ModuleContent: 8,
}

// Scores a module contributes when the caller's deadline expires first.
// The URL module does no I/O and is always waited for.
var deadlineScores = map[analysis.Module]int{
	analysis.ModuleDomain:  8,
	analysis.ModuleSSL:     5,
	analysis.ModuleContent: 3,
}

// Checkers holds one checker per detection module.
type Checkers struct {
	URL     checker.Checker
	Domain  checker.Checker
	SSL     checker.Checker
	Content checker.Checker
}

func (c Checkers) ordered() []checker.Checker {
	return []checker.Checker{c.URL, c.Domain, c.SSL, c.Content}
}

// Engine runs the four detection modules against a URL and turns their
// scores into a classified, explained result.
type Engine struct {
	checkers []checker.Checker
	logger   *zap.Logger
	metrics  *Metrics
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records every analysis on m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New builds an Engine. Every checker must be present and report the module
// of the slot it fills.
func New(c Checkers, opts ...Option) (*Engine, error) {
	checkers := c.ordered()
	for i, ch := range checkers {
		want := analysis.Modules[i]
		if ch == nil {
			return nil, fmt.Errorf("%w: missing checker for %s", sharedErrors.ErrValidation, want)
		}
		if got := ch.Module(); got != want {
			return nil, fmt.Errorf("%w: checker for %s reports module %s", sharedErrors.ErrValidation, want, got)
		}
	}

	e := &Engine{
		checkers: checkers,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Analyze runs all modules concurrently and always returns a complete result.
// If ctx expires before a network module finishes, that module contributes
// its timeout score and the result is marked partial.
func (e *Engine) Analyze(ctx context.Context, target string) *analysis.Result {
	start := e.now()
	logger := e.logger.With(zap.String("url", target))

	channels := make([]chan analysis.ModuleResult, len(e.checkers))
	for i, c := range e.checkers {
		ch := make(chan analysis.ModuleResult, 1)
		channels[i] = ch
		go e.run(ctx, logger, c, target, ch)
	}

	modules := make([]analysis.ModuleResult, len(e.checkers))
	partial := false
	for i, ch := range channels {
		module := analysis.Modules[i]
		score, blocking := deadlineScores[module]
		if !blocking {
			modules[i] = <-ch
			continue
		}

		// Prefer a result that is already there over the expired deadline.
		select {
		case res := <-ch:
			modules[i] = res
			continue
		default:
		}

		select {
		case res := <-ch:
			modules[i] = res
		case <-ctx.Done():
			logger.Warn("module did not finish before deadline",
				zap.String("module", string(module)),
				zap.Error(ctx.Err()))
			modules[i] = analysis.FailureResult(module, score, failureDeadline,
				fmt.Sprintf("%s analysis did not finish in time", module.Label()))
			partial = true
		}
	}

	for i := range modules {
		modules[i] = modules[i].Normalized()
	}

	total := analysis.TotalScore(modules)
	category, confidence := Classify(total, modules)
	result := analysis.NewResult(analysis.ResultParams{
		URL:             target,
		Modules:         modules,
		Category:        category,
		Confidence:      confidence,
		Recommendations: Recommend(category, analysis.CollectIssues(modules)),
		Partial:         partial,
		AnalyzedAt:      start.UTC(),
		Duration:        e.now().Sub(start),
	})

	logger.Info("analysis complete",
		zap.Int("total_score", result.TotalScore()),
		zap.String("category", string(result.Category())),
		zap.Bool("partial", result.Partial()),
		zap.Duration("duration", result.Duration()))
	e.metrics.observe(result)
	return result
}

// run executes one checker and always delivers exactly one result on out.
func (e *Engine) run(ctx context.Context, logger *zap.Logger, c checker.Checker, target string, out chan<- analysis.ModuleResult) {
	module := c.Module()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("module panicked",
				zap.String("module", string(module)),
				zap.Any("panic", r))
			out <- analysis.FailureResult(module, panicScores[module], failureInternal,
				fmt.Sprintf("%s analysis failed unexpectedly", module.Label()))
		}
	}()

	logger.Debug("module started", zap.String("module", string(module)))
	res := c.Check(ctx, target)
	res.Module = module
	logger.Debug("module finished",
		zap.String("module", string(module)),
		zap.Int("score", res.Score))
	out <- res
}
