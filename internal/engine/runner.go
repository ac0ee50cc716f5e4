package engine

import (
	"context"
	"sync"
	"time"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"golang.org/x/time/rate"
)

// Analyzer is the part of Engine the Runner depends on.
type Analyzer interface {
	Analyze(ctx context.Context, target string) *analysis.Result
}

// ResultFunc is called once per URL as soon as its analysis is complete.
// It may be called from several goroutines at once.
type ResultFunc func(index int, target string, result *analysis.Result, duration time.Duration)

// Runner analyzes many URLs with bounded concurrency and a global rate limit
type Runner struct {
	Concurrency int           // Maximum number of concurrent analyses
	RateLimit   int           // Analyses started per second (global); 0 disables
	Timeout     time.Duration // Deadline for each analysis; 0 disables
}

// Run analyzes every target and returns results in input order.
func (r *Runner) Run(ctx context.Context, analyzer Analyzer, targets []string, onResult ResultFunc) []*analysis.Result {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var limiter *rate.Limiter
	if r.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.RateLimit), r.RateLimit)
	}

	// Worker pool
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]*analysis.Result, len(targets))

	for i, target := range targets {
		wg.Add(1)
		go func(i int, t string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			// A cancelled wait still analyzes; the engine turns the expired
			// context into a partial result.
			if limiter != nil {
				_ = limiter.Wait(ctx)
			}

			runCtx := ctx
			if r.Timeout > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
				defer cancel()
			}

			start := time.Now()
			result := analyzer.Analyze(runCtx, t)
			if onResult != nil {
				onResult(i, t, result, time.Since(start))
			}
			results[i] = result
		}(i, target)
	}

	wg.Wait()
	return results
}
