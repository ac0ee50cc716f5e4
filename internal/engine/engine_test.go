package engine

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubChecker struct {
	module  analysis.Module
	score   int
	issues  []string
	block   <-chan struct{}
	panics  bool
	started atomic.Bool
}

func (s *stubChecker) Module() analysis.Module { return s.module }

func (s *stubChecker) Check(ctx context.Context, target string) analysis.ModuleResult {
	s.started.Store(true)
	if s.panics {
		panic("unexpected nil pointer")
	}
	if s.block != nil {
		<-s.block
	}
	return analysis.ModuleResult{Module: s.module, Score: s.score, Issues: s.issues}
}

func stubs(url, domain, ssl, content int) Checkers {
	return Checkers{
		URL:     &stubChecker{module: analysis.ModuleURL, score: url},
		Domain:  &stubChecker{module: analysis.ModuleDomain, score: domain},
		SSL:     &stubChecker{module: analysis.ModuleSSL, score: ssl},
		Content: &stubChecker{module: analysis.ModuleContent, score: content},
	}
}

func newTestEngine(t *testing.T, c Checkers, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	e, err := New(c, opts...)
	require.NoError(t, err)
	return e
}

func TestNew_RejectsMissingOrMisplacedCheckers(t *testing.T) {
	c := stubs(0, 0, 0, 0)
	c.SSL = nil
	_, err := New(c)
	assert.Error(t, err)

	c = stubs(0, 0, 0, 0)
	c.Domain, c.Content = c.Content, c.Domain
	_, err = New(c)
	assert.Error(t, err)
}

func TestAnalyze_DeceptiveTotal(t *testing.T) {
	e := newTestEngine(t, stubs(30, 25, 10, 7))

	result := e.Analyze(context.Background(), "https://legit-looking.tk")

	assert.Equal(t, 72, result.TotalScore())
	assert.Equal(t, analysis.CategoryDeceptive, result.Category())
	assert.Equal(t, analysis.ConfidenceHigh, result.Confidence())
	assert.Contains(t, result.Recommendations(), "DO NOT enter any personal information on this website")
	assert.False(t, result.Partial())
}

func TestAnalyze_SafeTotal(t *testing.T) {
	e := newTestEngine(t, stubs(3, 0, 5, 0))

	result := e.Analyze(context.Background(), "https://example.com")

	assert.Equal(t, 8, result.TotalScore())
	assert.Equal(t, analysis.CategorySafe, result.Category())
	assert.Equal(t, analysis.ConfidenceHigh, result.Confidence())
}

func TestAnalyze_ModuleOrderAndIssues(t *testing.T) {
	c := Checkers{
		URL:     &stubChecker{module: analysis.ModuleURL, score: 16, issues: []string{"IP address used instead of domain name"}},
		Domain:  &stubChecker{module: analysis.ModuleDomain, score: 20, issues: []string{"Very new domain (only 3 days old)"}},
		SSL:     &stubChecker{module: analysis.ModuleSSL, score: 15, issues: []string{"Website does not use HTTPS (insecure connection)"}},
		Content: &stubChecker{module: analysis.ModuleContent, score: 4, issues: []string{"Multiple WhatsApp sharing prompts (4 mentions)"}},
	}
	result := newTestEngine(t, c).Analyze(context.Background(), "http://10.0.0.1/offer")

	assert.Equal(t, []string{
		"IP address used instead of domain name",
		"Very new domain (only 3 days old)",
		"Website does not use HTTPS (insecure connection)",
		"Multiple WhatsApp sharing prompts (4 mentions)",
	}, result.AllIssues())

	// 55 with two modules above 15
	assert.Equal(t, analysis.CategorySuspicious, result.Category())
	assert.Equal(t, analysis.ConfidenceMedium, result.Confidence())

	recs := result.Recommendations()
	require.Len(t, recs, 4+3)
	assert.Equal(t, "Insecure connection detected: avoid entering sensitive data", recs[4])
	assert.Equal(t, "Very new domain detected: verify legitimacy carefully", recs[5])
	assert.Equal(t, "Viral sharing tactics detected: likely a seasonal scam", recs[6])
}

func TestAnalyze_ClampsOutOfRangeModuleScores(t *testing.T) {
	e := newTestEngine(t, stubs(99, -4, 40, 25))

	result := e.Analyze(context.Background(), "https://example.com")

	scores := result.ModuleScores()
	assert.Equal(t, 30, scores[analysis.ModuleURL])
	assert.Equal(t, 0, scores[analysis.ModuleDomain])
	assert.Equal(t, 20, scores[analysis.ModuleSSL])
	assert.Equal(t, 75, result.TotalScore())
}

func TestAnalyze_PanicUsesWorstFailureScore(t *testing.T) {
	c := stubs(0, 0, 0, 0)
	c.SSL = &stubChecker{module: analysis.ModuleSSL, panics: true}
	c.Content = &stubChecker{module: analysis.ModuleContent, panics: true}

	result := newTestEngine(t, c).Analyze(context.Background(), "https://example.com")

	ssl, ok := result.Module(analysis.ModuleSSL)
	require.True(t, ok)
	assert.Equal(t, 15, ssl.Score)
	kind, _ := ssl.FailureKind()
	assert.Equal(t, failureInternal, kind)

	content, _ := result.Module(analysis.ModuleContent)
	assert.Equal(t, 8, content.Score)
	assert.Equal(t, 23, result.TotalScore())
	assert.False(t, result.Partial())
}

func TestAnalyze_DeadlineYieldsPartialResult(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	c := stubs(12, 0, 0, 4)
	c.Domain = &stubChecker{module: analysis.ModuleDomain, score: 25, block: release}
	c.SSL = &stubChecker{module: analysis.ModuleSSL, score: 20, block: release}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// No test logger: the blocked modules finish after the test returns.
	e, err := New(c)
	require.NoError(t, err)

	start := time.Now()
	result := e.Analyze(ctx, "https://slow.example")

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, result.Partial())

	domain, _ := result.Module(analysis.ModuleDomain)
	assert.Equal(t, 8, domain.Score)
	require.Len(t, domain.Issues, 1)
	assert.True(t, strings.Contains(domain.Issues[0], "did not finish"))

	ssl, _ := result.Module(analysis.ModuleSSL)
	assert.Equal(t, 5, ssl.Score)

	content, _ := result.Module(analysis.ModuleContent)
	assert.Equal(t, 4, content.Score, "finished modules keep their own score")
	assert.Equal(t, 12+8+5+4, result.TotalScore())
}

func TestAnalyze_ModulesRunConcurrently(t *testing.T) {
	release := make(chan struct{})
	content := &stubChecker{module: analysis.ModuleContent, score: 3}
	c := stubs(0, 0, 0, 0)
	c.Domain = &stubChecker{module: analysis.ModuleDomain, score: 5, block: release}
	c.Content = content

	done := make(chan *analysis.Result, 1)
	e := newTestEngine(t, c)
	go func() { done <- e.Analyze(context.Background(), "https://example.com") }()

	// Content must start while Domain is still blocked.
	assert.Eventually(t, content.started.Load, time.Second, 5*time.Millisecond)
	close(release)

	select {
	case result := <-done:
		assert.Equal(t, 8, result.TotalScore())
	case <-time.After(2 * time.Second):
		t.Fatal("analysis did not complete after the slow module was released")
	}
}

func TestAnalyze_UsesClock(t *testing.T) {
	fixed := time.Date(2025, time.October, 20, 10, 0, 0, 0, time.UTC)
	e := newTestEngine(t, stubs(0, 0, 0, 0), WithClock(func() time.Time { return fixed }))

	result := e.Analyze(context.Background(), "https://example.com")

	assert.Equal(t, fixed, result.AnalyzedAt())
	assert.Equal(t, time.Duration(0), result.Duration())
}

func TestAnalyze_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	c := stubs(30, 25, 0, 20)
	c.SSL = &stubChecker{module: analysis.ModuleSSL, panics: true}
	e := newTestEngine(t, c, WithMetrics(metrics))
	e.Analyze(context.Background(), "https://example.com")

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			if c := m.GetCounter(); c != nil {
				byName[f.GetName()] += c.GetValue()
			}
			if h := m.GetHistogram(); h != nil {
				byName[f.GetName()] += float64(h.GetSampleCount())
			}
		}
	}
	assert.Equal(t, 1.0, byName["festguard_analyses_total"])
	assert.Equal(t, 1.0, byName["festguard_module_failures_total"])
	assert.Equal(t, 1.0, byName["festguard_analysis_duration_seconds"])
	assert.Equal(t, 4.0, byName["festguard_module_score"])

	_, err = NewMetrics(reg)
	assert.Error(t, err, "registering twice must fail")
}
