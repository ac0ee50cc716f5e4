package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"github.com/khanhnv2901/festguard/internal/engine"
	"github.com/khanhnv2901/festguard/internal/infrastructure/persistence/json"
	sharedErrors "github.com/khanhnv2901/festguard/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeAnalyzer struct {
	mu       sync.Mutex
	targets  []string
	deadline bool
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, target string) *analysis.Result {
	f.mu.Lock()
	f.targets = append(f.targets, target)
	_, f.deadline = ctx.Deadline()
	f.mu.Unlock()

	modules := []analysis.ModuleResult{
		{Module: analysis.ModuleURL, Score: 15, Issues: []string{"IP address used instead of domain name"}},
		{Module: analysis.ModuleDomain, Score: 8, Issues: []string{"Could not retrieve domain registration information"}},
		{Module: analysis.ModuleSSL, Score: 15, Issues: []string{"Website does not use HTTPS (insecure connection)"}},
		{Module: analysis.ModuleContent},
	}
	return analysis.NewResult(analysis.ResultParams{
		URL:             target,
		Modules:         modules,
		Category:        analysis.CategoryCaution,
		Confidence:      analysis.ConfidenceLow,
		Recommendations: []string{"Be cautious when interacting with this website"},
		AnalyzedAt:      time.Date(2025, time.October, 25, 9, 0, 0, 0, time.UTC),
	})
}

// failingRepo wraps a real repository and fails every Save.
type failingRepo struct {
	analysis.Repository
}

func (failingRepo) Save(context.Context, analysis.Record) (string, error) {
	return "", errors.New("disk full")
}

func newService(t *testing.T, cfg Config) (*Service, *fakeAnalyzer, analysis.Repository) {
	t.Helper()
	repo, err := json.NewRepository(t.TempDir())
	require.NoError(t, err)
	fake := &fakeAnalyzer{}
	return NewService(fake, repo, cfg, zaptest.NewLogger(t)), fake, repo
}

func TestService_AnalyzeStoresResult(t *testing.T) {
	svc, fake, repo := newService(t, Config{Deadline: time.Minute})
	ctx := context.Background()

	id, result, err := svc.Analyze(ctx, "  http://192.168.1.5/free-prize-claim-now ")
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, 38, result.TotalScore())
	assert.Equal(t, []string{"http://192.168.1.5/free-prize-claim-now"}, fake.targets)
	assert.True(t, fake.deadline, "service deadline is applied")

	rec, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 38, rec.TotalScore)
	assert.Equal(t, 15, rec.URLScore)
	assert.Equal(t, 8, rec.DomainScore)
	assert.Equal(t, 15, rec.SSLScore)
	assert.Len(t, rec.Issues, 3)
}

func TestService_AnalyzeRejectsInvalidURL(t *testing.T) {
	svc, fake, _ := newService(t, Config{})

	tests := []struct {
		input string
		want  error
	}{
		{"", sharedErrors.ErrEmptyURL},
		{"   ", sharedErrors.ErrEmptyURL},
		{"example.com", sharedErrors.ErrInvalidURL},
		{"https://", sharedErrors.ErrInvalidURL},
	}
	for _, tt := range tests {
		_, result, err := svc.Analyze(context.Background(), tt.input)
		assert.ErrorIs(t, err, tt.want, "input %q", tt.input)
		assert.Nil(t, result)
	}
	assert.Empty(t, fake.targets, "engine is never called for invalid input")
}

func TestService_StorageFailureKeepsResult(t *testing.T) {
	repo, err := json.NewRepository(t.TempDir())
	require.NoError(t, err)
	svc := NewService(&fakeAnalyzer{}, failingRepo{repo}, Config{}, zaptest.NewLogger(t))

	id, result, err := svc.Analyze(context.Background(), "https://example.com")
	assert.Empty(t, id)
	require.NotNil(t, result)
	assert.Equal(t, analysis.CategoryCaution, result.Category())
	assert.ErrorIs(t, err, sharedErrors.ErrRepositoryOperation)
}

func TestService_EvaluateDoesNotStore(t *testing.T) {
	svc, _, repo := newService(t, Config{})
	ctx := context.Background()

	result, err := svc.Evaluate(ctx, "https://example.com")
	require.NoError(t, err)
	assert.NotNil(t, result)

	history, err := repo.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestService_AnalyzeBatch(t *testing.T) {
	svc, _, repo := newService(t, Config{Batch: engine.Runner{Concurrency: 2}})
	ctx := context.Background()

	var mu sync.Mutex
	var reported []int
	items, err := svc.AnalyzeBatch(ctx, []string{"https://a.example", "not a url", "https://b.example"}, true,
		func(item BatchItem) {
			mu.Lock()
			reported = append(reported, item.Index)
			mu.Unlock()
		})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.NotEmpty(t, items[0].ID)
	assert.Equal(t, "https://a.example", items[0].Result.URL())
	assert.ErrorIs(t, items[1].Err, sharedErrors.ErrInvalidURL)
	assert.Nil(t, items[1].Result)
	assert.Equal(t, "https://b.example", items[2].Result.URL())
	assert.ElementsMatch(t, []int{0, 1, 2}, reported)

	history, err := repo.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestService_AnalyzeBatchWithoutStore(t *testing.T) {
	svc, _, _ := newService(t, Config{Batch: engine.Runner{Concurrency: 1}})
	items, err := svc.AnalyzeBatch(context.Background(), []string{"https://a.example"}, false, nil)
	require.NoError(t, err)
	assert.Empty(t, items[0].ID)
	assert.NotNil(t, items[0].Result)
}

func TestService_AnalyzeBatchEmpty(t *testing.T) {
	svc, _, _ := newService(t, Config{})
	_, err := svc.AnalyzeBatch(context.Background(), nil, true, nil)
	assert.ErrorIs(t, err, sharedErrors.ErrNoTargets)
}

func TestService_Feedback(t *testing.T) {
	svc, _, _ := newService(t, Config{})
	ctx := context.Background()

	id, _, err := svc.Analyze(ctx, "https://example.com")
	require.NoError(t, err)

	fb, err := svc.RecordFeedback(ctx, id, " Accurate ", "matches what I saw")
	require.NoError(t, err)
	assert.NotEmpty(t, fb.ID)
	assert.Equal(t, analysis.VerdictAccurate, fb.Verdict)

	_, err = svc.RecordFeedback(ctx, id, "maybe", "")
	assert.ErrorIs(t, err, sharedErrors.ErrInvalidFeedback)
	assert.ErrorIs(t, err, sharedErrors.ErrInvalidVerdict)

	_, err = svc.RecordFeedback(ctx, "missing", "unsure", "")
	assert.ErrorIs(t, err, sharedErrors.ErrAnalysisNotFound)

	rec, feedback, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	require.Len(t, feedback, 1)
	assert.Equal(t, "matches what I saw", feedback[0].Comment)
}

func TestService_GetMissing(t *testing.T) {
	svc, _, _ := newService(t, Config{})
	_, _, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, sharedErrors.ErrAnalysisNotFound)
}

func TestService_HistoryAndStats(t *testing.T) {
	svc, _, _ := newService(t, Config{})
	svc.now = func() time.Time { return time.Date(2025, time.October, 25, 18, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	for _, u := range []string{"https://a.example", "https://b.example"} {
		_, _, err := svc.Analyze(ctx, u)
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	overall, daily, err := svc.Stats(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, overall.TotalScans)
	assert.Equal(t, 2, overall.Suspicious)
	assert.InDelta(t, 38.0, overall.AverageScore, 0.001)
	require.Len(t, daily, 1)
	assert.Equal(t, "2025-10-25", daily[0].Date)
}
