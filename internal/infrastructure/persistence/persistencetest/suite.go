// Package persistencetest holds the behaviour every analysis.Repository
// driver must share. Driver packages call Run from their own tests.
package persistencetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	sharedErrors "github.com/khanhnv2901/festguard/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory opens an empty repository for one subtest. The suite closes it.
type Factory func(t *testing.T) analysis.Repository

// Record returns a stored-analysis fixture with the given verdict and time.
func Record(url string, total int, category analysis.Category, createdAt time.Time) analysis.Record {
	return analysis.Record{
		URL:             url,
		TotalScore:      total,
		Category:        category,
		Confidence:      analysis.ConfidenceHigh,
		URLScore:        total / 4,
		DomainScore:     total / 4,
		SSLScore:        total / 4,
		ContentScore:    total - 3*(total/4),
		Issues:          []string{"Suspicious keyword found: claim", "Very new domain (only 4 days old)"},
		Recommendations: []string{"Be cautious when interacting with this website"},
		CreatedAt:       createdAt,
	}
}

// Run exercises a repository driver.
func Run(t *testing.T, open Factory) {
	ctx := context.Background()
	base := time.Date(2025, time.October, 25, 12, 0, 0, 0, time.UTC)

	fresh := func(t *testing.T) analysis.Repository {
		repo := open(t)
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	}

	t.Run("save and find", func(t *testing.T) {
		repo := fresh(t)
		in := Record("https://diwali-offer.tk/claim", 72, analysis.CategoryDeceptive, base)
		in.Partial = true

		id, err := repo.Save(ctx, in)
		require.NoError(t, err)
		require.NotEmpty(t, id)

		got, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, in.URL, got.URL)
		assert.Equal(t, 72, got.TotalScore)
		assert.Equal(t, analysis.CategoryDeceptive, got.Category)
		assert.Equal(t, analysis.ConfidenceHigh, got.Confidence)
		assert.Equal(t, []int{18, 18, 18, 18}, []int{got.URLScore, got.DomainScore, got.SSLScore, got.ContentScore})
		assert.Equal(t, in.Issues, got.Issues)
		assert.Equal(t, in.Recommendations, got.Recommendations)
		assert.True(t, got.Partial)
		assert.True(t, base.Equal(got.CreatedAt), "created_at round trips: %v", got.CreatedAt)
	})

	t.Run("ids are unique", func(t *testing.T) {
		repo := fresh(t)
		a, err := repo.Save(ctx, Record("https://a.example", 1, analysis.CategorySafe, base))
		require.NoError(t, err)
		b, err := repo.Save(ctx, Record("https://a.example", 1, analysis.CategorySafe, base))
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("missing analysis", func(t *testing.T) {
		repo := fresh(t)
		_, err := repo.FindByID(ctx, "does-not-exist")
		assert.True(t, errors.Is(err, sharedErrors.ErrAnalysisNotFound), "got %v", err)
	})

	t.Run("history newest first with limit", func(t *testing.T) {
		repo := fresh(t)
		for i, url := range []string{"https://first.example", "https://second.example", "https://third.example"} {
			_, err := repo.Save(ctx, Record(url, 10*i, analysis.CategorySafe, base.Add(time.Duration(i)*time.Hour)))
			require.NoError(t, err)
		}

		all, err := repo.History(ctx, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "https://third.example", all[0].URL)
		assert.Equal(t, "https://first.example", all[2].URL)

		limited, err := repo.History(ctx, 2)
		require.NoError(t, err)
		require.Len(t, limited, 2)
		assert.Equal(t, "https://second.example", limited[1].URL)
	})

	t.Run("feedback", func(t *testing.T) {
		repo := fresh(t)
		id, err := repo.Save(ctx, Record("https://a.example", 50, analysis.CategorySuspicious, base))
		require.NoError(t, err)

		first, err := analysis.NewFeedback(id, analysis.VerdictAccurate, "spotted the same scam on WhatsApp", base)
		require.NoError(t, err)
		fid, err := repo.SaveFeedback(ctx, *first)
		require.NoError(t, err)
		assert.NotEmpty(t, fid)

		second, err := analysis.NewFeedback(id, analysis.VerdictUnsure, "", base.Add(time.Minute))
		require.NoError(t, err)
		_, err = repo.SaveFeedback(ctx, *second)
		require.NoError(t, err)

		list, err := repo.FeedbackFor(ctx, id)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, analysis.VerdictAccurate, list[0].Verdict)
		assert.Equal(t, "spotted the same scam on WhatsApp", list[0].Comment)
		assert.Equal(t, analysis.VerdictUnsure, list[1].Verdict)

		none, err := repo.FeedbackFor(ctx, "other")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("feedback requires existing analysis", func(t *testing.T) {
		repo := fresh(t)
		fb, err := analysis.NewFeedback("missing", analysis.VerdictInaccurate, "", base)
		require.NoError(t, err)
		_, err = repo.SaveFeedback(ctx, *fb)
		assert.True(t, errors.Is(err, sharedErrors.ErrAnalysisNotFound), "got %v", err)
	})

	t.Run("statistics", func(t *testing.T) {
		repo := fresh(t)
		empty, err := repo.Statistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, analysis.Statistics{}, empty)

		for _, rec := range []analysis.Record{
			Record("https://a.example", 5, analysis.CategorySafe, base),
			Record("https://b.example", 30, analysis.CategoryCaution, base),
			Record("https://c.example", 50, analysis.CategorySuspicious, base),
			Record("https://d.example", 75, analysis.CategoryDeceptive, base),
		} {
			_, err := repo.Save(ctx, rec)
			require.NoError(t, err)
		}

		stats, err := repo.Statistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, stats.TotalScans)
		assert.Equal(t, 1, stats.Safe)
		assert.Equal(t, 2, stats.Suspicious, "caution counts as suspicious")
		assert.Equal(t, 1, stats.Deceptive)
		assert.InDelta(t, 40.0, stats.AverageScore, 0.001)
	})

	t.Run("daily statistics", func(t *testing.T) {
		repo := fresh(t)
		now := base
		for _, rec := range []analysis.Record{
			Record("https://today-1.example", 10, analysis.CategorySafe, now.Add(-time.Hour)),
			Record("https://today-2.example", 80, analysis.CategoryDeceptive, now.Add(-2*time.Hour)),
			Record("https://yesterday.example", 40, analysis.CategoryCaution, now.AddDate(0, 0, -1)),
			Record("https://last-month.example", 90, analysis.CategoryDeceptive, now.AddDate(0, -1, 0)),
		} {
			_, err := repo.Save(ctx, rec)
			require.NoError(t, err)
		}

		daily, err := repo.DailyStatistics(ctx, 7, now)
		require.NoError(t, err)
		require.Len(t, daily, 2)

		assert.Equal(t, "2025-10-25", daily[0].Date)
		assert.Equal(t, 2, daily[0].TotalScans)
		assert.Equal(t, 1, daily[0].Safe)
		assert.Equal(t, 1, daily[0].Deceptive)
		assert.InDelta(t, 45.0, daily[0].AverageScore, 0.001)

		assert.Equal(t, "2025-10-24", daily[1].Date)
		assert.Equal(t, 1, daily[1].Suspicious)

		none, err := repo.DailyStatistics(ctx, 0, now)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
