package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"github.com/khanhnv2901/festguard/internal/engine"
	sharedErrors "github.com/khanhnv2901/festguard/internal/shared/errors"
	"go.uber.org/zap"
)

// Config tunes the analysis service.
type Config struct {
	// Deadline bounds a single Analyze call; 0 disables it.
	Deadline time.Duration
	// Batch schedules AnalyzeBatch.
	Batch engine.Runner
}

// Service provides application-level analysis operations
type Service struct {
	analyzer engine.Analyzer
	repo     analysis.Repository
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new analysis service
func NewService(analyzer engine.Analyzer, repo analysis.Repository, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		analyzer: analyzer,
		repo:     repo,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Analyze validates url, runs the engine and stores the result. When storage
// fails the result is still returned, with an empty ID and the storage error.
func (s *Service) Analyze(ctx context.Context, url string) (string, *analysis.Result, error) {
	result, err := s.Evaluate(ctx, url)
	if err != nil {
		return "", nil, err
	}
	id, err := s.store(ctx, result)
	return id, result, err
}

// Evaluate validates url and runs the engine without storing anything.
func (s *Service) Evaluate(ctx context.Context, url string) (*analysis.Result, error) {
	url = strings.TrimSpace(url)
	if err := analysis.ValidateURL(url); err != nil {
		return nil, err
	}
	if s.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Deadline)
		defer cancel()
	}
	return s.analyzer.Analyze(ctx, url), nil
}

// BatchItem is the outcome for one URL of a batch.
type BatchItem struct {
	Index  int
	URL    string
	ID     string
	Result *analysis.Result
	Err    error
}

// AnalyzeBatch analyzes urls with the configured worker pool. Invalid URLs
// are reported without being analyzed. progress, if set, is called once per
// URL as soon as it is done, possibly concurrently.
func (s *Service) AnalyzeBatch(ctx context.Context, urls []string, store bool, progress func(BatchItem)) ([]BatchItem, error) {
	if len(urls) == 0 {
		return nil, sharedErrors.ErrNoTargets
	}

	items := make([]BatchItem, len(urls))
	valid := make([]string, 0, len(urls))
	positions := make([]int, 0, len(urls))
	for i, raw := range urls {
		u := strings.TrimSpace(raw)
		items[i] = BatchItem{Index: i, URL: u}
		if err := analysis.ValidateURL(u); err != nil {
			items[i].Err = err
			if progress != nil {
				progress(items[i])
			}
			continue
		}
		valid = append(valid, u)
		positions = append(positions, i)
	}

	runner := s.cfg.Batch
	runner.Run(ctx, s.analyzer, valid, func(i int, target string, result *analysis.Result, d time.Duration) {
		item := &items[positions[i]]
		item.Result = result
		if store {
			item.ID, item.Err = s.store(ctx, result)
		}
		s.logger.Debug("batch item complete",
			zap.String("url", target),
			zap.Duration("duration", d),
			zap.String("category", string(result.Category())))
		if progress != nil {
			progress(*item)
		}
	})
	return items, nil
}

// RecordFeedback attaches a user's verdict to a stored analysis
func (s *Service) RecordFeedback(ctx context.Context, analysisID, verdict, comment string) (*analysis.Feedback, error) {
	v, err := analysis.ParseVerdict(verdict)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sharedErrors.ErrInvalidFeedback, err)
	}
	fb, err := analysis.NewFeedback(analysisID, v, comment, s.now())
	if err != nil {
		return nil, err
	}
	id, err := s.repo.SaveFeedback(ctx, *fb)
	if err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}
	fb.ID = id
	return fb, nil
}

// History returns the most recent analyses, newest first
func (s *Service) History(ctx context.Context, limit int) ([]analysis.Record, error) {
	records, err := s.repo.History(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return records, nil
}

// Get retrieves a stored analysis together with its feedback
func (s *Service) Get(ctx context.Context, id string) (*analysis.Record, []analysis.Feedback, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	feedback, err := s.repo.FeedbackFor(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return record, feedback, nil
}

// Stats summarizes all analyses and the last days days
func (s *Service) Stats(ctx context.Context, days int) (analysis.Statistics, []analysis.DailyStatistic, error) {
	overall, err := s.repo.Statistics(ctx)
	if err != nil {
		return analysis.Statistics{}, nil, fmt.Errorf("failed to compute statistics: %w", err)
	}
	daily, err := s.repo.DailyStatistics(ctx, days, s.now())
	if err != nil {
		return analysis.Statistics{}, nil, fmt.Errorf("failed to compute daily statistics: %w", err)
	}
	return overall, daily, nil
}

// store persists result even when ctx has expired, so a partial result
// produced by a deadline is still recorded.
func (s *Service) store(ctx context.Context, result *analysis.Result) (string, error) {
	id, err := s.repo.Save(context.WithoutCancel(ctx), analysis.NewRecord(result))
	if err != nil {
		s.logger.Warn("failed to store analysis",
			zap.String("url", result.URL()),
			zap.Error(err))
		if !errors.Is(err, sharedErrors.ErrRepositoryOperation) {
			err = fmt.Errorf("%w: %v", sharedErrors.ErrRepositoryOperation, err)
		}
		return "", err
	}
	return id, nil
}
