package analysis

import (
	"context"
	"time"
)

// Repository defines the interface for analysis persistence
type Repository interface {
	// Save persists an analysis record and returns its assigned ID
	Save(ctx context.Context, record Record) (string, error)

	// FindByID retrieves an analysis record by its ID
	FindByID(ctx context.Context, id string) (*Record, error)

	// History returns the most recent records, newest first
	History(ctx context.Context, limit int) ([]Record, error)

	// SaveFeedback stores feedback for an existing analysis and returns its ID
	SaveFeedback(ctx context.Context, feedback Feedback) (string, error)

	// FeedbackFor lists feedback attached to an analysis, oldest first
	FeedbackFor(ctx context.Context, analysisID string) ([]Feedback, error)

	// Statistics summarizes every stored analysis
	Statistics(ctx context.Context) (Statistics, error)

	// DailyStatistics summarizes analyses per UTC day over the last days days
	DailyStatistics(ctx context.Context, days int, now time.Time) ([]DailyStatistic, error)

	// Close releases underlying resources
	Close() error
}
