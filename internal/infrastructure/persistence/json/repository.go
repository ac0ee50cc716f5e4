package json

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"github.com/khanhnv2901/festguard/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/festguard/internal/shared/errors"
	"github.com/khanhnv2901/festguard/internal/shared/security"
)

const (
	analysesFile = "analyses.jsonl"
	feedbackFile = "feedback.jsonl"
)

// recordDTO is the data transfer object for one analysis line
type recordDTO struct {
	ID              string   `json:"id"`
	URL             string   `json:"url"`
	TotalScore      int      `json:"total_score"`
	Category        string   `json:"category"`
	Confidence      string   `json:"confidence"`
	URLScore        int      `json:"url_score"`
	DomainScore     int      `json:"domain_score"`
	SSLScore        int      `json:"ssl_score"`
	ContentScore    int      `json:"content_score"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
	Partial         bool     `json:"partial,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

type feedbackDTO struct {
	ID         string `json:"id"`
	AnalysisID string `json:"analysis_id"`
	Verdict    string `json:"verdict"`
	Comment    string `json:"comment,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// Repository implements analysis.Repository with append-only JSON-lines files
type Repository struct {
	analysesPath string
	feedbackPath string
	mu           sync.RWMutex
}

var _ analysis.Repository = (*Repository)(nil)

// NewRepository creates a JSON-lines repository rooted at dir
func NewRepository(dir string) (*Repository, error) {
	if dir == "" {
		return nil, fmt.Errorf("results directory cannot be empty")
	}
	if err := os.MkdirAll(dir, constants.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	analysesPath, err := security.ResolveWithin(dir, analysesFile)
	if err != nil {
		return nil, err
	}
	feedbackPath, err := security.ResolveWithin(dir, feedbackFile)
	if err != nil {
		return nil, err
	}

	return &Repository{analysesPath: analysesPath, feedbackPath: feedbackPath}, nil
}

// Save appends an analysis record and returns its new ID
func (r *Repository) Save(ctx context.Context, record analysis.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	record.ID = uuid.NewString()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := appendLine(r.analysesPath, recordToDTO(record)); err != nil {
		return "", fmt.Errorf("failed to save analysis: %w", err)
	}
	return record.ID, nil
}

// FindByID retrieves an analysis record by its ID
func (r *Repository) FindByID(ctx context.Context, id string) (*analysis.Record, error) {
	records, err := r.loadRecords(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, sharedErrors.ErrAnalysisNotFound
}

// History returns up to limit records, newest first. A non-positive limit returns all.
func (r *Repository) History(ctx context.Context, limit int) ([]analysis.Record, error) {
	records, err := r.loadRecords(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// SaveFeedback appends feedback for an existing analysis
func (r *Repository) SaveFeedback(ctx context.Context, feedback analysis.Feedback) (string, error) {
	if _, err := r.FindByID(ctx, feedback.AnalysisID); err != nil {
		return "", err
	}
	feedback.ID = uuid.NewString()
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	dto := feedbackDTO{
		ID:         feedback.ID,
		AnalysisID: feedback.AnalysisID,
		Verdict:    string(feedback.Verdict),
		Comment:    feedback.Comment,
		CreatedAt:  feedback.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if err := appendLine(r.feedbackPath, dto); err != nil {
		return "", fmt.Errorf("failed to save feedback: %w", err)
	}
	return feedback.ID, nil
}

// FeedbackFor lists feedback for one analysis, oldest first
func (r *Repository) FeedbackFor(ctx context.Context, analysisID string) ([]analysis.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []analysis.Feedback{}
	err := readLines(r.feedbackPath, func(line []byte) error {
		var dto feedbackDTO
		if err := json.Unmarshal(line, &dto); err != nil {
			return fmt.Errorf("%w: %v", sharedErrors.ErrDeserializationFailed, err)
		}
		if dto.AnalysisID != analysisID {
			return nil
		}
		createdAt, err := time.Parse(time.RFC3339Nano, dto.CreatedAt)
		if err != nil {
			return fmt.Errorf("%w: created_at: %v", sharedErrors.ErrDeserializationFailed, err)
		}
		out = append(out, analysis.Feedback{
			ID:         dto.ID,
			AnalysisID: dto.AnalysisID,
			Verdict:    analysis.Verdict(dto.Verdict),
			Comment:    dto.Comment,
			CreatedAt:  createdAt,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Statistics summarizes every stored analysis
func (r *Repository) Statistics(ctx context.Context) (analysis.Statistics, error) {
	records, err := r.loadRecords(ctx)
	if err != nil {
		return analysis.Statistics{}, err
	}
	return analysis.Summarize(records), nil
}

// DailyStatistics summarizes analyses per day for the last days days
func (r *Repository) DailyStatistics(ctx context.Context, days int, now time.Time) ([]analysis.DailyStatistic, error) {
	records, err := r.loadRecords(ctx)
	if err != nil {
		return nil, err
	}
	return analysis.SummarizeDaily(records, days, now), nil
}

// Close is a no-op; every operation opens and closes its own file handle
func (r *Repository) Close() error {
	return nil
}

// Helper methods

func (r *Repository) loadRecords(ctx context.Context) ([]analysis.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := []analysis.Record{}
	err := readLines(r.analysesPath, func(line []byte) error {
		var dto recordDTO
		if err := json.Unmarshal(line, &dto); err != nil {
			return fmt.Errorf("%w: %v", sharedErrors.ErrDeserializationFailed, err)
		}
		record, err := recordFromDTO(dto)
		if err != nil {
			return err
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func appendLine(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", sharedErrors.ErrSerializationFailed, err)
	}

	// #nosec G304 -- path is resolved inside the results directory
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.DefaultFilePerm)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func readLines(path string, fn func([]byte) error) error {
	// #nosec G304 -- path is resolved inside the results directory
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", sharedErrors.ErrRepositoryOperation, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func recordToDTO(rec analysis.Record) recordDTO {
	return recordDTO{
		ID:              rec.ID,
		URL:             rec.URL,
		TotalScore:      rec.TotalScore,
		Category:        string(rec.Category),
		Confidence:      string(rec.Confidence),
		URLScore:        rec.URLScore,
		DomainScore:     rec.DomainScore,
		SSLScore:        rec.SSLScore,
		ContentScore:    rec.ContentScore,
		Issues:          rec.Issues,
		Recommendations: rec.Recommendations,
		Partial:         rec.Partial,
		CreatedAt:       rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func recordFromDTO(dto recordDTO) (analysis.Record, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, dto.CreatedAt)
	if err != nil {
		return analysis.Record{}, fmt.Errorf("%w: created_at: %v", sharedErrors.ErrDeserializationFailed, err)
	}
	return analysis.Record{
		ID:              dto.ID,
		URL:             dto.URL,
		TotalScore:      dto.TotalScore,
		Category:        analysis.Category(dto.Category),
		Confidence:      analysis.Confidence(dto.Confidence),
		URLScore:        dto.URLScore,
		DomainScore:     dto.DomainScore,
		SSLScore:        dto.SSLScore,
		ContentScore:    dto.ContentScore,
		Issues:          nonNil(dto.Issues),
		Recommendations: nonNil(dto.Recommendations),
		Partial:         dto.Partial,
		CreatedAt:       createdAt,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
