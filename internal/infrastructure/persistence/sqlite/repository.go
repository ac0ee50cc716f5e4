package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"github.com/khanhnv2901/festguard/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/festguard/internal/shared/errors"

	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema.sql
var schemaFS embed.FS

// Timestamps are stored as fixed-width UTC text so that string order is time
// order and the first ten characters are the calendar day.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Repository implements analysis.Repository on an SQLite database
type Repository struct {
	db *sql.DB
}

var _ analysis.Repository = (*Repository)(nil)

// Open opens (creating if needed) the database at path and applies the schema
func Open(path string) (*Repository, error) {
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DefaultDirPerm); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Save inserts an analysis record and returns its new ID
func (r *Repository) Save(ctx context.Context, record analysis.Record) (string, error) {
	issues, err := json.Marshal(nonNil(record.Issues))
	if err != nil {
		return "", fmt.Errorf("%w: issues: %v", sharedErrors.ErrSerializationFailed, err)
	}
	recs, err := json.Marshal(nonNil(record.Recommendations))
	if err != nil {
		return "", fmt.Errorf("%w: recommendations: %v", sharedErrors.ErrSerializationFailed, err)
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO website_analysis
			(id, url, total_score, category, confidence,
			 url_score, domain_score, ssl_score, content_score,
			 issues, recommendations, partial, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, record.URL, record.TotalScore, string(record.Category), string(record.Confidence),
		record.URLScore, record.DomainScore, record.SSLScore, record.ContentScore,
		string(issues), string(recs), record.Partial, formatTime(createdAt),
	)
	if err != nil {
		return "", fmt.Errorf("%w: insert analysis: %v", sharedErrors.ErrRepositoryOperation, err)
	}
	return id, nil
}

const selectRecord = `
	SELECT id, url, total_score, category, confidence,
	       url_score, domain_score, ssl_score, content_score,
	       issues, recommendations, partial, created_at
	FROM website_analysis`

// FindByID retrieves an analysis record by its ID
func (r *Repository) FindByID(ctx context.Context, id string) (*analysis.Record, error) {
	row := r.db.QueryRowContext(ctx, selectRecord+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sharedErrors.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// History returns up to limit records, newest first. A non-positive limit returns all.
func (r *Repository) History(ctx context.Context, limit int) ([]analysis.Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, selectRecord+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query history: %v", sharedErrors.ErrRepositoryOperation, err)
	}
	defer rows.Close()

	records := []analysis.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveFeedback stores feedback for an existing analysis
func (r *Repository) SaveFeedback(ctx context.Context, feedback analysis.Feedback) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: begin: %v", sharedErrors.ErrRepositoryOperation, err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM website_analysis WHERE id = ?`, feedback.AnalysisID).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("%w: lookup analysis: %v", sharedErrors.ErrRepositoryOperation, err)
	}
	if exists == 0 {
		return "", sharedErrors.ErrAnalysisNotFound
	}

	createdAt := feedback.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_feedback (id, analysis_id, verdict, comment, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, feedback.AnalysisID, string(feedback.Verdict), feedback.Comment, formatTime(createdAt))
	if err != nil {
		return "", fmt.Errorf("%w: insert feedback: %v", sharedErrors.ErrRepositoryOperation, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: commit: %v", sharedErrors.ErrRepositoryOperation, err)
	}
	return id, nil
}

// FeedbackFor lists feedback for one analysis, oldest first
func (r *Repository) FeedbackFor(ctx context.Context, analysisID string) ([]analysis.Feedback, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, analysis_id, verdict, comment, created_at
		FROM user_feedback WHERE analysis_id = ?
		ORDER BY created_at ASC, rowid ASC`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("%w: query feedback: %v", sharedErrors.ErrRepositoryOperation, err)
	}
	defer rows.Close()

	out := []analysis.Feedback{}
	for rows.Next() {
		var (
			fb        analysis.Feedback
			verdict   string
			createdAt string
		)
		if err := rows.Scan(&fb.ID, &fb.AnalysisID, &verdict, &fb.Comment, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan feedback: %v", sharedErrors.ErrDeserializationFailed, err)
		}
		fb.Verdict = analysis.Verdict(verdict)
		if fb.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}

const summaryColumns = `
	COUNT(*),
	COALESCE(SUM(CASE WHEN category = 'SAFE' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN category IN ('SUSPICIOUS', 'CAUTION') THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN category = 'DECEPTIVE' THEN 1 ELSE 0 END), 0),
	COALESCE(AVG(total_score), 0)`

// Statistics summarizes every stored analysis
func (r *Repository) Statistics(ctx context.Context) (analysis.Statistics, error) {
	var s analysis.Statistics
	err := r.db.QueryRowContext(ctx, `SELECT `+summaryColumns+` FROM website_analysis`).
		Scan(&s.TotalScans, &s.Safe, &s.Suspicious, &s.Deceptive, &s.AverageScore)
	if err != nil {
		return analysis.Statistics{}, fmt.Errorf("%w: statistics: %v", sharedErrors.ErrRepositoryOperation, err)
	}
	return s, nil
}

// DailyStatistics summarizes analyses per UTC day for the last days days, newest first
func (r *Repository) DailyStatistics(ctx context.Context, days int, now time.Time) ([]analysis.DailyStatistic, error) {
	out := []analysis.DailyStatistic{}
	if days <= 0 {
		return out, nil
	}
	cutoff := analysis.StartOfDay(now).AddDate(0, 0, -(days - 1))

	rows, err := r.db.QueryContext(ctx, `
		SELECT substr(created_at, 1, 10) AS day, `+summaryColumns+`
		FROM website_analysis
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day DESC`, formatTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("%w: daily statistics: %v", sharedErrors.ErrRepositoryOperation, err)
	}
	defer rows.Close()

	for rows.Next() {
		var d analysis.DailyStatistic
		if err := rows.Scan(&d.Date, &d.TotalScans, &d.Safe, &d.Suspicious, &d.Deceptive, &d.AverageScore); err != nil {
			return nil, fmt.Errorf("%w: scan daily statistics: %v", sharedErrors.ErrDeserializationFailed, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Close closes the database
func (r *Repository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (analysis.Record, error) {
	var (
		rec                     analysis.Record
		category, confidence    string
		issues, recommendations string
		createdAt               string
	)
	err := s.Scan(&rec.ID, &rec.URL, &rec.TotalScore, &category, &confidence,
		&rec.URLScore, &rec.DomainScore, &rec.SSLScore, &rec.ContentScore,
		&issues, &recommendations, &rec.Partial, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("%w: scan analysis: %v", sharedErrors.ErrDeserializationFailed, err)
	}

	rec.Category = analysis.Category(category)
	rec.Confidence = analysis.Confidence(confidence)
	if err := json.Unmarshal([]byte(issues), &rec.Issues); err != nil {
		return rec, fmt.Errorf("%w: issues: %v", sharedErrors.ErrDeserializationFailed, err)
	}
	if err := json.Unmarshal([]byte(recommendations), &rec.Recommendations); err != nil {
		return rec, fmt.Errorf("%w: recommendations: %v", sharedErrors.ErrDeserializationFailed, err)
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return rec, err
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: created_at %q: %v", sharedErrors.ErrDeserializationFailed, s, err)
	}
	return t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
