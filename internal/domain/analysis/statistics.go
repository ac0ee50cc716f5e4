package analysis

import (
	"sort"
	"time"
)

// DayLayout formats the calendar day used to bucket daily statistics.
const DayLayout = "2006-01-02"

// Statistics summarizes stored analyses. Suspicious counts both CAUTION and
// SUSPICIOUS verdicts.
type Statistics struct {
	TotalScans   int     `json:"total_scans"`
	Safe         int     `json:"safe_count"`
	Suspicious   int     `json:"suspicious_count"`
	Deceptive    int     `json:"deceptive_count"`
	AverageScore float64 `json:"average_score"`
}

// DailyStatistic is Statistics for one UTC calendar day.
type DailyStatistic struct {
	Date string `json:"date"`
	Statistics
}

func (s *Statistics) add(r Record) {
	s.AverageScore = (s.AverageScore*float64(s.TotalScans) + float64(r.TotalScore)) / float64(s.TotalScans+1)
	s.TotalScans++
	switch r.Category {
	case CategorySafe:
		s.Safe++
	case CategoryCaution, CategorySuspicious:
		s.Suspicious++
	case CategoryDeceptive:
		s.Deceptive++
	}
}

// Summarize computes overall statistics for records.
func Summarize(records []Record) Statistics {
	var stats Statistics
	for _, r := range records {
		stats.add(r)
	}
	return stats
}

// SummarizeDaily buckets records by UTC day, covering the days days ending at now.
// Days without analyses are omitted. Output is ordered newest first.
func SummarizeDaily(records []Record, days int, now time.Time) []DailyStatistic {
	if days <= 0 {
		return []DailyStatistic{}
	}
	cutoff := StartOfDay(now).AddDate(0, 0, -(days - 1))
	buckets := make(map[string]*DailyStatistic)
	for _, r := range records {
		created := r.CreatedAt.UTC()
		if created.Before(cutoff) {
			continue
		}
		key := created.Format(DayLayout)
		bucket, ok := buckets[key]
		if !ok {
			bucket = &DailyStatistic{Date: key}
			buckets[key] = bucket
		}
		bucket.add(r)
	}

	out := make([]DailyStatistic, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
