package checker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestParseWHOISDates(t *testing.T) {
	tests := []struct {
		field    string
		expected []time.Time
	}{
		{"2024-10-20T08:15:00Z", []time.Time{time.Date(2024, 10, 20, 8, 15, 0, 0, time.UTC)}},
		{"2024-10-20", []time.Time{time.Date(2024, 10, 20, 0, 0, 0, 0, time.UTC)}},
		{"20-Oct-2024", []time.Time{time.Date(2024, 10, 20, 0, 0, 0, 0, time.UTC)}},
		{
			"2024-10-20T08:15:00Z, 2023-01-01T00:00:00Z",
			[]time.Time{
				time.Date(2024, 10, 20, 8, 15, 0, 0, time.UTC),
				time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		{"October 20, 2024", []time.Time{time.Date(2024, 10, 20, 0, 0, 0, 0, time.UTC)}},
		{"", nil},
		{"not a date", nil},
	}
	for _, tt := range tests {
		got := parseWHOISDates(tt.field)
		if len(got) != len(tt.expected) {
			t.Errorf("parseWHOISDates(%q) returned %d dates, want %d", tt.field, len(got), len(tt.expected))
			continue
		}
		for i := range got {
			if !got[i].Equal(tt.expected[i]) {
				t.Errorf("parseWHOISDates(%q)[%d] = %v, want %v", tt.field, i, got[i], tt.expected[i])
			}
		}
	}
}

func TestWHOISRegistrar_QueryError(t *testing.T) {
	r := NewWHOISRegistrar(time.Second)
	r.query = func(string) (string, error) { return "", errors.New("connection refused") }

	_, err := r.Lookup(context.Background(), "example.com")
	if err == nil {
		t.Fatal("Expected error from failed query")
	}
}

func TestWHOISRegistrar_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	r := NewWHOISRegistrar(time.Second)
	r.query = func(string) (string, error) {
		<-release
		return "", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Lookup(ctx, "example.com")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Expected Lookup to return when the context expires")
	}
}
