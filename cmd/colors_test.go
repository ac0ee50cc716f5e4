package cmd

import (
	"testing"

	"github.com/fatih/color"
	"github.com/khanhnv2901/festguard/internal/domain/analysis"
)

func disableColor(t *testing.T) {
	t.Helper()
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = original
	})
}

func TestFormatStatusWithColor(t *testing.T) {
	disableColor(t)

	tests := []struct {
		name   string
		status string
		want   string
	}{
		{name: "success", status: "OK", want: "OK"},
		{name: "pass synonym", status: "pass", want: "pass"},
		{name: "warning", status: "warn", want: "warn"},
		{name: "failure", status: "FAILED", want: "FAILED"},
		{name: "unknown", status: "pending", want: "pending"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatStatusWithColor(tt.status); got != tt.want {
				t.Fatalf("formatStatusWithColor(%q) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestFormatCategory(t *testing.T) {
	disableColor(t)

	tests := []struct {
		category analysis.Category
		icon     string
	}{
		{analysis.CategorySafe, "✓"},
		{analysis.CategoryCaution, "!"},
		{analysis.CategorySuspicious, "!"},
		{analysis.CategoryDeceptive, "✗"},
	}
	for _, tt := range tests {
		if got := formatCategory(tt.category); got != string(tt.category) {
			t.Errorf("formatCategory(%s) = %q", tt.category, got)
		}
		if got := categoryIcon(tt.category); got != tt.icon {
			t.Errorf("categoryIcon(%s) = %q, want %q", tt.category, got, tt.icon)
		}
	}
}
