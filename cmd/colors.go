package cmd

import (
	"strings"

	"github.com/fatih/color"
	"github.com/khanhnv2901/festguard/internal/domain/analysis"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
	colorDanger  = color.New(color.FgRed, color.Bold).SprintFunc()
	colorAlert   = color.New(color.FgMagenta).SprintFunc()
	colorDim     = color.New(color.Faint).SprintFunc()
)

func formatStatusWithColor(status string) string {
	switch strings.ToLower(status) {
	case "ok", "success", "pass":
		return colorSuccess(status)
	case "warn", "skip", "skipped":
		return colorWarn(status)
	case "error", "fail", "failed":
		return colorError(status)
	default:
		return status
	}
}

// formatCategory colours a verdict by severity.
func formatCategory(c analysis.Category) string {
	label := string(c)
	switch c {
	case analysis.CategorySafe:
		return colorSuccess(label)
	case analysis.CategoryCaution:
		return colorWarn(label)
	case analysis.CategorySuspicious:
		return colorAlert(label)
	case analysis.CategoryDeceptive:
		return colorDanger(label)
	default:
		return label
	}
}

// categoryIcon is the symbol printed before a verdict.
func categoryIcon(c analysis.Category) string {
	switch c {
	case analysis.CategorySafe:
		return "✓"
	case analysis.CategoryDeceptive:
		return "✗"
	default:
		return "!"
	}
}
