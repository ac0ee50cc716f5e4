package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	sharedErrors "github.com/khanhnv2901/festguard/internal/shared/errors"
)

func TestReadTargets(t *testing.T) {
	input := `# festival deals
https://diwali-sale.example

  https://free-gift.example/claim  
# trailing comment
`
	got, err := readTargets(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readTargets() error = %v", err)
	}
	want := []string{"https://diwali-sale.example", "https://free-gift.example/claim"}
	if len(got) != len(want) {
		t.Fatalf("readTargets() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("target[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCollectTargets(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "urls.txt")
	if err := os.WriteFile(file, []byte("https://b.example\n"), 0o600); err != nil {
		t.Fatalf("failed to write targets: %v", err)
	}

	tests := []struct {
		name  string
		stdin string
		args  []string
		file  string
		want  []string
	}{
		{name: "args only", args: []string{"https://a.example", "  "}, want: []string{"https://a.example"}},
		{name: "args and file", args: []string{"https://a.example"}, file: file, want: []string{"https://a.example", "https://b.example"}},
		{name: "stdin", stdin: "https://c.example\n", file: "-", want: []string{"https://c.example"}},
		{name: "nothing", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := collectTargets(strings.NewReader(tt.stdin), tt.args, tt.file)
			if err != nil {
				t.Fatalf("collectTargets() error = %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("collectTargets() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := collectTargets(nil, nil, filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected an error for a missing targets file")
	}
}

func TestAnalyzeCommand_RequiresTargets(t *testing.T) {
	setupTestAppContext(t)

	analyzeCmd.SetIn(strings.NewReader(""))
	t.Cleanup(func() { analyzeCmd.SetIn(nil) })

	_, err := runCommand(t, analyzeCmd, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "at least one URL") {
		t.Fatalf("expected missing target error, got %v", err)
	}
}

func TestAnalyzeCommand_InvalidURL(t *testing.T) {
	setupTestAppContext(t)

	_, err := runCommand(t, analyzeCmd, []string{"not a url"}, map[string]string{"no-store": "true"})
	var target *InvalidTargetError
	if !errors.As(err, &target) {
		t.Fatalf("expected InvalidTargetError, got %v", err)
	}
	if !errors.Is(err, sharedErrors.ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL in chain, got %v", err)
	}
}

func TestHistoryCommand(t *testing.T) {
	disableColor(t)
	appCtx := setupTestAppContext(t)

	out, err := runCommand(t, historyCmd, nil, nil)
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.Contains(out, "No analyses stored yet") {
		t.Errorf("expected empty message, got %q", out)
	}

	id := seedRecord(t, appCtx, "https://diwali-sale.xyz", 20, analysis.CategorySuspicious)

	out, err = runCommand(t, historyCmd, nil, nil)
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	for _, want := range []string{id, "SUSPICIOUS", "https://diwali-sale.xyz"} {
		if !strings.Contains(out, want) {
			t.Errorf("history output missing %q:\n%s", want, out)
		}
	}

	out, err = runCommand(t, historyCmd, nil, map[string]string{"json": "true"})
	if err != nil {
		t.Fatalf("history --json error = %v", err)
	}
	var records []analysis.Record
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(records) != 1 || records[0].ID != id {
		t.Errorf("unexpected records: %+v", records)
	}

	csvPath := filepath.Join(t.TempDir(), "history.csv")
	if _, err := runCommand(t, historyCmd, nil, map[string]string{"csv": csvPath}); err != nil {
		t.Fatalf("history --csv error = %v", err)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("failed to read CSV: %v", err)
	}
	if !strings.Contains(string(data), id) {
		t.Errorf("CSV missing record id:\n%s", data)
	}
}

func TestStatsCommand(t *testing.T) {
	appCtx := setupTestAppContext(t)
	seedRecord(t, appCtx, "https://a.example", 0, analysis.CategorySafe)
	seedRecord(t, appCtx, "https://b.xyz", 60, analysis.CategoryDeceptive)

	out, err := runCommand(t, statsCmd, nil, map[string]string{"json": "true"})
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}
	var got struct {
		Overall analysis.Statistics       `json:"overall"`
		Daily   []analysis.DailyStatistic `json:"daily"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if got.Overall.TotalScans != 2 || got.Overall.Safe != 1 || got.Overall.Deceptive != 1 {
		t.Errorf("unexpected overall stats: %+v", got.Overall)
	}
	if got.Overall.AverageScore != 30 {
		t.Errorf("average score = %v, want 30", got.Overall.AverageScore)
	}

	out, err = runCommand(t, statsCmd, nil, nil)
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}
	if !strings.Contains(out, "Total scans:        2") {
		t.Errorf("unexpected stats output:\n%s", out)
	}
}

func TestFeedbackCommand(t *testing.T) {
	disableColor(t)
	appCtx := setupTestAppContext(t)
	id := seedRecord(t, appCtx, "https://b.xyz", 45, analysis.CategoryDeceptive)

	out, err := runCommand(t, feedbackCmd, []string{id, "accurate"}, map[string]string{"comment": "obvious scam"})
	if err != nil {
		t.Fatalf("feedback error = %v", err)
	}
	if !strings.Contains(out, "recorded for analysis "+id) {
		t.Errorf("unexpected output: %q", out)
	}

	services, _ := appCtx.Container()
	feedback, err := services.AnalysisRepo.FeedbackFor(context.Background(), id)
	if err != nil {
		t.Fatalf("FeedbackFor() error = %v", err)
	}
	if len(feedback) != 1 || feedback[0].Comment != "obvious scam" {
		t.Errorf("unexpected feedback: %+v", feedback)
	}

	if _, err := runCommand(t, feedbackCmd, []string{id, "maybe"}, nil); !errors.Is(err, sharedErrors.ErrInvalidVerdict) {
		t.Errorf("expected ErrInvalidVerdict, got %v", err)
	}
	if _, err := runCommand(t, feedbackCmd, []string{"missing", "accurate"}, nil); !errors.Is(err, sharedErrors.ErrAnalysisNotFound) {
		t.Errorf("expected ErrAnalysisNotFound, got %v", err)
	}
}

func TestReportCommand(t *testing.T) {
	disableColor(t)
	appCtx := setupTestAppContext(t)
	id := seedRecord(t, appCtx, "https://b.xyz", 45, analysis.CategoryDeceptive)

	mdPath := filepath.Join(t.TempDir(), "report.md")
	out, err := runCommand(t, reportCmd, []string{id}, map[string]string{"format": "md", "out": mdPath})
	if err != nil {
		t.Fatalf("report error = %v", err)
	}
	if !strings.Contains(out, "Report generated: "+mdPath) {
		t.Errorf("unexpected output: %q", out)
	}
	data, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !strings.Contains(string(data), "https://b.xyz") {
		t.Errorf("report missing URL:\n%s", data)
	}

	out, err = runCommand(t, reportCmd, []string{id}, map[string]string{"format": "json", "out": "-"})
	if err != nil {
		t.Fatalf("report json error = %v", err)
	}
	var doc struct {
		Analysis analysis.Record     `json:"analysis"`
		Feedback []analysis.Feedback `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON report: %v", err)
	}
	if doc.Analysis.ID != id || doc.Feedback == nil {
		t.Errorf("unexpected JSON report: %+v", doc)
	}

	if _, err := runCommand(t, reportCmd, []string{id}, map[string]string{"format": "docx"}); err == nil {
		t.Error("expected an error for an unknown format")
	}
	if _, err := runCommand(t, reportCmd, []string{"missing"}, map[string]string{"format": "md", "out": "-"}); !errors.Is(err, sharedErrors.ErrAnalysisNotFound) {
		t.Errorf("expected ErrAnalysisNotFound, got %v", err)
	}
}

func TestDefaultReportName(t *testing.T) {
	tests := []struct {
		id   string
		ext  string
		want string
	}{
		{"0123456789abcdef", ".pdf", "festguard-report-01234567.pdf"},
		{"short", ".md", "festguard-report-short.md"},
	}
	for _, tt := range tests {
		if got := defaultReportName(tt.id, tt.ext); got != tt.want {
			t.Errorf("defaultReportName(%q, %q) = %q, want %q", tt.id, tt.ext, got, tt.want)
		}
	}
}

func TestRunDoctor(t *testing.T) {
	disableColor(t)

	ran := map[string]bool{}
	checks := []doctorCheck{
		{Name: "config", Run: func(context.Context) (string, error) { ran["config"] = true; return "defaults", nil }},
		{Name: "storage", Run: func(context.Context) (string, error) { ran["storage"] = true; return "", errors.New("locked") }},
		{Name: "dns", Network: true, Run: func(context.Context) (string, error) { ran["dns"] = true; return "ok", nil }},
	}

	var buf bytes.Buffer
	failed := runDoctor(context.Background(), &buf, checks, true)
	if failed != 1 {
		t.Fatalf("runDoctor() failed = %d, want 1", failed)
	}
	if ran["dns"] {
		t.Error("network check ran in offline mode")
	}
	out := buf.String()
	for _, want := range []string{"defaults", "locked", "skip"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if failed := runDoctor(context.Background(), &buf, checks[2:], false); failed != 0 || !ran["dns"] {
		t.Errorf("online run: failed=%d ran=%v", failed, ran["dns"])
	}
}

func TestDoctorChecks_Local(t *testing.T) {
	appCtx := setupTestAppContext(t)

	for _, c := range doctorChecks(appCtx, "example.com") {
		if c.Network {
			continue
		}
		if _, err := c.Run(context.Background()); err != nil {
			t.Errorf("%s check failed: %v", c.Name, err)
		}
	}
}

func TestCheckWritable(t *testing.T) {
	if err := checkWritable(filepath.Join(t.TempDir(), "a", "b")); err != nil {
		t.Fatalf("checkWritable() error = %v", err)
	}
	if err := checkWritable(""); err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, versionCmd, nil, nil)
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if out != "festguard version "+Version+"\n" {
		t.Errorf("unexpected version output %q", out)
	}

	out, err = runCommand(t, versionCmd, nil, map[string]string{"detailed": "true"})
	if err != nil {
		t.Fatalf("version --detailed error = %v", err)
	}
	if !strings.Contains(out, "Go Version:") {
		t.Errorf("detailed output missing build details: %q", out)
	}

	out, err = runCommand(t, versionCmd, nil, map[string]string{"json": "true"})
	if err != nil {
		t.Fatalf("version --json error = %v", err)
	}
	var info buildInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if info.Version != Version || info.Platform == "" {
		t.Errorf("unexpected build info: %+v", info)
	}
}
