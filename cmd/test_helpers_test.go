package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/khanhnv2901/festguard/internal/application"
	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"github.com/spf13/cobra"
)

// setupTestAppContext installs an AppContext backed by a JSON store in a
// temporary data directory and restores the previous one on cleanup.
func setupTestAppContext(t *testing.T) *AppContext {
	t.Helper()

	original := globalAppContext
	cfg := newCLIConfig()
	cfg.Storage.Driver = application.DriverJSON

	appCtx := &AppContext{
		DataDir: t.TempDir(),
		Config:  cfg,
	}
	globalAppContext = appCtx

	t.Cleanup(func() {
		_ = appCtx.Close()
		globalAppContext = original
	})
	return appCtx
}

// seedRecord stores a finished analysis and returns its id.
func seedRecord(t *testing.T, appCtx *AppContext, url string, score int, category analysis.Category) string {
	t.Helper()

	services, err := appCtx.Container()
	if err != nil {
		t.Fatalf("failed to open services: %v", err)
	}
	id, err := services.AnalysisRepo.Save(context.Background(), analysis.Record{
		URL:        url,
		TotalScore: score,
		Category:   category,
		Confidence: analysis.ConfidenceMedium,
		URLScore:   score,
		Issues:     []string{"Suspicious TLD: .xyz"},
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to seed record: %v", err)
	}
	return id
}

// runCommand executes a subcommand's RunE against a fresh output buffer.
// The given flags are reset to their defaults once it returns.
func runCommand(t *testing.T, cmd *cobra.Command, args []string, flags map[string]string) (string, error) {
	t.Helper()

	for name, value := range flags {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("failed to set --%s: %v", name, err)
		}
	}
	defer func() {
		for name := range flags {
			f := cmd.Flags().Lookup(name)
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	defer func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
	}()

	// RunE is called directly, so the context Execute would set is missing
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}
