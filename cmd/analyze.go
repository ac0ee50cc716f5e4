package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	analysisapp "github.com/khanhnv2901/festguard/internal/application/analysis"
	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"github.com/spf13/cobra"
)

// analysisOutput is the JSON shape of one analyzed URL.
type analysisOutput struct {
	ID     string           `json:"id,omitempty"`
	URL    string           `json:"url"`
	Result *analysis.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [url...]",
	Short: "Analyze URLs for festival scam signals",
	Long: `Analyze one or more URLs and print a verdict for each: SAFE, CAUTION,
SUSPICIOUS or DECEPTIVE, with the module scores, the issues found and advice.
URLs can also be read from a file (one per line, # starts a comment; use - for stdin).`,
	Example: `  festguard analyze https://diwali-mega-sale.example
  festguard analyze --file urls.txt --concurrency 8 --json`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringP("file", "f", "", "read URLs from a file, one per line (- for stdin)")
	analyzeCmd.Flags().Bool("json", false, "print results as JSON")
	analyzeCmd.Flags().Bool("no-store", false, "do not save results to history")
	analyzeCmd.Flags().Bool("progress", true, "show progress for batches")
	analyzeCmd.Flags().IntVar(&cliConfig.Analysis.Concurrency, "concurrency", cliConfig.Analysis.Concurrency, "concurrent analyses in a batch")
	analyzeCmd.Flags().IntVar(&cliConfig.Analysis.RateLimit, "rate-limit", cliConfig.Analysis.RateLimit, "analyses started per second in a batch (0 = unlimited)")
	analyzeCmd.Flags().DurationVar(&cliConfig.Analysis.Deadline, "deadline", cliConfig.Analysis.Deadline, "time budget for each analysis")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	appCtx := getAppContext(cmd)
	file, _ := cmd.Flags().GetString("file")
	asJSON, _ := cmd.Flags().GetBool("json")
	noStore, _ := cmd.Flags().GetBool("no-store")
	showProgress, _ := cmd.Flags().GetBool("progress")

	targets, err := collectTargets(cmd.InOrStdin(), args, file)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return errors.New("at least one URL is required (as an argument or via --file)")
	}

	services, err := appCtx.Container()
	if err != nil {
		return err
	}
	svc := services.AnalysisService
	out := cmd.OutOrStdout()

	if len(targets) == 1 {
		return analyzeOne(cmd, svc, targets[0], !noStore, asJSON)
	}

	var printer *progressPrinter
	if showProgress {
		printer = newProgressPrinter(cmd.ErrOrStderr(), len(targets), "analyze")
		printer.Start()
	}
	items, err := svc.AnalyzeBatch(cmd.Context(), targets, !noStore, func(item analysisapp.BatchItem) {
		if printer == nil {
			return
		}
		if item.Result == nil {
			printer.Increment(false, false, 0)
			return
		}
		printer.Increment(item.Err == nil, item.Result.Category() != analysis.CategorySafe, item.Result.Duration())
	})
	if printer != nil {
		printer.Stop()
	}
	if err != nil {
		return err
	}

	failed := 0
	outputs := make([]analysisOutput, 0, len(items))
	for _, item := range items {
		o := analysisOutput{ID: item.ID, URL: item.URL, Result: item.Result}
		if item.Err != nil {
			failed++
			o.Error = item.Err.Error()
		}
		outputs = append(outputs, o)
	}

	if asJSON {
		if err := writeJSONOutput(out, outputs); err != nil {
			return err
		}
	} else {
		for _, o := range outputs {
			if o.Result == nil {
				fmt.Fprintf(out, "%s %s  %s\n\n", colorError("✗"), o.URL, o.Error)
				continue
			}
			printResult(out, o.ID, o.Result)
			if o.Error != "" {
				fmt.Fprintf(out, "  %s %s\n\n", colorWarn("not stored:"), o.Error)
			}
		}
	}

	if failed > 0 {
		return &BatchFailureError{Failed: failed, Total: len(items)}
	}
	return nil
}

func analyzeOne(cmd *cobra.Command, svc *analysisapp.Service, target string, store, asJSON bool) error {
	var (
		id     string
		result *analysis.Result
		err    error
	)
	if store {
		id, result, err = svc.Analyze(cmd.Context(), target)
	} else {
		result, err = svc.Evaluate(cmd.Context(), target)
	}
	if result == nil {
		return &InvalidTargetError{Target: target, Err: err}
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s result was not saved: %v\n", colorWarn("Warning:"), err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSONOutput(out, analysisOutput{ID: id, URL: result.URL(), Result: result})
	}
	printResult(out, id, result)
	fmt.Fprintf(out, "%s analyzed in %s\n", colorInfo("→"), formatDurationLabel(result.Duration()))
	return nil
}

// collectTargets merges positional URLs with those listed in file.
func collectTargets(stdin io.Reader, args []string, file string) ([]string, error) {
	targets := make([]string, 0, len(args))
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			targets = append(targets, a)
		}
	}
	if file == "" {
		return targets, nil
	}

	var r io.Reader = stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open targets file: %w", err)
		}
		defer f.Close()
		r = f
	}
	fromFile, err := readTargets(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets: %w", err)
	}
	return append(targets, fromFile...), nil
}

func readTargets(r io.Reader) ([]string, error) {
	var targets []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	return targets, sc.Err()
}
