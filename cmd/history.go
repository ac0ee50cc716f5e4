package cmd

import (
	"fmt"
	"os"

	"github.com/khanhnv2901/festguard/internal/infrastructure/export"
	consts "github.com/khanhnv2901/festguard/internal/shared/constants"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored analyses, newest first",
	Example: `  festguard history --limit 50
  festguard history --limit 0 --csv analyses.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		limit, _ := cmd.Flags().GetInt("limit")
		csvPath, _ := cmd.Flags().GetString("csv")
		asJSON, _ := cmd.Flags().GetBool("json")

		services, err := appCtx.Container()
		if err != nil {
			return err
		}
		records, err := services.AnalysisService.History(cmd.Context(), limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case csvPath == "-":
			return export.WriteCSV(out, records)
		case csvPath != "":
			f, err := os.OpenFile(csvPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, consts.DefaultFilePerm)
			if err != nil {
				return fmt.Errorf("failed to create CSV file: %w", err)
			}
			if err := export.WriteCSV(f, records); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write CSV file: %w", err)
			}
			fmt.Fprintf(out, "%s exported %d analyses to %s\n", colorSuccess("✓"), len(records), csvPath)
			return nil
		case asJSON:
			return writeJSONOutput(out, records)
		}

		if len(records) == 0 {
			fmt.Fprintln(out, "No analyses stored yet. Run `festguard analyze <url>` first.")
			return nil
		}
		printRecords(out, records)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", defaultHistoryLimit, "maximum analyses to list (0 = all)")
	historyCmd.Flags().String("csv", "", "export to a CSV file instead of printing (- for stdout)")
	historyCmd.Flags().Bool("json", false, "print as JSON")
	rootCmd.AddCommand(historyCmd)
}
