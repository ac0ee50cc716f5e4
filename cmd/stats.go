package cmd

import (
	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize stored analyses overall and per day",
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		days, _ := cmd.Flags().GetInt("days")
		asJSON, _ := cmd.Flags().GetBool("json")

		services, err := appCtx.Container()
		if err != nil {
			return err
		}
		overall, daily, err := services.AnalysisService.Stats(cmd.Context(), days)
		if err != nil {
			return err
		}

		if asJSON {
			return writeJSONOutput(cmd.OutOrStdout(), struct {
				Overall analysis.Statistics       `json:"overall"`
				Daily   []analysis.DailyStatistic `json:"daily"`
			}{overall, daily})
		}
		printStatistics(cmd.OutOrStdout(), overall, daily)
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("days", defaultStatsDays, "number of days in the daily breakdown")
	statsCmd.Flags().Bool("json", false, "print as JSON")
	rootCmd.AddCommand(statsCmd)
}
