package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <analysis-id> <accurate|inaccurate|unsure>",
	Short: "Rate whether a stored verdict was right",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		comment, _ := cmd.Flags().GetString("comment")

		services, err := appCtx.Container()
		if err != nil {
			return err
		}
		fb, err := services.AnalysisService.RecordFeedback(cmd.Context(), args[0], args[1], comment)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s feedback %s recorded for analysis %s (%s)\n",
			colorSuccess("✓"), fb.ID, fb.AnalysisID, fb.Verdict)
		return nil
	},
}

func init() {
	feedbackCmd.Flags().StringP("comment", "m", "", "optional comment")
	rootCmd.AddCommand(feedbackCmd)
}
