package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X github.com/khanhnv2901/festguard/cmd.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type buildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func currentBuild() buildInfo {
	return buildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		detailed, _ := cmd.Flags().GetBool("detailed")
		asJSON, _ := cmd.Flags().GetBool("json")
		out := cmd.OutOrStdout()
		info := currentBuild()

		switch {
		case asJSON:
			return writeJSONOutput(out, info)
		case detailed:
			fmt.Fprintf(out, "festguard %s\n", info.Version)
			fmt.Fprintf(out, "  Git Commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "  Build Date: %s\n", info.BuildDate)
			fmt.Fprintf(out, "  Go Version: %s\n", info.GoVersion)
			fmt.Fprintf(out, "  Platform:   %s\n", info.Platform)
		default:
			fmt.Fprintf(out, "festguard version %s\n", info.Version)
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolP("detailed", "d", false, "show build details")
	versionCmd.Flags().Bool("json", false, "print build details as JSON")
	rootCmd.AddCommand(versionCmd)
}
