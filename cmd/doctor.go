package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/khanhnv2901/festguard/internal/checker"
	consts "github.com/khanhnv2901/festguard/internal/shared/constants"
	"github.com/spf13/cobra"
)

// doctorCheck is one setup probe. Network checks are skipped with --offline.
type doctorCheck struct {
	Name    string
	Network bool
	Run     func(ctx context.Context) (string, error)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, storage and network reachability",
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		offline, _ := cmd.Flags().GetBool("offline")
		host, _ := cmd.Flags().GetString("host")

		failed := runDoctor(cmd.Context(), cmd.OutOrStdout(), doctorChecks(appCtx, host), offline)
		if failed > 0 {
			return fmt.Errorf("%d doctor check(s) failed", failed)
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().Bool("offline", false, "skip DNS and WHOIS checks")
	doctorCmd.Flags().String("host", "example.com", "domain used for the DNS and WHOIS checks")
	rootCmd.AddCommand(doctorCmd)
}

func doctorChecks(appCtx *AppContext, host string) []doctorCheck {
	return []doctorCheck{
		{
			Name: "config",
			Run: func(context.Context) (string, error) {
				if appCtx.ConfigFile == "" {
					return "no config file, using defaults and FESTGUARD_* environment", nil
				}
				return appCtx.ConfigFile, nil
			},
		},
		{
			Name: "data directory",
			Run: func(context.Context) (string, error) {
				return appCtx.DataDir, checkWritable(appCtx.DataDir)
			},
		},
		{
			Name: "storage",
			Run: func(ctx context.Context) (string, error) {
				services, err := appCtx.Container()
				if err != nil {
					return "", err
				}
				records, err := services.AnalysisRepo.History(ctx, 0)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%s driver, %d analyses stored", appCtx.Config.Storage.Driver, len(records)), nil
			},
		},
		{
			Name:    "dns",
			Network: true,
			Run: func(ctx context.Context) (string, error) {
				ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				addrs, err := net.DefaultResolver.LookupHost(ctx, host)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%s resolves to %d address(es)", host, len(addrs)), nil
			},
		},
		{
			Name:    "whois",
			Network: true,
			Run: func(ctx context.Context) (string, error) {
				timeout := appCtx.Config.Timeouts.WHOIS
				ctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()
				reg, err := checker.NewWHOISRegistrar(timeout).Lookup(ctx, host)
				if err != nil {
					return "", err
				}
				if len(reg.Created) == 0 {
					return host + " reachable, no creation date published", nil
				}
				return fmt.Sprintf("%s registered %s", host, reg.Created[0].Format("2006-01-02")), nil
			},
		},
	}
}

// runDoctor prints one line per check and returns the number of failures.
func runDoctor(ctx context.Context, w io.Writer, checks []doctorCheck, offline bool) int {
	failed := 0
	for _, c := range checks {
		if offline && c.Network {
			fmt.Fprintf(w, "%-16s %s\n", c.Name, formatStatusWithColor("skip"))
			continue
		}
		detail, err := c.Run(ctx)
		if err != nil {
			failed++
			fmt.Fprintf(w, "%-16s %s  %v\n", c.Name, formatStatusWithColor("fail"), err)
			continue
		}
		fmt.Fprintf(w, "%-16s %s  %s\n", c.Name, formatStatusWithColor("ok"), detail)
	}
	return failed
}

func checkWritable(dir string) error {
	if dir == "" {
		return errors.New("data directory not configured")
	}
	if err := os.MkdirAll(dir, consts.DefaultDirPerm); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(filepath.Clean(name))
}
