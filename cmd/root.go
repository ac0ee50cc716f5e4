package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/khanhnv2901/festguard/internal/application"
	consts "github.com/khanhnv2901/festguard/internal/shared/constants"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile string
	verbose bool
)

// AppContext carries what every command needs once the root has initialized.
type AppContext struct {
	Logger  *zap.Logger
	DataDir string
	Config  *CLIConfig
	// ConfigFile is the config file that was read, if any.
	ConfigFile string
	// Services is opened on first use so commands that never touch storage
	// do not create it.
	Services *application.Container
}

type appContextKey struct{}

var globalAppContext *AppContext

var rootCmd = &cobra.Command{
	Use:   "festguard",
	Short: "Detect deceptive festival-season shopping and giveaway websites",
	Long: `festguard scores a URL for signs of a seasonal scam: suspicious URL
structure, newly registered domains, weak HTTPS and manipulative page content.
Every analysis is stored locally so it can be reviewed, exported and rated.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configUsed, err := initConfig()
		if err != nil {
			return err
		}
		applyConfigDefaults(viper.GetViper(), cmd.Flags(), cliConfig)

		logger, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		dataDir := resolveDataDir(cliConfig)
		if abs, err := filepath.Abs(dataDir); err == nil {
			dataDir = abs
		}

		storeAppContext(cmd, &AppContext{
			Logger:     logger,
			DataDir:    dataDir,
			Config:     cliConfig,
			ConfigFile: configUsed,
		})
		logger.Debug("festguard starting",
			zap.String("command", cmd.Name()),
			zap.String("data_dir", dataDir),
			zap.String("config", configUsed))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		if appCtx == nil {
			return nil
		}
		if appCtx.Logger != nil {
			_ = appCtx.Logger.Sync()
		}
		return appCtx.Close()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, colorError("Error:"), err)
		if appCtx := globalAppContext; appCtx != nil {
			_ = appCtx.Close()
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.festguard.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cliConfig.Storage.Driver, "driver", cliConfig.Storage.Driver, "storage driver: sqlite or json")
}

// initConfig loads the config file and FESTGUARD_* environment overrides.
// A missing default config file is not an error; a missing explicit one is.
func initConfig() (string, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".festguard")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config: %w", err)
	}
	return viper.ConfigFileUsed(), nil
}

// newLogger builds a quiet production logger, or a development one when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	return cfg.Build()
}

func storeAppContext(cmd *cobra.Command, appCtx *AppContext) {
	globalAppContext = appCtx
	if cmd == nil {
		return
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appContextKey{}, appCtx))
}

func getAppContext(cmd *cobra.Command) *AppContext {
	if cmd != nil && cmd.Context() != nil {
		if appCtx, ok := cmd.Context().Value(appContextKey{}).(*AppContext); ok {
			return appCtx
		}
	}
	return globalAppContext
}

// Container opens the application services on first use.
func (a *AppContext) Container() (*application.Container, error) {
	return a.container(nil)
}

func (a *AppContext) container(reg prometheus.Registerer) (*application.Container, error) {
	if a.Services != nil {
		return a.Services, nil
	}
	if err := os.MkdirAll(a.DataDir, consts.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	cfg := a.Config
	if cfg == nil {
		cfg = newCLIConfig()
	}
	services, err := application.NewContainer(cfg.containerOptions(a.DataDir, reg, a.logger()))
	if err != nil {
		return nil, err
	}
	a.Services = services
	return services, nil
}

func (a *AppContext) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// Close releases the services, if they were opened.
func (a *AppContext) Close() error {
	if a == nil || a.Services == nil {
		return nil
	}
	err := a.Services.Close()
	a.Services = nil
	return err
}
