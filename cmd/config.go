package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/khanhnv2901/festguard/internal/application"
	analysisapp "github.com/khanhnv2901/festguard/internal/application/analysis"
	"github.com/khanhnv2901/festguard/internal/engine"
	consts "github.com/khanhnv2901/festguard/internal/shared/constants"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	// dataDirEnvVar overrides the storage location for every command.
	dataDirEnvVar  = "FESTGUARD_DATA_DIR"
	envPrefix      = "FESTGUARD"
	defaultDirName = ".festguard"

	defaultBatchConcurrency = 4
	defaultBatchRateLimit   = 2
	defaultHistoryLimit     = 20
	defaultStatsDays        = 7
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Storage  StorageConfig
	Timeouts TimeoutConfig
	Analysis AnalysisConfig
	Server   ServerConfig
}

// StorageConfig selects the repository driver and its location.
type StorageConfig struct {
	Driver string
	Path   string
}

// TimeoutConfig holds the per-module network budgets.
type TimeoutConfig struct {
	TLS     time.Duration
	HTTP    time.Duration
	Content time.Duration
	WHOIS   time.Duration
}

// AnalysisConfig bounds single and batch analyses.
type AnalysisConfig struct {
	Deadline    time.Duration
	Concurrency int
	RateLimit   int
}

// ServerConfig captures the serve command options.
type ServerConfig struct {
	Addr            string
	AuthToken       string
	RateLimit       int
	RateBurst       int
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Storage: StorageConfig{Driver: application.DriverSQLite},
		Timeouts: TimeoutConfig{
			TLS:     consts.DefaultTLSTimeout,
			HTTP:    consts.DefaultRedirectTimeout,
			Content: consts.DefaultContentTimeout,
			WHOIS:   consts.DefaultWHOISTimeout,
		},
		Analysis: AnalysisConfig{
			Deadline:    consts.DefaultAnalysisDeadline,
			Concurrency: defaultBatchConcurrency,
			RateLimit:   defaultBatchRateLimit,
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			RateLimit:       10,
			RateBurst:       20,
			ShutdownTimeout: 30 * time.Second,
		},
	}
}

// engineConfig maps the timeouts onto the engine's module budgets.
func (c *CLIConfig) engineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.TLSTimeout = c.Timeouts.TLS
	cfg.RedirectTimeout = c.Timeouts.HTTP
	cfg.ContentTimeout = c.Timeouts.Content
	cfg.WHOISTimeout = c.Timeouts.WHOIS
	return cfg
}

func (c *CLIConfig) containerOptions(dataDir string, reg prometheus.Registerer, logger *zap.Logger) application.Options {
	return application.Options{
		Driver:  c.Storage.Driver,
		DataDir: dataDir,
		Engine:  c.engineConfig(),
		Service: analysisapp.Config{
			Deadline: c.Analysis.Deadline,
			Batch: engine.Runner{
				Concurrency: c.Analysis.Concurrency,
				RateLimit:   c.Analysis.RateLimit,
				Timeout:     c.Analysis.Deadline,
			},
		},
		Registry: reg,
		Logger:   logger,
	}
}

// resolveDataDir picks the storage directory: environment, then config, then $HOME/.festguard.
func resolveDataDir(cfg *CLIConfig) string {
	if dir := os.Getenv(dataDirEnvVar); dir != "" {
		return dir
	}
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, defaultDirName)
	}
	return defaultDirName
}

// applyConfigDefaults merges config file values into the runtime config when
// the user did not explicitly set the corresponding flag.
func applyConfigDefaults(v *viper.Viper, flags *pflag.FlagSet, cfg *CLIConfig) {
	if v.IsSet("storage.driver") {
		applyStringDefault(flags, "driver", v.GetString("storage.driver"), func(s string) { cfg.Storage.Driver = s })
	}
	if v.IsSet("storage.path") {
		cfg.Storage.Path = v.GetString("storage.path")
	}

	if v.IsSet("timeouts.tls") {
		cfg.Timeouts.TLS = v.GetDuration("timeouts.tls")
	}
	if v.IsSet("timeouts.http") {
		cfg.Timeouts.HTTP = v.GetDuration("timeouts.http")
	}
	if v.IsSet("timeouts.content") {
		cfg.Timeouts.Content = v.GetDuration("timeouts.content")
	}
	if v.IsSet("timeouts.whois") {
		cfg.Timeouts.WHOIS = v.GetDuration("timeouts.whois")
	}

	if v.IsSet("analysis.deadline") {
		applyDurationDefault(flags, "deadline", v.GetDuration("analysis.deadline"), func(d time.Duration) { cfg.Analysis.Deadline = d })
	}
	if v.IsSet("batch.concurrency") {
		applyIntDefault(flags, "concurrency", v.GetInt("batch.concurrency"), func(n int) { cfg.Analysis.Concurrency = n })
	}
	if v.IsSet("batch.rate_limit") {
		applyIntDefault(flags, "rate-limit", v.GetInt("batch.rate_limit"), func(n int) { cfg.Analysis.RateLimit = n })
	}

	if v.IsSet("server.addr") {
		applyStringDefault(flags, "addr", v.GetString("server.addr"), func(s string) { cfg.Server.Addr = s })
	}
	if v.IsSet("server.auth_token") {
		applyStringDefault(flags, "auth-token", v.GetString("server.auth_token"), func(s string) { cfg.Server.AuthToken = s })
	}
	if v.IsSet("server.rate_limit") {
		applyIntDefault(flags, "api-rate-limit", v.GetInt("server.rate_limit"), func(n int) { cfg.Server.RateLimit = n })
	}
	if v.IsSet("server.rate_burst") {
		applyIntDefault(flags, "api-rate-burst", v.GetInt("server.rate_burst"), func(n int) { cfg.Server.RateBurst = n })
	}
	if v.IsSet("server.cors_origins") {
		cfg.Server.CORSOrigins = v.GetStringSlice("server.cors_origins")
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flagChanged(flags, name) || setter == nil {
		return
	}
	setter(value)
}

func applyDurationDefault(flags *pflag.FlagSet, name string, value time.Duration, setter func(time.Duration)) {
	if flagChanged(flags, name) || setter == nil {
		return
	}
	setter(value)
}

func applyStringDefault(flags *pflag.FlagSet, name, value string, setter func(string)) {
	if flagChanged(flags, name) || setter == nil {
		return
	}
	setter(value)
}

func flagChanged(flags *pflag.FlagSet, name string) bool {
	if flags == nil {
		return false
	}
	flag := flags.Lookup(name)
	return flag != nil && flag.Changed
}
