package application

import (
	"fmt"
	"path/filepath"

	analysisapp "github.com/khanhnv2901/festguard/internal/application/analysis"
	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"github.com/khanhnv2901/festguard/internal/engine"
	"github.com/khanhnv2901/festguard/internal/infrastructure/persistence/json"
	"github.com/khanhnv2901/festguard/internal/infrastructure/persistence/sqlite"
	sharedErrors "github.com/khanhnv2901/festguard/internal/shared/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Storage drivers
const (
	DriverSQLite = "sqlite"
	DriverJSON   = "json"
)

// Database file name used by the sqlite driver inside the data directory.
const sqliteFile = "festguard.db"

// Options configures NewContainer.
type Options struct {
	// Driver selects the storage backend: sqlite (default) or json.
	Driver  string
	DataDir string

	Engine  engine.Config
	Service analysisapp.Config

	// Registry receives the engine metrics; nil disables them.
	Registry prometheus.Registerer
	Logger   *zap.Logger
}

// Container holds all application services and repositories
// This is a simple dependency injection container
type Container struct {
	// Repositories
	AnalysisRepo analysis.Repository

	// Engine
	Engine  *engine.Engine
	Metrics *engine.Metrics

	// Services
	AnalysisService *analysisapp.Service
}

// NewContainer creates a new application service container
func NewContainer(opts Options) (*Container, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	repo, err := OpenRepository(opts.Driver, opts.DataDir)
	if err != nil {
		return nil, err
	}

	var metrics *engine.Metrics
	if opts.Registry != nil {
		metrics, err = engine.NewMetrics(opts.Registry)
		if err != nil {
			_ = repo.Close()
			return nil, err
		}
	}

	eng, err := engine.NewDefault(opts.Engine, engine.WithLogger(logger), engine.WithMetrics(metrics))
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	return &Container{
		AnalysisRepo:    repo,
		Engine:          eng,
		Metrics:         metrics,
		AnalysisService: analysisapp.NewService(eng, repo, opts.Service, logger),
	}, nil
}

// OpenRepository opens the analysis repository for driver under dataDir.
func OpenRepository(driver, dataDir string) (analysis.Repository, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}
	switch driver {
	case "", DriverSQLite:
		repo, err := sqlite.Open(filepath.Join(dataDir, sqliteFile))
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite repository: %w", err)
		}
		return repo, nil
	case DriverJSON:
		repo, err := json.NewRepository(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create json repository: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("%w: %q", sharedErrors.ErrUnsupportedDriver, driver)
	}
}

// Close releases the repository.
func (c *Container) Close() error {
	if c == nil || c.AnalysisRepo == nil {
		return nil
	}
	return c.AnalysisRepo.Close()
}
