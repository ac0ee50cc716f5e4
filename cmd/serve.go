package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/khanhnv2901/festguard/internal/api"
	analysisapp "github.com/khanhnv2901/festguard/internal/application/analysis"
	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	sharedErrors "github.com/khanhnv2901/festguard/internal/shared/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const maxJobURLs = 500

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run festguard as a REST API service",
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		srvCfg := appCtx.Config.Server
		jobTimeout, _ := cmd.Flags().GetDuration("job-timeout")

		// the server always logs requests, even without --verbose
		logger := appCtx.Logger
		if !verbose {
			l, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			logger = l
			defer func() { _ = logger.Sync() }()
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		services, err := appCtx.container(reg)
		if err != nil {
			return err
		}

		baseCtx, cancelJobs := context.WithCancel(context.Background())
		defer cancelJobs()
		jobs := newJobAPIService(baseCtx, api.NewJobManager(), services.AnalysisService, jobTimeout, logger)

		server := api.NewServer(api.Config{
			Analyses:    services.AnalysisService,
			Health:      &healthAPIService{repo: services.AnalysisRepo},
			Jobs:        jobs,
			Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			AuthToken:   srvCfg.AuthToken,
			Logger:      logger,
			CORSOrigins: srvCfg.CORSOrigins,
			RateLimit:   srvCfg.RateLimit,
			RateBurst:   srvCfg.RateBurst,
		})
		defer server.Close()

		httpServer := &http.Server{
			Addr:              srvCfg.Addr,
			Handler:           server,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			// analyses take up to the deadline; SSE streams disable this per request
			WriteTimeout: appCtx.Config.Analysis.Deadline + 15*time.Second,
			IdleTimeout:  120 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("%s API server listening on %s (data dir: %s)\n", colorInfo("→"), srvCfg.Addr, appCtx.DataDir)
			fmt.Printf("%s Press Ctrl+C to gracefully shutdown\n", colorInfo("→"))
			serverErrors <- httpServer.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-shutdown:
			fmt.Printf("\n%s Received signal %v, initiating graceful shutdown...\n", colorInfo("→"), sig)

			ctx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				if closeErr := httpServer.Close(); closeErr != nil {
					return fmt.Errorf("failed to gracefully shutdown server: %w (close error: %v)", err, closeErr)
				}
				return fmt.Errorf("failed to gracefully shutdown server: %w", err)
			}
			cancelJobs()
			jobs.Wait()

			fmt.Printf("%s Server shutdown complete\n", colorSuccess("✓"))
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&cliConfig.Server.Addr, "addr", cliConfig.Server.Addr, "Address for the API server")
	serveCmd.Flags().StringVar(&cliConfig.Server.AuthToken, "auth-token", "", "Optional shared secret for API requests (X-Auth-Token)")
	serveCmd.Flags().DurationVar(&cliConfig.Server.ShutdownTimeout, "shutdown-timeout", cliConfig.Server.ShutdownTimeout, "Graceful shutdown timeout")
	serveCmd.Flags().StringSliceVar(&cliConfig.Server.CORSOrigins, "cors-origins", nil, "Allowed CORS origins (empty = allow all)")
	serveCmd.Flags().IntVar(&cliConfig.Server.RateLimit, "api-rate-limit", cliConfig.Server.RateLimit, "Rate limit per IP (requests/second, 0 = disabled)")
	serveCmd.Flags().IntVar(&cliConfig.Server.RateBurst, "api-rate-burst", cliConfig.Server.RateBurst, "Rate limit burst size")
	serveCmd.Flags().Duration("job-timeout", 15*time.Minute, "Time budget for a whole batch job")
	rootCmd.AddCommand(serveCmd)
}

type healthAPIService struct {
	repo analysis.Repository
}

func (s *healthAPIService) Check(ctx context.Context) error {
	if s.repo == nil {
		return errors.New("storage not configured")
	}
	if _, err := s.repo.History(ctx, 1); err != nil {
		return fmt.Errorf("storage unavailable: %w", err)
	}
	return nil
}

type batchAnalyzer interface {
	AnalyzeBatch(ctx context.Context, urls []string, store bool, progress func(analysisapp.BatchItem)) ([]analysisapp.BatchItem, error)
}

// jobAPIService runs batch jobs in the background and reports progress
// through the job manager.
type jobAPIService struct {
	base    context.Context
	manager *api.JobManager
	batch   batchAnalyzer
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
	now     func() time.Time
}

func newJobAPIService(base context.Context, manager *api.JobManager, batch batchAnalyzer, timeout time.Duration, logger *zap.Logger) *jobAPIService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &jobAPIService{
		base:    base,
		manager: manager,
		batch:   batch,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *jobAPIService) StartJob(ctx context.Context, req api.JobRequest) (*api.Job, error) {
	jobType := strings.ToLower(strings.TrimSpace(req.Type))
	if jobType == "" {
		jobType = api.JobTypeBatch
	}
	if jobType != api.JobTypeBatch {
		return nil, fmt.Errorf("%w: unsupported job type %q", sharedErrors.ErrValidation, req.Type)
	}
	if len(req.URLs) == 0 {
		return nil, sharedErrors.ErrNoTargets
	}
	if len(req.URLs) > maxJobURLs {
		return nil, fmt.Errorf("%w: at most %d URLs per job", sharedErrors.ErrValidation, maxJobURLs)
	}

	urls := append([]string(nil), req.URLs...)
	job := s.manager.CreateJob(jobType, len(urls))
	s.wg.Add(1)
	go s.execute(job.ID, urls, !req.NoStore)
	return job, nil
}

func (s *jobAPIService) execute(id string, urls []string, store bool) {
	defer s.wg.Done()

	started := s.now()
	s.manager.UpdateJob(id, func(j *api.Job) {
		j.Status = api.JobRunning
		j.StartedAt = &started
	})

	ctx := s.base
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	_, err := s.batch.AnalyzeBatch(ctx, urls, store, func(item analysisapp.BatchItem) {
		s.manager.UpdateJob(id, func(j *api.Job) {
			j.Completed++
			j.Items = append(j.Items, toJobItem(item))
		})
	})

	finished := s.now()
	s.manager.UpdateJob(id, func(j *api.Job) {
		j.FinishedAt = &finished
		if err != nil {
			j.Status = api.JobError
			j.Error = err.Error()
			return
		}
		j.Status = api.JobDone
	})
	if err != nil {
		s.logger.Warn("batch job failed", zap.String("job_id", id), zap.Error(err))
	}
}

func toJobItem(item analysisapp.BatchItem) api.JobItem {
	ji := api.JobItem{URL: item.URL, AnalysisID: item.ID}
	if item.Result != nil {
		ji.TotalScore = item.Result.TotalScore()
		ji.Category = string(item.Result.Category())
		ji.Partial = item.Result.Partial()
	}
	if item.Err != nil {
		ji.Error = item.Err.Error()
	}
	return ji
}

func (s *jobAPIService) GetJob(ctx context.Context, id string) (*api.Job, error) {
	job := s.manager.GetJob(id)
	if job == nil {
		return nil, sharedErrors.ErrJobNotFound
	}
	return job, nil
}

func (s *jobAPIService) ListJobs(ctx context.Context, limit int) ([]api.Job, error) {
	return s.manager.ListJobs(limit), nil
}

func (s *jobAPIService) Subscribe() (chan api.Job, func()) {
	return s.manager.Subscribe()
}

// Wait blocks until every started job has finished.
func (s *jobAPIService) Wait() {
	s.wg.Wait()
}
