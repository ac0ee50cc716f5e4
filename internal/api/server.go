package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/khanhnv2901/festguard/internal/api/middleware"
	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	sharedErrors "github.com/khanhnv2901/festguard/internal/shared/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AnalysisService is the application surface the API exposes.
type AnalysisService interface {
	Analyze(ctx context.Context, url string) (string, *analysis.Result, error)
	Get(ctx context.Context, id string) (*analysis.Record, []analysis.Feedback, error)
	History(ctx context.Context, limit int) ([]analysis.Record, error)
	RecordFeedback(ctx context.Context, analysisID, verdict, comment string) (*analysis.Feedback, error)
	Stats(ctx context.Context, days int) (analysis.Statistics, []analysis.DailyStatistic, error)
}

type HealthService interface {
	Check(ctx context.Context) error
}

type JobService interface {
	StartJob(ctx context.Context, req JobRequest) (*Job, error)
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]Job, error)
	Subscribe() (chan Job, func())
}

type Config struct {
	Analyses AnalysisService
	Health   HealthService
	Jobs     JobService
	// Metrics serves /metrics when set.
	Metrics      http.Handler
	AuthToken    string
	HistoryLimit int
	Logger       *zap.Logger
	CORSOrigins  []string // Allowed CORS origins (empty = allow all)
	RateLimit    int      // Requests per second per IP (0 = disabled)
	RateBurst    int      // Burst size for rate limiter
}

const (
	defaultHistoryLimit = 50
	defaultStatsDays    = 7
	maxRequestBody      = 1 << 20
)

type Server struct {
	cfg      Config
	router   chi.Router
	limiters *rateLimiterMap
}

func NewServer(cfg Config) *Server {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	srv := &Server{
		cfg:      cfg,
		router:   chi.NewRouter(),
		limiters: newRateLimiterMap(),
	}
	srv.routes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops the rate limiter janitor.
func (s *Server) Close() {
	s.limiters.stop()
}

func (s *Server) routes() {
	r := s.router
	// RequestID -> Logging -> RateLimit -> CORS, then Auth per route group
	r.Use(middleware.RequestID, s.withLogging, s.withRateLimit, s.withCORS)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, errors.New("not found"))
	})
	r.MethodNotAllowed(s.methodNotAllowed)

	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.withAuth)
		r.Get("/health", s.handleHealth)

		r.Post("/analyze", s.handleAnalyze)
		r.Get("/analyses", s.handleHistory)
		r.Get("/analyses/{id}", s.handleAnalysisByID)
		r.Post("/analyses/{id}/feedback", s.handleFeedback)
		r.Get("/stats", s.handleStats)

		r.Get("/jobs", s.handleListJobs)
		r.Post("/jobs", s.handleStartJob)
		r.Get("/jobs/{id}", s.handleJobByID)
		r.Get("/jobs-stream", s.handleJobStream)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Health != nil {
		if err := s.cfg.Health.Check(r.Context()); err != nil {
			s.writeError(w, r, http.StatusServiceUnavailable, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.RateLimit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := clientAddr(r)
		limiter := s.limiters.getLimiter(clientIP, s.cfg.RateLimit, s.cfg.RateBurst)
		if !limiter.Allow() {
			s.requestLogger(r).Warn("rate_limit_exceeded", zap.String("client_ip", clientIP))
			s.writeError(w, r, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientAddr prefers the first X-Forwarded-For hop and strips the port.
func clientAddr(r *http.Request) string {
	clientIP := r.RemoteAddr
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		clientIP = strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(clientIP); err == nil {
		clientIP = host
	}
	return clientIP
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowOrigin := "*"
		if len(s.cfg.CORSOrigins) > 0 {
			allowOrigin = ""
			for _, allowed := range s.cfg.CORSOrigins {
				if allowed == origin {
					allowOrigin = origin
					break
				}
			}
		}

		if allowOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Auth-Token, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lrw, r)

		if s.cfg.Logger != nil {
			s.cfg.Logger.Info("http_request",
				zap.String("request_id", middleware.GetRequestID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status", lrw.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.Int64("bytes", lrw.bytesWritten),
			)
		}
	})
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	if s.cfg.AuthToken == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Auth-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AuthToken)) != 1 {
			s.writeError(w, r, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingResponseWriter wraps http.ResponseWriter to capture status code and bytes written
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytesWritten += int64(n)
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (lrw *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return lrw.ResponseWriter
}

// Flush keeps the job stream working through the logging wrapper.
func (lrw *loggingResponseWriter) Flush() {
	if f, ok := lrw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", sharedErrors.ErrInvalidInput, err)
	}
	return nil
}

// statusFor maps application errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sharedErrors.ErrAnalysisNotFound),
		errors.Is(err, sharedErrors.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, sharedErrors.ErrEmptyURL),
		errors.Is(err, sharedErrors.ErrInvalidURL),
		errors.Is(err, sharedErrors.ErrInvalidFeedback),
		errors.Is(err, sharedErrors.ErrInvalidVerdict),
		errors.Is(err, sharedErrors.ErrNoTargets),
		errors.Is(err, sharedErrors.ErrValidation),
		errors.Is(err, sharedErrors.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.writeError(w, r, statusFor(err), err)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := err.Error()

	// 5xx details stay in the server log
	if status >= 500 {
		s.requestLogger(r).Error("internal_server_error",
			zap.Error(err),
			zap.Int("status", status),
		)
		msg = http.StatusText(status)
		if status == http.StatusInternalServerError {
			msg = "internal server error"
		}
	}

	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger creates a logger with request context (request ID, method, path)
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if s.cfg.Logger == nil {
		return zap.NewNop()
	}
	return s.cfg.Logger.With(
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func (s *Server) writeStreamChunk(w http.ResponseWriter, data []byte) bool {
	if _, err := w.Write(data); err != nil {
		if s.cfg.Logger != nil {
			s.cfg.Logger.Error("failed to write stream chunk", zap.Error(err))
		}
		return false
	}
	return true
}

// rateLimiterMap manages per-IP rate limiters with automatic cleanup
type rateLimiterMap struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	done     chan struct{}
	once     sync.Once
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	limiterSweepInterval = time.Minute
	limiterIdleTTL       = 5 * time.Minute
)

func newRateLimiterMap() *rateLimiterMap {
	m := &rateLimiterMap{
		limiters: make(map[string]*ipLimiter),
		done:     make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

func (m *rateLimiterMap) getLimiter(ip string, rps, burst int) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if burst <= 0 {
		burst = rps
	}
	l, ok := m.limiters[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
		m.limiters[ip] = l
	}
	l.lastSeen = time.Now()
	return l.limiter
}

func (m *rateLimiterMap) cleanupLoop() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep(time.Now())
		}
	}
}

func (m *rateLimiterMap) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ip, l := range m.limiters {
		if now.Sub(l.lastSeen) > limiterIdleTTL {
			delete(m.limiters, ip)
		}
	}
}

func (m *rateLimiterMap) stop() {
	m.once.Do(func() { close(m.done) })
}
