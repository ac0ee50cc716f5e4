package engine

import (
	"time"

	"github.com/khanhnv2901/festguard/internal/checker"
	"github.com/khanhnv2901/festguard/internal/shared/constants"
	"go.uber.org/zap"
)

// Config holds the per-module network budgets.
type Config struct {
	TLSTimeout      time.Duration
	RedirectTimeout time.Duration
	ContentTimeout  time.Duration
	WHOISTimeout    time.Duration
	UserAgent       string
}

// DefaultConfig returns the standard module budgets.
func DefaultConfig() Config {
	return Config{
		TLSTimeout:      constants.DefaultTLSTimeout,
		RedirectTimeout: constants.DefaultRedirectTimeout,
		ContentTimeout:  constants.DefaultContentTimeout,
		WHOISTimeout:    constants.DefaultWHOISTimeout,
		UserAgent:       constants.DefaultUserAgent,
	}
}

// DefaultCheckers wires the production checkers, WHOIS included.
func DefaultCheckers(cfg Config, logger *zap.Logger) Checkers {
	return Checkers{
		URL:     checker.NewURLChecker(),
		Domain:  checker.NewDomainChecker(checker.NewWHOISRegistrar(cfg.WHOISTimeout), cfg.WHOISTimeout, logger),
		SSL:     checker.NewTransportChecker(cfg.TLSTimeout, cfg.RedirectTimeout, logger),
		Content: checker.NewContentChecker(cfg.ContentTimeout, cfg.UserAgent, logger),
	}
}

// NewDefault builds an engine over the production checkers.
func NewDefault(cfg Config, opts ...Option) (*Engine, error) {
	probe := &Engine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(probe)
	}
	return New(DefaultCheckers(cfg, probe.logger), opts...)
}
