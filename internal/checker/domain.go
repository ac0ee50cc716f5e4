package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"github.com/khanhnv2901/festguard/internal/keywords"
	"github.com/khanhnv2901/festguard/internal/shared/constants"
	"go.uber.org/zap"
)

const (
	domainErrorScore       = 5
	lookupFailureScore     = 8
	seasonalAgeLimitDays   = 60
	shortRegistrationDays  = 365
	domainDateDetailLayout = "2006-01-02"
)

// Registration is the subset of a registration record the domain analyzer uses.
// Multi-valued date fields keep their reported order.
type Registration struct {
	Domain    string
	Registrar string
	Created   []time.Time
	Expires   []time.Time
}

// Registrar looks up the registration record of a registrable domain.
type Registrar interface {
	Lookup(ctx context.Context, domain string) (*Registration, error)
}

// DomainChecker scores the age and registration pattern of the URL's domain.
type DomainChecker struct {
	Registrar Registrar
	Timeout   time.Duration
	Now       func() time.Time
	Logger    *zap.Logger
}

// NewDomainChecker returns a domain analyzer backed by registrar.
func NewDomainChecker(registrar Registrar, timeout time.Duration, logger *zap.Logger) *DomainChecker {
	return &DomainChecker{
		Registrar: registrar,
		Timeout:   timeout,
		Logger:    logger,
	}
}

// Module returns analysis.ModuleDomain.
func (c *DomainChecker) Module() analysis.Module {
	return analysis.ModuleDomain
}

// Check looks up the registration record of target's domain and scores its age,
// seasonal timing and registration horizon. Lookup failures score a fixed 8.
func (c *DomainChecker) Check(ctx context.Context, target string) analysis.ModuleResult {
	info, err := ParseTarget(target)
	if err != nil {
		return analysis.FailureResult(analysis.ModuleDomain, domainErrorScore, "parse_error",
			fmt.Sprintf("Domain analysis error: %v", err))
	}

	card := newScorecard(analysis.ModuleDomain)
	domain := RegistrableDomain(info.Host)
	card.set("domain", domain)

	if c.Registrar == nil {
		card.add(lookupFailureScore, "Could not retrieve domain registration information")
		card.set("error", "lookup_failed")
		return card.result()
	}

	lookupCtx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	record, err := c.Registrar.Lookup(lookupCtx, domain)
	if err != nil || record == nil {
		if err == nil {
			err = fmt.Errorf("empty registration record")
		}
		loggerOrNop(c.Logger).Warn("registration lookup failed",
			zap.String("module", string(analysis.ModuleDomain)),
			zap.String("domain", domain),
			zap.Error(err))
		card.add(lookupFailureScore, "Could not retrieve domain registration information")
		card.set("error", "lookup_failed")
		card.set("lookup_error", err.Error())
		return card.result()
	}

	if record.Registrar != "" {
		card.set("registrar", record.Registrar)
	}

	now := c.now()
	created, hasCreated := firstDate(record.Created)
	if hasCreated {
		age := wholeDays(now.Sub(created))
		card.set("creation_date", created.Format(domainDateDetailLayout))
		card.set("domain_age_days", age)

		switch {
		case age < 30:
			card.add(20, fmt.Sprintf("Very new domain (only %d days old)", age))
		case age < 90:
			card.add(15, fmt.Sprintf("Recent domain (%d days old)", age))
		case age < 180:
			card.add(10, fmt.Sprintf("Domain less than 6 months old (%d days)", age))
		case age < 365:
			card.add(5, fmt.Sprintf("Domain less than 1 year old (%d days)", age))
		default:
			card.set("domain_age_status", "established")
		}

		if window, ok := keywords.MatchSeasonalWindow(created); ok && age < seasonalAgeLimitDays {
			card.add(10, fmt.Sprintf("Domain created near %s (seasonal scam timing)", window.Name))
			card.set("seasonal_correlation", window.Name)
		}
	}

	if expires, ok := firstDate(record.Expires); ok {
		remaining := wholeDays(expires.Sub(now))
		card.set("expiration_date", expires.Format(domainDateDetailLayout))
		card.set("days_until_expiry", remaining)
		if hasCreated && remaining < shortRegistrationDays {
			card.add(5, fmt.Sprintf("Short registration period (expires in %d days)", remaining))
		}
	}

	return card.result()
}

func (c *DomainChecker) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return constants.DefaultWHOISTimeout
}

func (c *DomainChecker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func firstDate(dates []time.Time) (time.Time, bool) {
	for _, d := range dates {
		if !d.IsZero() {
			return d, true
		}
	}
	return time.Time{}, false
}

// wholeDays floors d to whole days; negative durations floor towards -inf.
func wholeDays(d time.Duration) int {
	days := d / (24 * time.Hour)
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return int(days)
}
