package checker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/khanhnv2901/festguard/internal/shared/constants"
	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

// ErrNoRegistration is returned when the registry has no record for a domain.
var ErrNoRegistration = errors.New("no registration record")

// whoisDateLayouts covers the date formats registries commonly emit.
var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02",
	"02-Jan-2006",
	"02-Jan-2006 15:04:05",
	"2006.01.02",
	"2006/01/02",
	"02.01.2006",
	"January 2 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"Mon Jan 2 15:04:05 MST 2006",
}

// WHOISRegistrar resolves registration records over the WHOIS protocol.
type WHOISRegistrar struct {
	client *whois.Client
	query  func(domain string) (string, error)
}

// NewWHOISRegistrar returns a registrar whose WHOIS queries time out after timeout.
func NewWHOISRegistrar(timeout time.Duration) *WHOISRegistrar {
	if timeout <= 0 {
		timeout = constants.DefaultWHOISTimeout
	}
	client := whois.NewClient()
	client.SetTimeout(timeout)
	r := &WHOISRegistrar{client: client}
	r.query = func(domain string) (string, error) {
		return r.client.Whois(domain)
	}
	return r
}

// Lookup queries and parses the WHOIS record of domain. The query runs on its
// own goroutine so that ctx cancellation returns immediately; the socket is
// released by the client's own timeout.
func (r *WHOISRegistrar) Lookup(ctx context.Context, domain string) (*Registration, error) {
	type reply struct {
		raw string
		err error
	}
	done := make(chan reply, 1)
	go func() {
		raw, err := r.query(domain)
		done <- reply{raw: raw, err: err}
	}()

	var raw string
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("whois %s: %w", domain, ctx.Err())
	case rep := <-done:
		if rep.err != nil {
			return nil, fmt.Errorf("whois %s: %w", domain, rep.err)
		}
		raw = rep.raw
	}

	return parseWHOIS(domain, raw)
}

func parseWHOIS(domain, raw string) (*Registration, error) {
	info, err := whoisparser.Parse(raw)
	if err != nil {
		if errors.Is(err, whoisparser.ErrNotFoundDomain) {
			return nil, fmt.Errorf("whois %s: %w", domain, ErrNoRegistration)
		}
		return nil, fmt.Errorf("parse whois record for %s: %w", domain, err)
	}

	reg := &Registration{Domain: domain}
	if info.Domain != nil {
		reg.Created = parseWHOISDates(info.Domain.CreatedDate)
		reg.Expires = parseWHOISDates(info.Domain.ExpirationDate)
	}
	if info.Registrar != nil {
		reg.Registrar = info.Registrar.Name
	}
	return reg, nil
}

// parseWHOISDates parses a possibly comma-separated date field, keeping order
// and skipping values in unknown formats.
func parseWHOISDates(field string) []time.Time {
	field = strings.TrimSpace(field)
	// some registries write a single date with a comma in it
	if t, ok := parseWHOISDate(field); ok {
		return []time.Time{t}
	}
	var dates []time.Time
	for _, part := range strings.Split(field, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if t, ok := parseWHOISDate(part); ok {
			dates = append(dates, t)
		}
	}
	return dates
}

func parseWHOISDate(value string) (time.Time, bool) {
	for _, layout := range whoisDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
