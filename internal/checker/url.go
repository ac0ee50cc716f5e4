package checker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"github.com/khanhnv2901/festguard/internal/keywords"
)

// urlParseFailureScore is reported when the URL cannot be parsed at all.
const urlParseFailureScore = 5

// URLChecker scores the structure of a URL string. It performs no I/O.
type URLChecker struct{}

// NewURLChecker returns a structural URL analyzer.
func NewURLChecker() *URLChecker {
	return &URLChecker{}
}

// Module returns analysis.ModuleURL.
func (c *URLChecker) Module() analysis.Module {
	return analysis.ModuleURL
}

// Check applies the structural rules to target. The result depends only on
// target, so identical input always yields an identical result.
func (c *URLChecker) Check(_ context.Context, target string) analysis.ModuleResult {
	parsed, err := url.Parse(target)
	if err != nil {
		return analysis.FailureResult(analysis.ModuleURL, urlParseFailureScore, "parse_error",
			fmt.Sprintf("URL parsing error: %v", err))
	}

	card := newScorecard(analysis.ModuleURL)
	host := strings.ToLower(parsed.Hostname())
	lowered := strings.ToLower(target)

	length := utf8.RuneCountInString(target)
	card.set("url_length", length)
	switch {
	case length > 75:
		card.add(10, fmt.Sprintf("Unusually long URL (%d characters)", length))
	case length > 54:
		card.add(5, "Long URL")
	}

	if IsNumericHost(host) {
		card.add(15, "Uses IP address instead of domain name (highly suspicious)")
		card.set("ip_host", true)
	}

	dots := strings.Count(host, ".")
	card.set("dot_count", dots)
	switch {
	case dots > 3:
		card.add(10, fmt.Sprintf("Multiple subdomains detected (%d levels)", dots))
	case dots > 2:
		card.add(5, "Has subdomain")
	}

	if strings.Contains(target, "@") {
		card.add(15, "Contains '@' symbol (redirection trick)")
	}

	if matched := keywords.MatchAll(lowered, keywords.SuspiciousURLPatterns); len(matched) > 0 {
		card.add(float64(3*len(matched)), "Suspicious keywords in URL: "+strings.Join(matched, ", "))
		card.set("suspicious_patterns", matched)
	}

	ext := domainExtension(host)
	card.set("domain_extension", ext)
	switch {
	case ext == "":
	case keywords.IsTrustedExtension(ext):
		card.adjust(-10)
		card.set("extension_trust", "trusted")
	case keywords.IsRiskyExtension(ext):
		card.add(12, "High-risk domain extension: "+ext)
		card.set("extension_trust", "risky")
	default:
		card.set("extension_trust", "neutral")
	}

	if shortener, ok := keywords.MatchShortener(host); ok {
		card.add(12, "URL shortener detected (hides real destination)")
		card.set("shortener", shortener)
	}

	hyphens := strings.Count(host, "-")
	switch {
	case hyphens > 3:
		card.add(8, fmt.Sprintf("Excessive hyphens in domain (%d)", hyphens))
	case hyphens > 1:
		card.add(3, fmt.Sprintf("Multiple hyphens in domain (%d)", hyphens))
	}

	if digits := countDigits(host); digits > 4 {
		card.add(6, fmt.Sprintf("Many numbers in domain (%d)", digits))
	}

	return card.result()
}

// domainExtension returns the last label of host with a leading dot.
func domainExtension(host string) string {
	host = strings.TrimSuffix(host, ".")
	idx := strings.LastIndex(host, ".")
	if idx < 0 || idx == len(host)-1 || IsNumericHost(host) {
		return ""
	}
	return host[idx:]
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
