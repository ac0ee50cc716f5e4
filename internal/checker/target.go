package checker

import (
	"errors"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// TargetInfo contains parsed target information
type TargetInfo struct {
	Original string // Original target string
	Scheme   string // Lowercased scheme
	Host     string // Lowercased hostname (without port or brackets)
	Port     string // Port if specified
	HostPort string // Host as written in the URL, including any port
	Path     string // Path if specified
}

// ParseTarget parses an absolute URL into structured components.
// Unlike a browser address bar it does not guess a scheme: analyzers need to
// know whether the user actually typed http or https.
func ParseTarget(target string) (*TargetInfo, error) {
	parsed, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return nil, err
	}
	info := &TargetInfo{
		Original: target,
		Scheme:   strings.ToLower(parsed.Scheme),
		Host:     strings.ToLower(strings.TrimSuffix(parsed.Hostname(), ".")),
		Port:     parsed.Port(),
		HostPort: strings.ToLower(parsed.Host),
		Path:     parsed.Path,
	}
	if info.Host == "" {
		return info, errors.New("URL has no host")
	}
	return info, nil
}

// IsIPHost reports whether host is an IPv4 or IPv6 literal.
func IsIPHost(host string) bool {
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	return net.ParseIP(host) != nil
}

// IsNumericHost reports whether host is an IP literal or made only of
// numeric labels, which covers encodings such as 3232235777 and
// 192.168.001.005 that net.ParseIP rejects.
func IsNumericHost(host string) bool {
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return false
	}
	if IsIPHost(host) {
		return true
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" {
			return false
		}
		for _, r := range label {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// RegistrableDomain strips a leading "www." and reduces host to its
// registrable domain (eTLD+1). IP literals and hosts the public suffix list
// cannot reduce are returned unchanged.
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	host = strings.TrimPrefix(host, "www.")
	if host == "" || IsIPHost(host) {
		return host
	}
	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return domain
	}
	return host
}
