package checker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"github.com/khanhnv2901/festguard/internal/shared/constants"
	"go.uber.org/zap"
)

const (
	defaultTLSPort       = "443"
	maxFollowedRedirects = 10
	redirectDrainBytes   = 64 << 10
)

var errTooManyRedirects = errors.New("stopped after too many redirects")

// TransportChecker scores HTTPS posture: certificate health, negotiated
// protocol and redirect behaviour.
type TransportChecker struct {
	DialTimeout time.Duration
	HTTPTimeout time.Duration
	// RootCAs verifies the certificate chain; nil uses the system pool.
	RootCAs *x509.CertPool
	// Transport performs the redirect-following fetch; nil uses a clone of
	// http.DefaultTransport.
	Transport http.RoundTripper
	Now       func() time.Time
	Logger    *zap.Logger
}

// NewTransportChecker returns a transport analyzer with the given timeouts.
func NewTransportChecker(dialTimeout, httpTimeout time.Duration, logger *zap.Logger) *TransportChecker {
	return &TransportChecker{
		DialTimeout: dialTimeout,
		HTTPTimeout: httpTimeout,
		Logger:      logger,
	}
}

// Module returns analysis.ModuleSSL.
func (c *TransportChecker) Module() analysis.Module {
	return analysis.ModuleSSL
}

// Check inspects the TLS handshake and the redirect chain of target. The two
// steps are independent: a failure in one never skips the other.
func (c *TransportChecker) Check(ctx context.Context, target string) analysis.ModuleResult {
	info, err := ParseTarget(target)
	if err != nil {
		return analysis.FailureResult(analysis.ModuleSSL, 10, "parse_error",
			fmt.Sprintf("SSL analysis error: %v", err))
	}

	card := newScorecard(analysis.ModuleSSL)
	switch info.Scheme {
	case "https":
		card.set("uses_https", true)
	case "http":
		card.set("uses_https", false)
		card.add(15, "Website does not use HTTPS (insecure connection)")
		return card.result()
	default:
		card.add(10, fmt.Sprintf("Unknown protocol: %s", info.Scheme))
		return card.result()
	}

	c.guard(card, "handshake", 10, func() { c.inspectHandshake(ctx, info, card) })
	c.guard(card, "redirects", 5, func() { c.trackRedirects(ctx, target, info, card) })

	return card.result()
}

// guard runs step and converts a panic into a fixed penalty.
func (c *TransportChecker) guard(card *scorecard, step string, penalty float64, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			loggerOrNop(c.Logger).Error("transport step panicked",
				zap.String("module", string(analysis.ModuleSSL)),
				zap.String("step", step),
				zap.Any("panic", r))
			card.add(penalty, fmt.Sprintf("Could not complete %s check", step))
		}
	}()
	fn()
}

func (c *TransportChecker) inspectHandshake(ctx context.Context, info *TargetInfo, card *scorecard) {
	port := info.Port
	if port == "" {
		port = defaultTLSPort
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout())
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: c.dialTimeout()},
		Config: &tls.Config{
			ServerName: info.Host,
			// Verification happens in inspectCertificate so that a bad
			// certificate can still be described.
			InsecureSkipVerify: true, // #nosec G402
			MinVersion:         tls.VersionTLS10,
		},
	}
	conn, err := dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(info.Host, port))
	if err != nil {
		points, kind, issue := handshakeFailure(err)
		loggerOrNop(c.Logger).Warn("tls handshake failed",
			zap.String("module", string(analysis.ModuleSSL)),
			zap.String("host", info.Host),
			zap.String("kind", string(kind)),
			zap.Error(err))
		card.add(points, issue)
		card.set("ssl_error", string(kind))
		return
	}
	defer conn.Close()

	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		card.add(10, "Could not verify SSL: unexpected connection type")
		return
	}
	state := tlsConn.ConnectionState()
	cert := inspectCertificate(&state, info.Host, c.now(), c.RootCAs)
	if cert == nil {
		card.add(10, "Could not verify SSL: no certificate presented")
		return
	}

	scoreCertificate(card, cert)
}

// scoreCertificate applies the certificate rules to a completed handshake.
func scoreCertificate(card *scorecard, cert *CertificateInfo) {
	card.set("tls_version", cert.TLSVersion)
	card.set("cert_issuer", cert.IssuerName)
	card.set("cert_expiry", cert.NotAfter.Format(time.RFC3339))
	card.set("days_until_cert_expiry", cert.DaysUntilExpiry)
	card.set("cert_domains", cert.DNSNames)
	card.set("chain_trusted", cert.ChainTrusted)

	expired := cert.DaysUntilExpiry < 0
	switch {
	case expired:
		card.add(20, "SSL certificate has expired!")
	case cert.DaysUntilExpiry < 30:
		card.add(10, fmt.Sprintf("SSL certificate expires soon (%d days)", cert.DaysUntilExpiry))
	}

	if cert.SelfSigned {
		card.add(12, "Self-signed SSL certificate detected")
	}

	if cert.hasSANs() && !cert.HostnameMatch {
		card.add(15, "Hostname does not match SSL certificate")
	}

	if cert.LegacyProtocol {
		card.add(8, fmt.Sprintf("Outdated SSL/TLS version: %s", cert.TLSVersion))
	}

	if !cert.ChainTrusted && !cert.SelfSigned && !expired {
		card.add(18, "SSL certificate is not issued by a trusted authority")
		card.set("chain_error", cert.ChainError)
	}
}

func (c *TransportChecker) trackRedirects(ctx context.Context, target string, info *TargetInfo, card *scorecard) {
	redirects := 0
	client := &http.Client{
		Timeout:   c.httpTimeout(),
		Transport: c.transport(),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxFollowedRedirects {
				return errTooManyRedirects
			}
			redirects++
			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		card.add(5, fmt.Sprintf("Connection issue: %v", err))
		return
	}
	req.Header.Set("User-Agent", constants.DefaultUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		kind := classifyFetchError(err)
		switch kind {
		case failureTLS:
			card.add(12, "SSL error during connection")
		case failureTimeout:
			card.add(3, "Request timeout")
		default:
			card.add(5, fmt.Sprintf("Connection issue: %s", shortError(err)))
		}
		card.set("fetch_error", string(kind))
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, redirectDrainBytes))

	card.set("redirect_count", redirects)
	switch {
	case redirects > 3:
		card.add(8, fmt.Sprintf("Multiple redirects detected (%d)", redirects))
	case redirects > 1:
		card.add(4, fmt.Sprintf("Website redirects %d times", redirects))
	}

	final := resp.Request.URL
	if final.String() != target {
		card.set("final_url", final.String())
	}
	if !strings.EqualFold(final.Host, info.HostPort) {
		card.add(10, fmt.Sprintf("Redirects to different domain: %s", final.Host))
	}
}

// handshakeFailure maps a TLS dial error to its fixed penalty.
func handshakeFailure(err error) (float64, failureKind, string) {
	kind := classifyFetchError(err)
	switch kind {
	case failureTimeout:
		return 5, kind, "Connection timeout (server unreachable)"
	case failureTLS:
		return 15, kind, fmt.Sprintf("SSL connection error: %s", shortError(err))
	default:
		return 10, kind, fmt.Sprintf("Could not verify SSL: %s", shortError(err))
	}
}

// shortError trims long wrapped error chains to their last segment.
func shortError(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx >= 0 && idx+2 < len(msg) {
		msg = msg[idx+2:]
	}
	if len(msg) > 120 {
		msg = msg[:120]
	}
	return msg
}

func (c *TransportChecker) transport() http.RoundTripper {
	if c.Transport != nil {
		return c.Transport
	}
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return http.DefaultTransport
	}
	t := base.Clone()
	if c.RootCAs != nil {
		t.TLSClientConfig = &tls.Config{RootCAs: c.RootCAs, MinVersion: tls.VersionTLS12}
	}
	return t
}

func (c *TransportChecker) dialTimeout() time.Duration {
	if c.DialTimeout > 0 {
		return c.DialTimeout
	}
	return constants.DefaultTLSTimeout
}

func (c *TransportChecker) httpTimeout() time.Duration {
	if c.HTTPTimeout > 0 {
		return c.HTTPTimeout
	}
	return constants.DefaultRedirectTimeout
}

func (c *TransportChecker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
