package checker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
)

// failureKind names the class of a network failure; it is reported as the
// details "error" entry of a failed module.
type failureKind string

const (
	failureTimeout    failureKind = "timeout"
	failureDNS        failureKind = "domain_not_found"
	failureTLS        failureKind = "tls_error"
	failureConnection failureKind = "connection_failed"
	failureRequest    failureKind = "request_failed"
)

// statusError reports an HTTP response the content analyzer refuses to parse.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.code)
}

// classifyFetchError maps a dial or HTTP client error to a failure kind.
func classifyFetchError(err error) failureKind {
	var (
		dnsErr  *net.DNSError
		netErr  net.Error
		opErr   *net.OpError
		httpErr *statusError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &httpErr):
		return failureRequest
	case errors.Is(err, context.DeadlineExceeded):
		return failureTimeout
	case errors.As(err, &dnsErr):
		if dnsErr.IsTimeout {
			return failureTimeout
		}
		return failureDNS
	case errors.As(err, &netErr) && netErr.Timeout():
		return failureTimeout
	case isTLSError(err):
		return failureTLS
	case errors.As(err, &opErr):
		return failureConnection
	default:
		return failureRequest
	}
}

func isTLSError(err error) bool {
	var (
		verifyErr   *tls.CertificateVerificationError
		recordErr   tls.RecordHeaderError
		alertErr    tls.AlertError
		unknownErr  x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		invalidErr  x509.CertificateInvalidError
	)
	if errors.As(err, &verifyErr) || errors.As(err, &recordErr) || errors.As(err, &alertErr) ||
		errors.As(err, &unknownErr) || errors.As(err, &hostnameErr) || errors.As(err, &invalidErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "tls:") || strings.Contains(msg, "x509:")
}
