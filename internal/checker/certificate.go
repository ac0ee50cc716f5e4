package checker

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"strings"
	"time"
)

// versionSSL30 represents the legacy SSL 3.0 protocol version (0x0300).
// Defined locally so we can report SSL 3.0 without referencing the
// deprecated tls.VersionSSL30 symbol.
const versionSSL30 uint16 = 0x0300

// CertificateInfo describes the leaf certificate presented during a handshake
type CertificateInfo struct {
	Subject         string    `json:"subject"`
	Issuer          string    `json:"issuer"`
	IssuerName      string    `json:"issuer_name"`
	NotAfter        time.Time `json:"not_after"`
	DNSNames        []string  `json:"dns_names"`
	IPAddresses     []string  `json:"ip_addresses,omitempty"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
	SelfSigned      bool      `json:"self_signed"`
	HostnameMatch   bool      `json:"hostname_match"`
	TLSVersion      string    `json:"tls_version"`
	LegacyProtocol  bool      `json:"legacy_protocol"`
	ChainTrusted    bool      `json:"chain_trusted"`
	ChainError      string    `json:"chain_error,omitempty"`
}

// inspectCertificate extracts the facts the transport analyzer scores from a
// completed handshake. roots nil means the system pool.
func inspectCertificate(state *tls.ConnectionState, host string, now time.Time, roots *x509.CertPool) *CertificateInfo {
	if state == nil || len(state.PeerCertificates) == 0 {
		return nil
	}
	cert := state.PeerCertificates[0]

	info := &CertificateInfo{
		Subject:         cert.Subject.String(),
		Issuer:          cert.Issuer.String(),
		IssuerName:      issuerName(cert),
		NotAfter:        cert.NotAfter,
		DNSNames:        append([]string{}, cert.DNSNames...),
		DaysUntilExpiry: wholeDays(cert.NotAfter.Sub(now)),
		SelfSigned:      cert.Issuer.String() != "" && cert.Subject.String() == cert.Issuer.String(),
		HostnameMatch:   hostnameMatches(cert, host),
		TLSVersion:      tlsVersionString(state.Version),
		LegacyProtocol:  state.Version < tls.VersionTLS12,
	}
	for _, ip := range cert.IPAddresses {
		info.IPAddresses = append(info.IPAddresses, ip.String())
	}

	intermediates := x509.NewCertPool()
	for _, c := range state.PeerCertificates[1:] {
		intermediates.AddCert(c)
	}
	_, err := cert.Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		CurrentTime:   now,
	})
	info.ChainTrusted = err == nil
	if err != nil {
		info.ChainError = err.Error()
	}

	return info
}

// hasSANs reports whether the certificate lists any subject alternative name
// the hostname check can be evaluated against.
func (ci *CertificateInfo) hasSANs() bool {
	return len(ci.DNSNames) > 0 || len(ci.IPAddresses) > 0
}

// hostnameMatches checks host against the certificate's subject alternative
// names: exact, or a subdomain of a SAN with any leading "*." stripped.
func hostnameMatches(cert *x509.Certificate, host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if ip := net.ParseIP(host); ip != nil {
		for _, certIP := range cert.IPAddresses {
			if certIP.Equal(ip) {
				return true
			}
		}
		return false
	}
	for _, name := range cert.DNSNames {
		name = strings.ToLower(strings.TrimPrefix(name, "*."))
		if host == name || strings.HasSuffix(host, "."+name) {
			return true
		}
	}
	return false
}

func issuerName(cert *x509.Certificate) string {
	if len(cert.Issuer.Organization) > 0 {
		return cert.Issuer.Organization[0]
	}
	if cert.Issuer.CommonName != "" {
		return cert.Issuer.CommonName
	}
	return "Unknown"
}

// tlsVersionString converts TLS version constant to string
func tlsVersionString(version uint16) string {
	switch version {
	case versionSSL30:
		return "SSL 3.0"
	case tls.VersionTLS10:
		return "TLS 1.0"
	case tls.VersionTLS11:
		return "TLS 1.1"
	case tls.VersionTLS12:
		return "TLS 1.2"
	case tls.VersionTLS13:
		return "TLS 1.3"
	default:
		return fmt.Sprintf("Unknown (0x%04x)", version)
	}
}
