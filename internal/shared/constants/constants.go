package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// MaxTotalScore caps the aggregate risk score of an analysis.
	MaxTotalScore = 100

	// MaxBodyBytes caps how much of a fetched page is read for content inspection.
	MaxBodyBytes int64 = 5 << 20

	// DefaultUserAgent identifies a desktop browser so that scam pages serve their real markup.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

const (
	// DefaultTLSTimeout bounds the TLS handshake against port 443.
	DefaultTLSTimeout = 5 * time.Second
	// DefaultRedirectTimeout bounds the redirect-following fetch of the transport analyzer.
	DefaultRedirectTimeout = 5 * time.Second
	// DefaultContentTimeout bounds the page fetch of the content analyzer.
	DefaultContentTimeout = 10 * time.Second
	// DefaultWHOISTimeout bounds a registration lookup.
	DefaultWHOISTimeout = 10 * time.Second
	// DefaultAnalysisDeadline bounds a whole analysis when the caller supplies none.
	DefaultAnalysisDeadline = 30 * time.Second
)
