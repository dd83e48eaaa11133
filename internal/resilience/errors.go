package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/launchsignal/tge-radar/pkg/crawler"
)

// IsTransient reports whether err is safe to retry: sidecar responses
// with retryable status codes, network timeouts, dropped connections.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var se *crawler.StatusError
	if errors.As(err, &se) {
		return IsTransientStatus(se.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// Wrapped HTTP client errors lose their type; fall back to matching
	// the well-known transport failure messages.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientStatus reports whether an HTTP status code indicates a
// retryable server-side condition.
func IsTransientStatus(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}
