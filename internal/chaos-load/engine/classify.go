package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/neogan/sre-toolkit/internal/chaos-load/model"
)

// classifyError turns a transport-level error into a RequestResult's
// ErrorType and human-readable message. Checked in this order:
// Timeout > Connection > Redirect > Request > Other. Redirect comes before
// Request because isRequest accepts any *url.Error, which the standard
// library wraps around every client error, so a redirect failure would
// otherwise always be reported as Request.
func classifyError(err error, durationMs float64, keepAliveDisabled bool) (model.ErrorType, string, bool) {
	if isTimeout(err) {
		return model.ErrorTimeout, fmt.Sprintf("Timeout after %.0fms", durationMs), false
	}
	if isConnection(err) {
		return model.ErrorConnection, connectionMessage(err, keepAliveDisabled), true
	}
	if isRedirect(err) {
		return model.ErrorRedirect, err.Error(), false
	}
	if isRequest(err) {
		return model.ErrorRequest, err.Error(), false
	}
	return model.ErrorOther, err.Error(), false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnection(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isRedirect(err error) bool {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return false
	}
	msg := strings.ToLower(urlErr.Error())
	return strings.Contains(msg, "redirect")
}

// isRequest catches the remaining client-side failures the standard library
// wraps in *url.Error: unsupported protocol scheme, malformed headers, a
// CheckRedirect hook returning a non-sentinel error, and similar.
func isRequest(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// connectionMessage inspects the full error-source chain (case-insensitive)
// for well-known substrings and returns a specific, human-readable message.
func connectionMessage(err error, keepAliveDisabled bool) string {
	// Go's *net.DNSError text ("lookup host: no such host") contains
	// neither "dns" nor "resolve", so it is recognised by type first.
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Sprintf("DNS resolution failed: %s", err)
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "dns"), strings.Contains(msg, "resolve"):
		return fmt.Sprintf("DNS resolution failed: %s", err)
	case strings.Contains(msg, "refused"):
		return "Connection refused by server"
	case strings.Contains(msg, "reset"):
		return "Connection reset by server"
	case strings.Contains(msg, "too many open files"), strings.Contains(msg, "emfile"):
		return "Too many open connections (reduce concurrency)"
	case strings.Contains(msg, "closed"), strings.Contains(msg, "broken pipe"):
		if keepAliveDisabled {
			return "Connection closed by server (server may be overloaded)"
		}
		return "Connection closed (stale connection from pool)"
	default:
		return fmt.Sprintf("Connection failed: %s", err)
	}
}
