// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package offline

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNonLocalhost is returned for a remote endpoint in local-only mode.
	ErrNonLocalhost = errors.New("only localhost endpoints are allowed in offline mode")

	// ErrInvalidURLScheme is returned when URL scheme is not http or https.
	// Prevents file://, javascript://, data:// and other schemes.
	ErrInvalidURLScheme = errors.New("only http and https schemes are allowed")

	// ErrInvalidURL is returned when an endpoint cannot be parsed or has no host.
	ErrInvalidURL = errors.New("invalid endpoint URL")
)

// =============================================================================
// URL VALIDATION
// =============================================================================

// IsLocalhost checks if a host string refers to localhost.
// Accepts "localhost", any 127.0.0.0/8 address, "::1" and its bracketed or
// expanded forms. A port suffix is ignored.
func IsLocalhost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	host = strings.Trim(host, "[]")
	host = strings.ToLower(host)

	if host == "localhost" {
		return true
	}

	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}

	return false
}

// ValidateEndpoint checks that rawURL is an http or https URL with a host.
// When localOnly is set the host must also be a loopback address.
func ValidateEndpoint(rawURL string, localOnly bool) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ErrInvalidURL
	}

	// Scheme is always checked, regardless of localOnly
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return ErrInvalidURLScheme
	}

	if parsed.Hostname() == "" {
		return ErrInvalidURL
	}

	if localOnly && !IsLocalhost(parsed.Hostname()) {
		return ErrNonLocalhost
	}

	return nil
}

// StatusIndicator returns the header badge for local-only mode.
func StatusIndicator(localOnly bool) string {
	if localOnly {
		return "OFFLINE"
	}
	return ""
}
