// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package offline validates model backend endpoints and enforces
// local-only operation when it is switched on.
package offline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// LOCALHOST DETECTION TESTS
// =============================================================================

func TestIsLocalhost(t *testing.T) {
	tests := []struct {
		host   string
		expect bool
	}{
		{"localhost", true},
		{"LOCALHOST", true},
		{"127.0.0.1", true},
		{"127.0.0.1:8080", true},
		{"127.1.2.3", true},
		{"::1", true},
		{"[::1]", true},
		{"[::1]:8080", true},

		{"example.com", false},
		{"192.168.1.1", false},
		{"0.0.0.0", false},

		{"", false},
		{"localhost.localdomain", false},
	}

	for _, tc := range tests {
		t.Run(tc.host, func(t *testing.T) {
			assert.Equal(t, tc.expect, IsLocalhost(tc.host))
		})
	}
}

// =============================================================================
// ENDPOINT VALIDATION TESTS
// =============================================================================

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		localOnly bool
		want      error
	}{
		{"local http", "http://127.0.0.1:11434", true, nil},
		{"local https", "https://localhost:11434", true, nil},
		{"remote allowed", "http://gpu-box.lan:11434", false, nil},
		{"remote blocked", "http://gpu-box.lan:11434", true, ErrNonLocalhost},
		{"file scheme", "file:///etc/passwd", false, ErrInvalidURLScheme},
		{"javascript scheme", "javascript:alert(1)", false, ErrInvalidURLScheme},
		{"no host", "http://", false, ErrInvalidURL},
		{"unparseable", "http://[::1", false, ErrInvalidURL},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateEndpoint(tc.url, tc.localOnly)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tc.want), "got %v, want %v", err, tc.want)
		})
	}
}

func TestValidateEndpoint_Adversarial(t *testing.T) {
	adversarial := []struct {
		url    string
		reason string
	}{
		{"http://localhost.evil.com:11434", "subdomain of evil.com"},
		{"http://127.0.0.1.evil.com:11434", "IP-like subdomain"},
		{"http://evil.com#localhost", "fragment injection"},
		{"http://evil.com?host=localhost", "query injection"},
		{"http://localhost@evil.com", "userinfo injection"},
	}

	for _, tc := range adversarial {
		assert.Error(t, ValidateEndpoint(tc.url, true), tc.reason)
	}
}

func TestStatusIndicator(t *testing.T) {
	assert.Equal(t, "OFFLINE", StatusIndicator(true))
	assert.Equal(t, "", StatusIndicator(false))
}
