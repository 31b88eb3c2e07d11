// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"time"

	"github.com/jeranaias/chatshell/internal/model"
)

// =============================================================================
// TYPES
// =============================================================================

// Request is one completion request.
type Request struct {
	ConversationID string

	// History is the conversation so far, oldest first. It never contains
	// loading placeholders or error messages.
	History []model.Message

	// Model is the display name selected in the UI (e.g. "Claude-3.5")
	Model string
}

// LastUserContent returns the content of the newest user message in the
// history, or "" when there is none.
func (r Request) LastUserContent() string {
	for i := len(r.History) - 1; i >= 0; i-- {
		if r.History[i].Role == model.RoleUser {
			return r.History[i].Content
		}
	}
	return ""
}

// Response is a completed reply.
type Response struct {
	Text string

	// Model that actually answered; may differ from Request.Model
	Model string

	Duration time.Duration
}

// ResponseProvider generates assistant replies.
//
// Generate blocks until the reply is ready, ctx is done, or the backend
// fails. Failures are returned as *Error. Implementations must be safe for
// concurrent use.
type ResponseProvider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}

// =============================================================================
// FUNC ADAPTER
// =============================================================================

// Func adapts an ordinary function to ResponseProvider.
type Func func(ctx context.Context, req Request) (*Response, error)

// Name implements ResponseProvider.
func (f Func) Name() string { return "func" }

// Generate implements ResponseProvider.
func (f Func) Generate(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
