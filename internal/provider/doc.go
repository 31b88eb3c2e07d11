// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider produces assistant replies for a conversation.
//
// A ResponseProvider receives the settled history of one conversation and
// the selected model name and returns the reply text. Every failure is an
// *Error carrying a Kind (Timeout, Rejected, Unavailable, ModelNotFound,
// Canceled, Unknown) so callers can show a short message and log the
// cause.
//
// # Implementations
//
//   - Simulated: fixed reply after a delay, for demos and tests
//   - Ollama: local Ollama server through internal/ollama
//   - RateLimited: wraps another provider with a token bucket
//   - Func: adapts a plain function
//
// # Usage
//
//	p, err := provider.New(cfg, logger)
//	resp, err := p.Generate(ctx, provider.Request{History: history, Model: "Gemma-3"})
//	if errors.Is(err, provider.ErrTimeout) { ... }
package provider
