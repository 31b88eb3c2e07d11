// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
//
// Only the non-streaming chat endpoint is used: a response replaces the
// assistant placeholder in one step.
//
// # Key Types
//
//   - Client: HTTP client for Ollama API communication
//   - Message: Chat message with role and content
//   - ChatResponse: Response structure with message and metrics
//   - ClientError: Typed error; compare with errors.Is against ErrTimeout,
//     ErrNotRunning, ErrModelNotFound, ErrRejected, ErrCanceled
//
// # Usage
//
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: url})
//	resp, err := client.Chat(ctx, "llama3.2", []ollama.Message{
//	    ollama.NewUserMessage("Hello"),
//	})
package ollama
