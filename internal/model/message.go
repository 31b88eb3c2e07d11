// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/jeranaias/chatshell/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
//
// A message is immutable once created, with one exception: the assistant
// placeholder inserted by a send has its Content, IsLoading and IsError
// fields patched once when the response resolves.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Model is set on assistant messages to the model that answered.
	Model string `json:"model,omitempty"`

	// IsLoading marks an assistant placeholder awaiting its response.
	IsLoading bool `json:"isLoading,omitempty"`

	// IsError marks a placeholder whose response failed; Content holds the
	// user-facing error text.
	IsError bool `json:"isError,omitempty"`
}

// NewUserMessage creates a user message.
func NewUserMessage(id, content string, at time.Time) Message {
	return Message{
		ID:        id,
		Role:      RoleUser,
		Content:   content,
		Timestamp: at,
	}
}

// NewPlaceholder creates an empty, loading assistant message bound to a model.
func NewPlaceholder(id, model string, at time.Time) Message {
	return Message{
		ID:        id,
		Role:      RoleAssistant,
		Timestamp: at,
		Model:     model,
		IsLoading: true,
	}
}

// IsPlaceholder reports whether the message is an assistant reply still
// waiting for content.
func (m Message) IsPlaceholder() bool {
	return m.Role == RoleAssistant && m.IsLoading
}

// Preview returns the content cut to maxLen characters, ending with "..."
// when cut.
func (m Message) Preview(maxLen int) string {
	return util.TruncateRunes(m.Content, maxLen)
}

// =============================================================================
// PARTIAL UPDATES
// =============================================================================

// MessagePatch carries the fields of a partial message update.
// Nil fields are left unchanged.
type MessagePatch struct {
	Content   *string
	IsLoading *bool
	IsError   *bool
	Model     *string
}

// Resolved returns the patch that completes a placeholder with content.
func Resolved(content string) MessagePatch {
	loading := false
	return MessagePatch{Content: &content, IsLoading: &loading}
}

// Failed returns the patch that completes a placeholder with an error text.
func Failed(text string) MessagePatch {
	loading := false
	isErr := true
	return MessagePatch{Content: &text, IsLoading: &loading, IsError: &isErr}
}

// IsEmpty reports whether the patch changes nothing.
func (p MessagePatch) IsEmpty() bool {
	return p.Content == nil && p.IsLoading == nil && p.IsError == nil && p.Model == nil
}

// Apply returns a copy of m with the patch merged in.
func (m Message) Apply(p MessagePatch) Message {
	if p.Content != nil {
		m.Content = *p.Content
	}
	if p.IsLoading != nil {
		m.IsLoading = *p.IsLoading
	}
	if p.IsError != nil {
		m.IsError = *p.IsError
	}
	if p.Model != nil {
		m.Model = *p.Model
	}
	return m
}
