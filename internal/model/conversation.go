// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// DefaultTitle is the title of a conversation nobody has named yet.
// The first resolved reply replaces it with a title derived from the
// user's message.
const DefaultTitle = "New conversation"

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is an ordered thread of messages with its own model binding,
// title, and pin/folder state.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
	Pinned    bool      `json:"pinned"`
	FolderID  string    `json:"folderId,omitempty"`
}

// NewConversation creates an empty, unpinned conversation with the default
// title.
func NewConversation(id, model string, at time.Time) Conversation {
	return Conversation{
		ID:        id,
		Title:     DefaultTitle,
		Messages:  []Message{},
		Model:     model,
		Timestamp: at,
	}
}

// =============================================================================
// MESSAGE LOOKUP
// =============================================================================

// MessageIndex returns the position of the message with id, or -1.
func (c Conversation) MessageIndex(id string) int {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return i
		}
	}
	return -1
}

// GetMessageByID returns a message by its ID.
func (c Conversation) GetMessageByID(id string) (Message, bool) {
	if i := c.MessageIndex(id); i >= 0 {
		return c.Messages[i], true
	}
	return Message{}, false
}

// GetLastMessage returns the most recent message.
func (c Conversation) GetLastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// GetLastAssistantMessage returns the most recent assistant message that
// has finished loading.
func (c Conversation) GetLastAssistantMessage() (Message, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		msg := c.Messages[i]
		if msg.Role == RoleAssistant && !msg.IsLoading {
			return msg, true
		}
	}
	return Message{}, false
}

// MessageCount returns the number of messages.
func (c Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// HasDefaultTitle reports whether the conversation still carries the
// placeholder title.
func (c Conversation) HasDefaultTitle() bool {
	return c.Title == DefaultTitle
}

// PendingCount returns how many placeholders are still loading.
func (c Conversation) PendingCount() int {
	n := 0
	for _, msg := range c.Messages {
		if msg.IsPlaceholder() {
			n++
		}
	}
	return n
}

// History returns the messages a provider should see: everything with
// content that is neither loading nor a failed reply.
func (c Conversation) History() []Message {
	out := make([]Message, 0, len(c.Messages))
	for _, msg := range c.Messages {
		if msg.IsLoading || msg.IsError || msg.Content == "" {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// =============================================================================
// COPYING
// =============================================================================

// Clone creates a deep copy of the conversation.
func (c Conversation) Clone() Conversation {
	clone := c
	if c.Messages != nil {
		clone.Messages = make([]Message, len(c.Messages))
		copy(clone.Messages, c.Messages)
	}
	return clone
}

// WithMessage returns a copy of c with msg appended. The receiver's message
// slice is never written to.
func (c Conversation) WithMessage(msg Message) Conversation {
	msgs := make([]Message, len(c.Messages), len(c.Messages)+1)
	copy(msgs, c.Messages)
	c.Messages = append(msgs, msg)
	return c
}

// =============================================================================
// FOLDER TYPE
// =============================================================================

// Folder groups conversations by id.
type Folder struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Conversations []string `json:"conversations"`
}

// Clone creates a deep copy of the folder.
func (f Folder) Clone() Folder {
	clone := f
	if f.Conversations != nil {
		clone.Conversations = make([]string, len(f.Conversations))
		copy(clone.Conversations, f.Conversations)
	}
	return clone
}
