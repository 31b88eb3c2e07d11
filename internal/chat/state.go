// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/chatshell/internal/model"
)

// =============================================================================
// STATE
// =============================================================================

// State is the complete client-side chat state.
//
// A State returned by Reduce may share conversations and message slices
// with the State it was derived from. Treat it as read-only; use Clone for
// a copy that can be modified.
type State struct {
	// Conversations in display order, most recent first
	Conversations []model.Conversation `json:"conversations"`

	// CurrentConversationID is empty when no conversation is selected
	CurrentConversationID string `json:"currentConversationId"`

	Folders []model.Folder `json:"folders"`

	// AvailableModels is fixed for the lifetime of the store
	AvailableModels []string `json:"availableModels"`
	CurrentModel    string   `json:"currentModel"`
}

// NewState returns the initial state for a model list. The first model is
// the current one. An empty list falls back to model.DefaultModels.
func NewState(models []string) State {
	if len(models) == 0 {
		models = model.DefaultModels
	}
	available := make([]string, len(models))
	copy(available, models)

	return State{
		Conversations:   []model.Conversation{},
		Folders:         []model.Folder{},
		AvailableModels: available,
		CurrentModel:    available[0],
	}
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Conversation returns the conversation with id.
func (s State) Conversation(id string) (model.Conversation, bool) {
	if i := s.conversationIndex(id); i >= 0 {
		return s.Conversations[i], true
	}
	return model.Conversation{}, false
}

// Current returns the selected conversation, if any.
func (s State) Current() (model.Conversation, bool) {
	if s.CurrentConversationID == "" {
		return model.Conversation{}, false
	}
	return s.Conversation(s.CurrentConversationID)
}

// HasCurrent reports whether a conversation is selected.
func (s State) HasCurrent() bool {
	return s.CurrentConversationID != ""
}

// Folder returns the folder with id.
func (s State) Folder(id string) (model.Folder, bool) {
	for _, f := range s.Folders {
		if f.ID == id {
			return f, true
		}
	}
	return model.Folder{}, false
}

// IsModelAvailable reports whether id is in AvailableModels.
func (s State) IsModelAvailable(id string) bool {
	return model.Contains(s.AvailableModels, id)
}

func (s State) conversationIndex(id string) int {
	for i := range s.Conversations {
		if s.Conversations[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone creates a deep copy of the state.
func (s State) Clone() State {
	clone := s
	clone.Conversations = make([]model.Conversation, len(s.Conversations))
	for i, c := range s.Conversations {
		clone.Conversations[i] = c.Clone()
	}
	clone.Folders = make([]model.Folder, len(s.Folders))
	for i, f := range s.Folders {
		clone.Folders[i] = f.Clone()
	}
	clone.AvailableModels = make([]string, len(s.AvailableModels))
	copy(clone.AvailableModels, s.AvailableModels)
	return clone
}
