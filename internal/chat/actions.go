// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/chatshell/internal/model"
)

// Action is a state transition understood by Reduce.
// The set of actions is closed; only this package defines them.
type Action interface {
	// Kind returns a stable name for logging.
	Kind() string

	action()
}

// =============================================================================
// MODEL SELECTION
// =============================================================================

// SetCurrentModel replaces the current model. It is not validated against
// AvailableModels.
type SetCurrentModel struct {
	Model string
}

func (SetCurrentModel) Kind() string { return "set_current_model" }
func (SetCurrentModel) action()      {}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// NewConversation inserts a conversation at the front of the list and
// selects it. The caller supplies a unique id.
type NewConversation struct {
	Conversation model.Conversation
}

func (NewConversation) Kind() string { return "new_conversation" }
func (NewConversation) action()      {}

// SetCurrentConversation selects a conversation by id without checking
// that it exists.
type SetCurrentConversation struct {
	ID string
}

func (SetCurrentConversation) Kind() string { return "set_current_conversation" }
func (SetCurrentConversation) action()      {}

// PinConversation toggles the pinned flag.
type PinConversation struct {
	ID string
}

func (PinConversation) Kind() string { return "pin_conversation" }
func (PinConversation) action()      {}

// DeleteConversation removes a conversation and reselects if it was current.
type DeleteConversation struct {
	ID string
}

func (DeleteConversation) Kind() string { return "delete_conversation" }
func (DeleteConversation) action()      {}

// UpdateConversationTitle replaces a conversation's title.
type UpdateConversationTitle struct {
	ID    string
	Title string
}

func (UpdateConversationTitle) Kind() string { return "update_conversation_title" }
func (UpdateConversationTitle) action()      {}

// =============================================================================
// MESSAGES
// =============================================================================

// AddMessage appends a message to a conversation.
type AddMessage struct {
	ConversationID string
	Message        model.Message
}

func (AddMessage) Kind() string { return "add_message" }
func (AddMessage) action()      {}

// UpdateMessage merges a partial update into one message.
type UpdateMessage struct {
	ConversationID string
	MessageID      string
	Patch          model.MessagePatch
}

func (UpdateMessage) Kind() string { return "update_message" }
func (UpdateMessage) action()      {}

// =============================================================================
// FOLDERS
// =============================================================================

// CreateFolder appends a folder. Ids are not deduplicated.
type CreateFolder struct {
	Folder model.Folder
}

func (CreateFolder) Kind() string { return "create_folder" }
func (CreateFolder) action()      {}

// AddToFolder links a conversation and a folder. Each side is updated
// independently: an unknown folder still sets the conversation's FolderID
// and an unknown conversation is still appended to the folder.
type AddToFolder struct {
	ConversationID string
	FolderID       string
}

func (AddToFolder) Kind() string { return "add_to_folder" }
func (AddToFolder) action()      {}
