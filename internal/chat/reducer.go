// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/chatshell/internal/model"
)

// =============================================================================
// REDUCER
// =============================================================================

// Reduce returns the state that results from applying action to state.
//
// Reduce is pure: the input state is never modified, and slices are copied
// before they are changed. Actions that reference an unknown conversation,
// message or folder leave the state unchanged. Unknown action types are
// ignored.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case SetCurrentModel:
		state.CurrentModel = a.Model
		return state

	case NewConversation:
		convs := make([]model.Conversation, 0, len(state.Conversations)+1)
		convs = append(convs, a.Conversation)
		convs = append(convs, state.Conversations...)
		state.Conversations = convs
		state.CurrentConversationID = a.Conversation.ID
		return state

	case SetCurrentConversation:
		state.CurrentConversationID = a.ID
		return state

	case AddMessage:
		return updateConversation(state, a.ConversationID, func(c model.Conversation) (model.Conversation, bool) {
			return c.WithMessage(a.Message), true
		})

	case UpdateMessage:
		return updateConversation(state, a.ConversationID, func(c model.Conversation) (model.Conversation, bool) {
			i := c.MessageIndex(a.MessageID)
			if i < 0 {
				return c, false
			}
			msgs := make([]model.Message, len(c.Messages))
			copy(msgs, c.Messages)
			msgs[i] = msgs[i].Apply(a.Patch)
			c.Messages = msgs
			return c, true
		})

	case PinConversation:
		return updateConversation(state, a.ID, func(c model.Conversation) (model.Conversation, bool) {
			c.Pinned = !c.Pinned
			return c, true
		})

	case DeleteConversation:
		return deleteConversation(state, a.ID)

	case CreateFolder:
		folders := make([]model.Folder, len(state.Folders), len(state.Folders)+1)
		copy(folders, state.Folders)
		state.Folders = append(folders, a.Folder)
		return state

	case AddToFolder:
		state = updateConversation(state, a.ConversationID, func(c model.Conversation) (model.Conversation, bool) {
			c.FolderID = a.FolderID
			return c, true
		})
		return updateFolder(state, a.FolderID, func(f model.Folder) model.Folder {
			ids := make([]string, len(f.Conversations), len(f.Conversations)+1)
			copy(ids, f.Conversations)
			f.Conversations = append(ids, a.ConversationID)
			return f
		})

	case UpdateConversationTitle:
		return updateConversation(state, a.ID, func(c model.Conversation) (model.Conversation, bool) {
			c.Title = a.Title
			return c, true
		})
	}

	return state
}

// ReduceAll applies actions in order.
func ReduceAll(state State, actions ...Action) State {
	for _, a := range actions {
		state = Reduce(state, a)
	}
	return state
}

// =============================================================================
// HELPERS
// =============================================================================

// updateConversation replaces the conversation with id by fn's result.
// When id is unknown, or fn reports no change, state is returned as is.
func updateConversation(state State, id string, fn func(model.Conversation) (model.Conversation, bool)) State {
	i := state.conversationIndex(id)
	if i < 0 {
		return state
	}
	updated, changed := fn(state.Conversations[i])
	if !changed {
		return state
	}
	convs := make([]model.Conversation, len(state.Conversations))
	copy(convs, state.Conversations)
	convs[i] = updated
	state.Conversations = convs
	return state
}

// updateFolder replaces the folder with id by fn's result.
func updateFolder(state State, id string, fn func(model.Folder) model.Folder) State {
	for i := range state.Folders {
		if state.Folders[i].ID != id {
			continue
		}
		folders := make([]model.Folder, len(state.Folders))
		copy(folders, state.Folders)
		folders[i] = fn(folders[i])
		state.Folders = folders
		return state
	}
	return state
}

// deleteConversation removes the conversation with id. If it was current,
// the first other conversation in list order becomes current when the list
// held more than one entry; otherwise nothing is selected.
func deleteConversation(state State, id string) State {
	before := state.Conversations

	convs := make([]model.Conversation, 0, len(before))
	for _, c := range before {
		if c.ID != id {
			convs = append(convs, c)
		}
	}
	state.Conversations = convs

	if state.CurrentConversationID != id {
		return state
	}

	state.CurrentConversationID = ""
	if len(before) > 1 {
		for _, c := range before {
			if c.ID != id {
				state.CurrentConversationID = c.ID
				break
			}
		}
	}
	return state
}
