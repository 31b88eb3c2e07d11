// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/chatshell/internal/model"
	"github.com/jeranaias/chatshell/internal/util"
)

// =============================================================================
// SELECTORS
// =============================================================================

// SidebarList returns the conversations shown in one sidebar section: those
// whose Pinned flag equals pinned and whose title contains query, ignoring
// case. Store order is preserved. An empty query matches everything.
func SidebarList(state State, pinned bool, query string) []model.Conversation {
	out := make([]model.Conversation, 0, len(state.Conversations))
	for _, c := range state.Conversations {
		if c.Pinned != pinned {
			continue
		}
		if !util.ContainsFold(c.Title, query) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// EmptyListHint is the text shown when a sidebar section has no entries.
func EmptyListHint(pinned bool, query string) string {
	switch {
	case pinned:
		return "No pinned conversations"
	case query != "":
		return "No conversations match your search"
	default:
		return "No conversations yet"
	}
}

// CurrentConversation returns the selected conversation, or nil when none
// is selected or the id no longer resolves.
func CurrentConversation(state State) *model.Conversation {
	conv, ok := state.Current()
	if !ok {
		return nil
	}
	return &conv
}
