// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/chatshell/internal/util"
)

// TitleMaxRunes is the number of characters kept when a title is derived
// from the first user message.
const TitleMaxRunes = 30

// DeriveTitle builds a conversation title from the user's first message:
// the content verbatim when it fits, otherwise its first TitleMaxRunes
// characters followed by "...".
func DeriveTitle(content string) string {
	if util.RuneLen(content) <= TitleMaxRunes {
		return content
	}
	return util.TruncateRunesNoEllipsis(content, TitleMaxRunes) + "..."
}
