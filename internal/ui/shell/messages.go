// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"github.com/jeranaias/chatshell/internal/config"
)

// storeChangedMsg signals that the chat store applied at least one action.
type storeChangedMsg struct {
	Version uint64
}

// storeClosedMsg signals that the store subscription ended.
type storeClosedMsg struct{}

// replyDoneMsg reports a settled reply.
type replyDoneMsg struct {
	ConversationID string
	Err            error
}

// configReloadedMsg carries a re-read config file.
type configReloadedMsg struct {
	Config *config.Config
	Err    error
}

// copyDoneMsg reports a clipboard write.
type copyDoneMsg struct {
	Err error
}

// exportDoneMsg reports a finished export.
type exportDoneMsg struct {
	Path string
	Err  error
}

// clearStatusMsg clears the status line if it still shows message Seq.
type clearStatusMsg struct {
	Seq int
}
