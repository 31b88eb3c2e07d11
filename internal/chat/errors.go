// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "errors"

var (
	// ErrUnknownModel is returned when selecting a model that is not in
	// State.AvailableModels.
	ErrUnknownModel = errors.New("model not available")

	// ErrConversationNotFound is returned when selecting a conversation id
	// that is not in the store.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrControllerClosed is returned by sends issued after Close.
	ErrControllerClosed = errors.New("controller closed")
)
