// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat conversations, messages, folders, and the model
// catalog offered by the selector.
//
// # Key Types
//
//   - Conversation: Ordered thread of messages with title, model and pin state
//   - Message: Single message with role, content, timestamp and loading flag
//   - MessagePatch: Partial update applied to an assistant placeholder
//   - Folder: Named group of conversation ids
//   - ModelInfo: Selector metadata for a model id
//   - IDGenerator: Injected source of unique identifiers
//
// Values are plain structs. Code that holds a Conversation from a state
// snapshot must not modify its Messages slice in place; use WithMessage or
// Clone.
//
// # Usage
//
//	ids := model.UUIDGenerator{}
//	conv := model.NewConversation(ids.NewID(), "Claude-3.5", time.Now())
//	conv = conv.WithMessage(model.NewUserMessage(ids.NewID(), "Hello!", time.Now()))
package model
