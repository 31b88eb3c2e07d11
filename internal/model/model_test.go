// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewPlaceholder(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := NewPlaceholder("m1", "Claude-3.5", at)

	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, "", msg.Content)
	assert.Equal(t, "Claude-3.5", msg.Model)
	assert.True(t, msg.IsLoading)
	assert.True(t, msg.IsPlaceholder())
	assert.Equal(t, at, msg.Timestamp)
}

func TestMessage_Apply(t *testing.T) {
	base := NewPlaceholder("m1", "Gemma-3", time.Now())

	resolved := base.Apply(Resolved("hi there"))
	assert.Equal(t, "hi there", resolved.Content)
	assert.False(t, resolved.IsLoading)
	assert.False(t, resolved.IsError)
	assert.Equal(t, "Gemma-3", resolved.Model)

	// base is a value; it must not change
	assert.True(t, base.IsLoading)
	assert.Equal(t, "", base.Content)

	failed := base.Apply(Failed("Error: boom"))
	assert.True(t, failed.IsError)
	assert.False(t, failed.IsLoading)
	assert.Equal(t, "Error: boom", failed.Content)
}

func TestMessagePatch_IsEmpty(t *testing.T) {
	assert.True(t, MessagePatch{}.IsEmpty())
	assert.False(t, Resolved("x").IsEmpty())
}

func TestMessage_Preview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		maxLen  int
		want    string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"unicode", "héllo wörld", 8, "héllo..."},
		{"tiny limit", "hello", 2, "he"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := Message{Content: tc.content}
			if got := msg.Preview(tc.maxLen); got != tc.want {
				t.Errorf("Preview(%d) = %q, want %q", tc.maxLen, got, tc.want)
			}
		})
	}
}

func TestRole_DisplayName(t *testing.T) {
	assert.Equal(t, "You", RoleUser.DisplayName())
	assert.Equal(t, "Assistant", RoleAssistant.DisplayName())
	assert.Equal(t, "System", RoleSystem.DisplayName())
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestNewConversation(t *testing.T) {
	conv := NewConversation("c1", "DeepSeek", time.Now())

	assert.Equal(t, DefaultTitle, conv.Title)
	assert.True(t, conv.HasDefaultTitle())
	assert.False(t, conv.Pinned)
	assert.NotNil(t, conv.Messages)
	assert.True(t, conv.IsEmpty())
}

func TestConversation_WithMessageDoesNotAlias(t *testing.T) {
	conv := NewConversation("c1", "DeepSeek", time.Now())
	conv = conv.WithMessage(NewUserMessage("m1", "one", time.Now()))

	a := conv.WithMessage(NewUserMessage("m2", "two", time.Now()))
	b := conv.WithMessage(NewUserMessage("m3", "three", time.Now()))

	require.Len(t, conv.Messages, 1)
	require.Len(t, a.Messages, 2)
	require.Len(t, b.Messages, 2)
	assert.Equal(t, "m2", a.Messages[1].ID)
	assert.Equal(t, "m3", b.Messages[1].ID)
}

func TestConversation_History(t *testing.T) {
	conv := NewConversation("c1", "DeepSeek", time.Now())
	conv = conv.WithMessage(NewUserMessage("u1", "question", time.Now()))
	conv = conv.WithMessage(Message{ID: "a1", Role: RoleAssistant, Content: "answer"})
	conv = conv.WithMessage(Message{ID: "a2", Role: RoleAssistant, Content: "Error: x", IsError: true})
	conv = conv.WithMessage(NewPlaceholder("a3", "DeepSeek", time.Now()))

	history := conv.History()
	require.Len(t, history, 2)
	assert.Equal(t, "u1", history[0].ID)
	assert.Equal(t, "a1", history[1].ID)
	assert.Equal(t, 1, conv.PendingCount())
}

func TestConversation_GetLastAssistantMessage(t *testing.T) {
	conv := NewConversation("c1", "DeepSeek", time.Now())
	_, ok := conv.GetLastAssistantMessage()
	assert.False(t, ok)

	conv = conv.WithMessage(Message{ID: "a1", Role: RoleAssistant, Content: "done"})
	conv = conv.WithMessage(NewPlaceholder("a2", "DeepSeek", time.Now()))

	msg, ok := conv.GetLastAssistantMessage()
	require.True(t, ok)
	assert.Equal(t, "a1", msg.ID)
}

func TestConversation_Clone(t *testing.T) {
	conv := NewConversation("c1", "DeepSeek", time.Now())
	conv = conv.WithMessage(NewUserMessage("u1", "hi", time.Now()))

	clone := conv.Clone()
	clone.Messages[0].Content = "changed"

	assert.Equal(t, "hi", conv.Messages[0].Content)
}

func TestFolder_Clone(t *testing.T) {
	f := Folder{ID: "f1", Name: "Work", Conversations: []string{"c1"}}
	clone := f.Clone()
	clone.Conversations[0] = "c2"

	assert.Equal(t, []string{"c1"}, f.Conversations)
}

// =============================================================================
// MODEL REGISTRY TESTS
// =============================================================================

func TestDefaultModels_AreRegistered(t *testing.T) {
	require.Len(t, DefaultModels, 7)
	assert.Equal(t, "Gemini 2.5", DefaultModels[0])

	for _, id := range DefaultModels {
		_, ok := Models[id]
		assert.True(t, ok, "model %q missing from registry", id)
	}
}

func TestGetModelInfo(t *testing.T) {
	info, ok := GetModelInfo("claude-3.5")
	require.True(t, ok)
	assert.Equal(t, "Claude-3.5", info.ID)

	_, ok = GetModelInfo("nonexistent")
	assert.False(t, ok)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains(DefaultModels, "Custom"))
	assert.False(t, Contains(DefaultModels, "custom"))
}

// =============================================================================
// ID GENERATOR TESTS
// =============================================================================

func TestSequentialGenerator(t *testing.T) {
	g := NewSequentialGenerator("id")
	assert.Equal(t, "id-1", g.NewID())
	assert.Equal(t, "id-2", g.NewID())
}

func TestSequentialGenerator_Concurrent(t *testing.T) {
	g := NewSequentialGenerator("id")
	seen := sync.Map{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, dup := seen.LoadOrStore(g.NewID(), true)
			assert.False(t, dup)
		}()
	}
	wg.Wait()
}

func TestUUIDGenerator_Unique(t *testing.T) {
	var g UUIDGenerator
	a, b := g.NewID(), g.NewID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
