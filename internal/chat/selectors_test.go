// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatshell/internal/util"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short", "hello", "hello"},
		{"exactly thirty", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"forty", strings.Repeat("b", 40), strings.Repeat("b", 30) + "..."},
		{"multibyte", strings.Repeat("é", 31), strings.Repeat("é", 30) + "..."},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveTitle(tc.content))
		})
	}

	long := DeriveTitle("Can you explain how the Go scheduler handles blocking syscalls?")
	assert.Equal(t, TitleMaxRunes+3, util.RuneLen(long))
	assert.True(t, strings.HasSuffix(long, "..."))
}

func sidebarState() State {
	s := stateWith("a", "b", "c", "d")
	s = ReduceAll(s,
		UpdateConversationTitle{ID: "a", Title: "Go generics"},
		UpdateConversationTitle{ID: "b", Title: "Dinner ideas"},
		UpdateConversationTitle{ID: "c", Title: "GOLANG channels"},
		UpdateConversationTitle{ID: "d", Title: "Straße names"},
		PinConversation{ID: "b"},
		PinConversation{ID: "c"},
	)
	return s
}

func TestSidebarList(t *testing.T) {
	s := sidebarState()

	tests := []struct {
		name   string
		pinned bool
		query  string
		want   []string
	}{
		{"recent", false, "", []string{"a", "d"}},
		{"pinned", true, "", []string{"b", "c"}},
		{"search is case-insensitive", false, "go", []string{"a"}},
		{"search in pinned", true, "go", []string{"c"}},
		{"search folds ß", false, "STRASSE", []string{"d"}},
		{"no match", false, "zebra", []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SidebarList(s, tc.pinned, tc.query)
			ids := make([]string, 0, len(got))
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestEmptyListHint(t *testing.T) {
	assert.Equal(t, "No pinned conversations", EmptyListHint(true, ""))
	assert.Equal(t, "No pinned conversations", EmptyListHint(true, "x"))
	assert.Equal(t, "No conversations match your search", EmptyListHint(false, "x"))
	assert.Equal(t, "No conversations yet", EmptyListHint(false, ""))
}

func TestCurrentConversation(t *testing.T) {
	assert.Nil(t, CurrentConversation(NewState(nil)))

	s := stateWith("a", "b")
	c := CurrentConversation(s)
	require.NotNil(t, c)
	assert.Equal(t, "a", c.ID)

	s = Reduce(s, SetCurrentConversation{ID: "gone"})
	assert.Nil(t, CurrentConversation(s))
}
