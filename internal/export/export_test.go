// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatshell/internal/chat"
	"github.com/jeranaias/chatshell/internal/model"
)

var fixed = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

func testOptions(dir string) *Options {
	opts := DefaultOptions()
	opts.OutputDir = dir
	opts.Now = func() time.Time { return fixed }
	return opts
}

func sampleConversation() model.Conversation {
	conv := model.NewConversation("c1", "Claude-3.5", fixed)
	conv.Title = "Python hello world"
	conv = conv.WithMessage(model.NewUserMessage("m1", "How do I print in Python?", fixed))
	reply := model.NewPlaceholder("m2", "Claude-3.5", fixed).Apply(model.Resolved("```python\nprint(\"hi\")\n```"))
	conv = conv.WithMessage(reply)
	return conv
}

// =============================================================================
// MARKDOWN
// =============================================================================

func TestMarkdownExporter_Export(t *testing.T) {
	out, err := NewMarkdownExporter(testOptions(t.TempDir())).Export(sampleConversation())
	require.NoError(t, err)

	md := string(out)
	assert.True(t, strings.HasPrefix(md, "---\ntitle: Python hello world\n"))
	assert.Contains(t, md, "model: Claude-3.5\n")
	assert.Contains(t, md, "messages: 2\n")
	assert.Contains(t, md, "generator: chatshell\n")
	assert.Contains(t, md, "# Python hello world\n")
	assert.Contains(t, md, "### You <sub>09:30:00</sub>")
	assert.Contains(t, md, "### Assistant (Claude-3.5) <sub>09:30:00</sub>")
	assert.Contains(t, md, "```python\nprint(\"hi\")\n```")
	assert.Contains(t, md, "*Exported from chatshell on June 2, 2025 at 9:30 AM*")
}

func TestMarkdownExporter_NoMetadata(t *testing.T) {
	opts := testOptions(t.TempDir())
	opts.IncludeMetadata = false
	opts.IncludeTimestamps = false

	out, err := NewMarkdownExporter(opts).Export(sampleConversation())
	require.NoError(t, err)

	md := string(out)
	assert.True(t, strings.HasPrefix(md, "# Python hello world"))
	assert.NotContains(t, md, "Session Information")
	assert.Contains(t, md, "### You\n\n")
}

func TestMarkdownExporter_PlaceholderAndError(t *testing.T) {
	conv := model.NewConversation("c", "DeepSeek", fixed)
	conv = conv.WithMessage(model.NewPlaceholder("p1", "DeepSeek", fixed))
	conv = conv.WithMessage(model.NewPlaceholder("p2", "DeepSeek", fixed).Apply(model.Failed("Error: boom\nsecond")))

	out, err := NewMarkdownExporter(testOptions(t.TempDir())).Export(conv)
	require.NoError(t, err)

	md := string(out)
	assert.Contains(t, md, "*Waiting for reply...*")
	assert.Contains(t, md, "> Error: boom\n> second")
}

func TestMarkdownExporter_Empty(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(model.NewConversation("c", "Custom", fixed))
	require.NoError(t, err)
	assert.Contains(t, string(out), "*No messages yet.*")

	_, err = NewMarkdownExporter(nil).Export(model.Conversation{})
	assert.ErrorIs(t, err, ErrNoConversation)
}

func TestMarkdownExporter_EscapesFrontMatter(t *testing.T) {
	conv := sampleConversation()
	conv.Title = "Test\nInjection: malicious"

	out, err := NewMarkdownExporter(testOptions(t.TempDir())).Export(conv)
	require.NoError(t, err)

	lines := strings.Split(string(out), "\n")
	for _, line := range lines[:10] {
		assert.False(t, strings.HasPrefix(line, "Injection:"), "front matter line %q", line)
	}
	assert.Contains(t, string(out), `title: "Test\nInjection: malicious"`)
}

func TestEscapeHelpers(t *testing.T) {
	tests := []struct {
		in, yaml, md string
	}{
		{"plain", "plain", "plain"},
		{"a: b", `"a: b"`, "a: b"},
		{`back\slash`, `"back\\slash"`, `back\slash`},
		{"# heading *bold* [link]", `"# heading *bold* [link]"`, `\# heading \*bold\* \[link\]`},
		{" padded", `" padded"`, " padded"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.yaml, escapeYAML(tc.in))
			assert.Equal(t, tc.md, escapeMarkdown(tc.in))
		})
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, sampleConversation(), testOptions(t.TempDir())))
	assert.Contains(t, buf.String(), "# Python hello world")
}

// =============================================================================
// FILES
// =============================================================================

func TestExportConversation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	tests := []struct {
		format string
		ext    string
	}{
		{"md", ".md"},
		{"Markdown", ".md"},
		{"json", ".json"},
	}

	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			path, err := ExportConversation(sampleConversation(), tc.format, testOptions(dir))
			require.NoError(t, err)

			assert.Equal(t, filepath.Join(dir, "conversation_Python_hello_world_20250602_093000"+tc.ext), path)
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
		})
	}

	_, err := ExportConversation(sampleConversation(), "pdf", testOptions(dir))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestJSONExporter_CamelCase(t *testing.T) {
	conv := sampleConversation()
	conv.FolderID = "f1"

	out, err := NewJSONExporter(nil).Export(conv)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(out, &raw))
	assert.Equal(t, "Python hello world", raw["title"])
	assert.Equal(t, "f1", raw["folderId"])

	msgs, ok := raw["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	reply := msgs[1].(map[string]any)
	assert.Equal(t, "assistant", reply["role"])
	assert.Equal(t, "Claude-3.5", reply["model"])
	assert.NotContains(t, reply, "isLoading")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello world", "hello_world"},
		{`a/b\c:d*e?f"g<h>i|j`, "a-b-c-d-e-f-g-h-i-j"},
		{"tab\there", "tab_here"},
		{"bell\a", "bell-"},
		{"", "conversation"},
		{"   ", "conversation"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitizeFilename(tc.in))
		})
	}
}

// =============================================================================
// SNAPSHOT
// =============================================================================

func snapshotState() chat.State {
	return chat.ReduceAll(chat.NewState(nil),
		chat.NewConversation{Conversation: sampleConversation()},
		chat.PinConversation{ID: "c1"},
	)
}

func TestWriteSnapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, snapshotState(), testOptions("")))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))

	assert.Equal(t, "chatshell", raw["generator"])
	assert.Equal(t, "2025-06-02T09:30:00Z", raw["exportedAt"])
	assert.Equal(t, "c1", raw["currentConversationId"])
	assert.Equal(t, "Gemini 2.5", raw["currentModel"])
	assert.Len(t, raw["availableModels"], len(model.DefaultModels))
	assert.Len(t, raw["conversations"], 1)
	assert.Contains(t, raw, "folders")

	conv := raw["conversations"].([]any)[0].(map[string]any)
	assert.Equal(t, true, conv["pinned"])
}

func TestWriteSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "state.json")
	state := snapshotState()
	require.NoError(t, WriteSnapshotFile(path, state, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, Generator, snap.Generator)
	assert.Equal(t, state.CurrentConversationID, snap.CurrentConversationID)
	require.Len(t, snap.Conversations, 1)
	assert.Equal(t, "Python hello world", snap.Conversations[0].Title)
}
