// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jeranaias/chatshell/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// WriteMarkdown renders conv as a Markdown transcript to w.
func WriteMarkdown(w io.Writer, conv model.Conversation, opts *Options) error {
	data, err := NewMarkdownExporter(opts).Export(conv)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Export converts a conversation to Markdown format.
func (e *MarkdownExporter) Export(conv model.Conversation) ([]byte, error) {
	if conv.ID == "" {
		return nil, ErrNoConversation
	}

	now := e.options.now()
	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", escapeYAML(conv.Title))
		fmt.Fprintf(&sb, "model: %s\n", escapeYAML(conv.Model))
		fmt.Fprintf(&sb, "date: %s\n", conv.Timestamp.Format(time.RFC3339))
		fmt.Fprintf(&sb, "messages: %d\n", len(conv.Messages))
		if conv.Pinned {
			sb.WriteString("pinned: true\n")
		}
		fmt.Fprintf(&sb, "exported: %s\n", now.Format(time.RFC3339))
		fmt.Fprintf(&sb, "generator: %s\n", Generator)
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(conv.Title))

	if e.options.IncludeMetadata {
		sb.WriteString("## Session Information\n\n")
		fmt.Fprintf(&sb, "- **Model**: %s\n", conv.Model)
		fmt.Fprintf(&sb, "- **Created**: %s\n", formatTimestamp(conv.Timestamp))
		fmt.Fprintf(&sb, "- **Messages**: %d\n", len(conv.Messages))
		sb.WriteString("\n---\n\n")
	}

	sb.WriteString("## Conversation\n\n")
	if len(conv.Messages) == 0 {
		sb.WriteString("*No messages yet.*\n")
	}

	for i, msg := range conv.Messages {
		label := e.formatRoleLabel(msg)
		if e.options.IncludeTimestamps {
			fmt.Fprintf(&sb, "### %s <sub>%s</sub>\n\n", label, formatShortTimestamp(msg.Timestamp))
		} else {
			fmt.Fprintf(&sb, "### %s\n\n", label)
		}

		sb.WriteString(e.formatMessageContent(msg))
		sb.WriteString("\n\n")

		if i < len(conv.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	fmt.Fprintf(&sb, "*Exported from %s on %s*\n", Generator, now.Format("January 2, 2006 at 3:04 PM"))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// formatRoleLabel returns the heading label for a message.
func (e *MarkdownExporter) formatRoleLabel(msg model.Message) string {
	if msg.Role == "" {
		return "Unknown"
	}
	label := msg.Role.DisplayName()
	if msg.Role == model.RoleAssistant && msg.Model != "" {
		label += " (" + msg.Model + ")"
	}
	return label
}

// formatMessageContent returns the body for a message. Content is already
// Markdown; placeholders and failed replies are marked.
func (e *MarkdownExporter) formatMessageContent(msg model.Message) string {
	switch {
	case msg.IsLoading:
		return "*Waiting for reply...*"
	case msg.IsError:
		return "> " + strings.ReplaceAll(strings.TrimSpace(msg.Content), "\n", "\n> ")
	default:
		return strings.TrimSpace(msg.Content)
	}
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	// Only characters that would break a heading
	r := strings.NewReplacer(
		"#", "\\#",
		"*", "\\*",
		"_", "\\_",
		"[", "\\[",
		"]", "\\]",
	)
	return r.Replace(s)
}

// escapeYAML quotes a front matter value when it contains YAML syntax.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return "\"" + s + "\""
	}
	return s
}
