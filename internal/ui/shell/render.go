// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders assistant replies with glamour. Renderers are
// built per width and palette; results are cached per message.
type markdownRenderer struct {
	enabled bool

	width    int
	style    string
	renderer *glamour.TermRenderer

	cache map[string]string
}

func newMarkdownRenderer(enabled bool) *markdownRenderer {
	return &markdownRenderer{enabled: enabled, cache: make(map[string]string)}
}

// SetEnabled turns rendering on or off.
func (r *markdownRenderer) SetEnabled(enabled bool) {
	if r.enabled != enabled {
		r.enabled = enabled
		r.cache = make(map[string]string)
	}
}

// configure rebuilds the glamour renderer when width or style changed.
func (r *markdownRenderer) configure(width int, style string) {
	if width == r.width && style == r.style && r.renderer != nil {
		return
	}
	r.width = width
	r.style = style
	r.cache = make(map[string]string)

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r.renderer = nil
		return
	}
	r.renderer = tr
}

// Render returns content rendered for width in the given glamour style.
// key identifies the content for caching; empty disables the cache.
// Plain content is returned when rendering is off or fails.
func (r *markdownRenderer) Render(key, content string, width int, style string) string {
	if !r.enabled || width <= 0 {
		return content
	}
	r.configure(width, style)
	if r.renderer == nil {
		return content
	}

	if key != "" {
		if out, ok := r.cache[key]; ok {
			return out
		}
	}

	out, err := r.renderer.Render(content)
	if err != nil {
		return content
	}
	out = strings.Trim(out, "\n")

	if key != "" {
		r.cache[key] = out
	}
	return out
}
