// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the chatshell UI.
//
// Colors are light/dark pairs; a Theme resolves them for one palette and
// builds every lipgloss style from the result. Switching palettes rebuilds
// the styles in place:
//
//	theme := styles.NewTheme(styles.ModeAuto)
//	theme.Toggle()
//
// ModeAuto asks termenv whether the terminal background is dark.
package styles
