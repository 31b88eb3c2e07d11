// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string and file helpers shared by chatshell.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes, TruncateRunesNoEllipsis: UTF-8 safe truncation
//   - StringWidth, TruncateWidth, PadWidth: terminal column aware layout
//   - Fold, ContainsFold: Unicode case-insensitive search
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	title := util.TruncateWidth(conv.Title, 24)
//	if util.ContainsFold(conv.Title, query) { ... }
//	err := util.AtomicWriteFile(path, data, 0644)
package util
