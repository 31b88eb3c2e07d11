// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversations and chat state to files.
//
// Exports are write-only: nothing in chatshell reads them back.
//
// # Formats
//
//   - Markdown: a readable transcript with YAML front matter
//   - JSON: one conversation, or the full state as a Snapshot
//
// # Usage
//
//	path, err := export.ExportConversation(conv, "md", export.DefaultOptions())
//
//	err := export.WriteSnapshotFile("state.json", store.State(), nil)
package export
