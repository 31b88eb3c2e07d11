// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jeranaias/chatshell/internal/chat"
	"github.com/jeranaias/chatshell/internal/model"
	"github.com/jeranaias/chatshell/internal/util"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports one conversation to JSON, keys in camelCase as the
// model types declare them.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a conversation to JSON format.
func (e *JSONExporter) Export(conv model.Conversation) ([]byte, error) {
	if conv.ID == "" {
		return nil, ErrNoConversation
	}
	return json.MarshalIndent(conv, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}

// =============================================================================
// STATE SNAPSHOT
// =============================================================================

// Snapshot is the on-disk form of a full chat state.
type Snapshot struct {
	Generator  string    `json:"generator"`
	ExportedAt time.Time `json:"exportedAt"`
	chat.State
}

// WriteSnapshot writes state as indented JSON to w.
func WriteSnapshot(w io.Writer, state chat.State, opts *Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	snap := Snapshot{
		Generator:  Generator,
		ExportedAt: opts.now(),
		State:      state,
	}
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// WriteSnapshotFile writes state to path, replacing any existing file
// atomically.
func WriteSnapshotFile(path string, state chat.State, opts *Options) error {
	data, err := json.MarshalIndent(Snapshot{
		Generator:  Generator,
		ExportedAt: opts.now(),
		State:      state,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, append(data, '\n'), 0o644, 0o755); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
