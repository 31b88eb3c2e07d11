// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/chatshell/internal/chat"
	"github.com/jeranaias/chatshell/internal/config"
	"github.com/jeranaias/chatshell/internal/export"
	"github.com/jeranaias/chatshell/internal/model"
)

// statusTimeout is how long a status message stays visible.
const statusTimeout = 3 * time.Second

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// waitForChange blocks on the store subscription. Changes dropped for a
// slow reader are harmless: the model re-reads the whole state.
func waitForChange(changes <-chan chat.Change) tea.Cmd {
	return func() tea.Msg {
		ch, ok := <-changes
		if !ok {
			return storeClosedMsg{}
		}
		return storeChangedMsg{Version: ch.Version}
	}
}

// awaitReply reports when a sent message's reply settles.
func awaitReply(ctx context.Context, p *chat.Pending) tea.Cmd {
	return func() tea.Msg {
		err := p.Wait(ctx)
		return replyDoneMsg{ConversationID: p.ConversationID, Err: err}
	}
}

// watchConfig starts watching path and forwards reloads to out. It returns
// no message itself; waitForReload picks results up.
func watchConfig(ctx context.Context, path string, out chan<- configReloadedMsg, logger *zap.Logger) tea.Cmd {
	return func() tea.Msg {
		go func() {
			err := config.Watch(ctx, path, config.DefaultWatchDebounce, func(cfg *config.Config, err error) {
				select {
				case out <- configReloadedMsg{Config: cfg, Err: err}:
				case <-ctx.Done():
				}
			})
			if err != nil && ctx.Err() == nil {
				logger.Warn("config watch stopped", zap.String("path", path), zap.Error(err))
			}
		}()
		return nil
	}
}

// waitForReload delivers the next config reload.
func waitForReload(ctx context.Context, in <-chan configReloadedMsg) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-in:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}

// copyCmd writes text to the system clipboard.
func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copyDoneMsg{Err: clipboard.WriteAll(text)}
	}
}

// exportMarkdownCmd writes conv as a Markdown transcript into dir.
func exportMarkdownCmd(conv model.Conversation, dir string) tea.Cmd {
	return func() tea.Msg {
		opts := export.DefaultOptions()
		if dir != "" {
			opts.OutputDir = dir
		}
		path, err := export.ExportToFile(conv, export.NewMarkdownExporter(opts), opts)
		return exportDoneMsg{Path: path, Err: err}
	}
}

// snapshotCmd writes the full state as JSON into dir.
func snapshotCmd(state chat.State, dir string) tea.Cmd {
	return func() tea.Msg {
		if dir == "" {
			dir = "."
		}
		path := filepath.Join(dir, fmt.Sprintf("chatshell_state_%s.json", time.Now().Format("20060102_150405")))
		err := export.WriteSnapshotFile(path, state, nil)
		return exportDoneMsg{Path: path, Err: err}
	}
}

// clearStatusAfter clears status message seq after statusTimeout.
func clearStatusAfter(seq int) tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{Seq: seq}
	})
}
