// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/chatshell/internal/chat"
	"github.com/jeranaias/chatshell/internal/model"
	"github.com/jeranaias/chatshell/internal/provider"
	"github.com/jeranaias/chatshell/internal/ui/styles"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.layout()
		m.refreshViewport(true)
		return m, nil

	case storeChangedMsg:
		m.syncState()
		cmd := tea.Batch(waitForChange(m.changes), m.startSpinner())
		return m, cmd

	case storeClosedMsg:
		return m, nil

	case replyDoneMsg:
		if msg.Err != nil && !errors.Is(msg.Err, provider.ErrCanceled) && !errors.Is(msg.Err, context.Canceled) {
			cmd := m.setStatus("Reply failed: "+provider.Classify(msg.Err).UserMessage(), true)
			return m, cmd
		}
		return m, nil

	case spinner.TickMsg:
		if !m.hasPending() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshViewport(false)
		return m, cmd

	case configReloadedMsg:
		cmd := tea.Batch(m.applyConfig(msg), waitForReload(m.ctx, m.reloads))
		return m, cmd

	case copyDoneMsg:
		if msg.Err != nil {
			cmd := m.setStatus("Copy failed: "+msg.Err.Error(), true)
			return m, cmd
		}
		cmd := m.setStatus("Copied!", false)
		return m, cmd

	case exportDoneMsg:
		if msg.Err != nil {
			m.logger.Warn("export failed", zap.Error(msg.Err))
			cmd := m.setStatus("Export failed: "+msg.Err.Error(), true)
			return m, cmd
		}
		m.logger.Info("exported", zap.String("path", msg.Path))
		cmd := m.setStatus("Saved "+msg.Path, false)
		return m, cmd

	case clearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.status = ""
			m.statusIsErr = false
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	// Text entry modes own every other key
	switch m.focus {
	case focusSearch:
		return m.handleSearchKey(msg)
	case focusRename:
		return m.handleRenameKey(msg)
	case focusModels:
		return m.handleModelKey(msg)
	case focusConfirmDelete:
		return m.handleDeleteKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NewChat):
		m.controller.StartNewConversation()
		m.syncState()
		cmd := m.focusInput()
		return m, cmd

	case key.Matches(msg, m.keys.ToggleTheme):
		m.theme.Toggle()
		m.spinner.Style = m.theme.Typing
		m.refreshViewport(false)
		return m, nil

	case key.Matches(msg, m.keys.ToggleBar):
		m.sidebarOpen = !m.sidebarOpen
		if !m.sidebarOpen && m.focus == focusSidebar {
			m.focus = focusInput
			m.input.Focus()
		}
		m.layout()
		m.refreshViewport(false)
		return m, nil

	case key.Matches(msg, m.keys.ToggleTools):
		m.toolsOpen = !m.toolsOpen
		m.layout()
		m.refreshViewport(false)
		return m, nil

	case key.Matches(msg, m.keys.PickModel):
		m.modelCursor = indexOf(m.state.AvailableModels, m.state.CurrentModel)
		m.focus = focusModels
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.CopyReply):
		text, ok := m.lastReply()
		if !ok {
			cmd := m.setStatus("Nothing to copy", true)
			return m, cmd
		}
		return m, copyCmd(text)

	case key.Matches(msg, m.keys.Export):
		conv, ok := m.state.Current()
		if !ok {
			cmd := m.setStatus("No conversation to export", true)
			return m, cmd
		}
		return m, exportMarkdownCmd(conv, m.cfg.UI.ExportDir)

	case key.Matches(msg, m.keys.Snapshot):
		return m, snapshotCmd(m.state, m.cfg.UI.ExportDir)

	case key.Matches(msg, m.keys.SwitchFocus):
		cmd := m.toggleFocus()
		return m, cmd

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.send()
	case key.Matches(msg, m.keys.Help) && m.input.Value() == "":
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.showHelp = false
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send hands the input to the controller. Whitespace-only input is ignored.
func (m Model) send() (tea.Model, tea.Cmd) {
	content := m.input.Value()
	if strings.TrimSpace(content) == "" {
		return m, nil
	}

	p := m.controller.SendMessage(content)
	m.input.Reset()
	m.syncState()

	m.logger.Debug("message submitted",
		zap.String("conversation_id", p.ConversationID),
		zap.Int("runes", len([]rune(content))))

	cmd := tea.Batch(awaitReply(m.ctx, p), m.startSpinner())
	return m, cmd
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.sidebarEntries()

	switch {
	case key.Matches(msg, m.keys.Cancel):
		cmd := m.focusInput()
		return m, cmd

	case key.Matches(msg, m.keys.Up):
		if m.sidebarCursor > 0 {
			m.sidebarCursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.sidebarCursor < len(entries)-1 {
			m.sidebarCursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}

	if len(entries) == 0 {
		return m, nil
	}
	target := entries[clamp(m.sidebarCursor, 0, len(entries)-1)]

	switch {
	case key.Matches(msg, m.keys.Open):
		if err := m.controller.SelectConversation(target.ID); err != nil {
			cmd := m.setStatus(err.Error(), true)
			return m, cmd
		}
		m.syncState()
		cmd := m.focusInput()
		return m, cmd

	case key.Matches(msg, m.keys.Pin):
		if err := m.controller.TogglePin(target.ID); err != nil {
			cmd := m.setStatus(err.Error(), true)
			return m, cmd
		}
		m.syncState()
		m.followCursor(target.ID)
		return m, nil

	case key.Matches(msg, m.keys.Rename):
		m.renameID = target.ID
		m.rename.SetValue(target.Title)
		m.rename.CursorEnd()
		m.focus = focusRename
		cmd := m.rename.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Delete):
		m.deleteID = target.ID
		m.focus = focusConfirmDelete
		return m, nil
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.query = ""
		m.search.SetValue("")
		m.search.Blur()
		m.focus = focusSidebar
		m.sidebarCursor = 0
		return m, nil
	case tea.KeyEnter:
		m.search.Blur()
		m.focus = focusSidebar
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query = m.search.Value()
	m.sidebarCursor = 0
	return m, cmd
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.rename.Blur()
		m.renameID = ""
		m.focus = focusSidebar
		return m, nil
	case tea.KeyEnter:
		title := strings.TrimSpace(m.rename.Value())
		id := m.renameID
		m.rename.Blur()
		m.renameID = ""
		m.focus = focusSidebar
		if title == "" {
			return m, nil
		}
		if err := m.controller.RenameConversation(id, title); err != nil {
			cmd := m.setStatus(err.Error(), true)
			return m, cmd
		}
		m.syncState()
		return m, nil
	}

	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return m, cmd
}

func (m Model) handleModelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.state.AvailableModels)
	switch {
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Up):
		m.modelCursor = (m.modelCursor - 1 + n) % n
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Down):
		m.modelCursor = (m.modelCursor + 1) % n
	case key.Matches(msg, m.keys.Cancel):
		cmd := m.focusInput()
		return m, cmd
	case msg.Type == tea.KeyEnter:
		name := m.state.AvailableModels[m.modelCursor]
		if err := m.controller.SelectModel(name); err != nil {
			cmd := m.setStatus(err.Error(), true)
			return m, cmd
		}
		m.syncState()
		cmd := tea.Batch(m.focusInput(), m.setStatus("Model: "+name, false))
		return m, cmd
	}
	return m, nil
}

func (m Model) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		id := m.deleteID
		m.deleteID = ""
		m.focus = focusSidebar
		if err := m.controller.DeleteConversation(id); err != nil {
			cmd := m.setStatus(err.Error(), true)
			return m, cmd
		}
		m.syncState()
		m.sidebarCursor = clamp(m.sidebarCursor, 0, max(len(m.sidebarEntries())-1, 0))
		cmd := m.setStatus("Conversation deleted", false)
		return m, cmd
	case key.Matches(msg, m.keys.Deny):
		m.deleteID = ""
		m.focus = focusSidebar
	}
	return m, nil
}

// updateFocused forwards non-key messages such as cursor blinks to the
// focused widget.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusSearch:
		m.search, cmd = m.search.Update(msg)
	case focusRename:
		m.rename, cmd = m.rename.Update(msg)
	case focusInput:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// STATE HELPERS
// =============================================================================

// syncState re-reads the store and re-renders the message list if anything
// changed.
func (m *Model) syncState() {
	v := m.store.Version()
	if v == m.version {
		return
	}
	prevCurrent := m.state.CurrentConversationID
	m.state = m.store.State()
	m.version = v
	m.updatePlaceholder()
	m.refreshViewport(prevCurrent != m.state.CurrentConversationID || m.viewport.AtBottom())
}

func (m *Model) updatePlaceholder() {
	m.input.Placeholder = "Message " + m.state.CurrentModel + "..."
}

func (m *Model) hasPending() bool {
	conv, ok := m.state.Current()
	return ok && conv.PendingCount() > 0
}

// startSpinner begins ticking if a reply is in flight and the spinner is
// not already running.
func (m *Model) startSpinner() tea.Cmd {
	if m.spinning || !m.hasPending() {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status = text
	m.statusIsErr = isErr
	return clearStatusAfter(m.statusSeq)
}

func (m *Model) focusInput() tea.Cmd {
	m.focus = focusInput
	m.search.Blur()
	m.rename.Blur()
	return m.input.Focus()
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusSidebar {
		return m.focusInput()
	}
	if !m.sidebarOpen || m.theme.SidebarWidth() == 0 {
		return nil
	}
	m.focus = focusSidebar
	m.input.Blur()
	if id := m.state.CurrentConversationID; id != "" {
		m.followCursor(id)
	}
	return nil
}

// followCursor moves the sidebar cursor onto conversation id.
func (m *Model) followCursor(id string) {
	for i, c := range m.sidebarEntries() {
		if c.ID == id {
			m.sidebarCursor = i
			return
		}
	}
}

// sidebarEntries lists the sidebar rows in display order: pinned, then
// recent, both filtered by the search query.
func (m Model) sidebarEntries() []model.Conversation {
	pinned := chat.SidebarList(m.state, true, m.query)
	recent := chat.SidebarList(m.state, false, m.query)
	return append(pinned, recent...)
}

// lastReply returns the latest finished assistant reply in the current
// conversation.
func (m Model) lastReply() (string, bool) {
	conv, ok := m.state.Current()
	if !ok {
		return "", false
	}
	msg, ok := conv.GetLastAssistantMessage()
	if !ok || msg.IsError || msg.Content == "" {
		return "", false
	}
	return msg.Content, true
}

// applyConfig re-applies the settings that can change while running.
func (m *Model) applyConfig(msg configReloadedMsg) tea.Cmd {
	if msg.Err != nil {
		m.logger.Warn("config reload failed", zap.Error(msg.Err))
		return m.setStatus("Config error: "+msg.Err.Error(), true)
	}
	if msg.Config == nil {
		return nil
	}

	if mode, err := styles.ParseMode(msg.Config.UI.Theme); err == nil && mode != m.theme.Mode {
		m.theme.SetMode(mode)
		m.spinner.Style = m.theme.Typing
	}
	m.renderer.SetEnabled(msg.Config.UI.RenderMarkdown)
	m.cfg.UI = msg.Config.UI
	m.refreshViewport(false)

	m.logger.Info("config reloaded", zap.String("theme", msg.Config.UI.Theme))
	return m.setStatus("Config reloaded", false)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
