// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatshell/internal/chat"
	"github.com/jeranaias/chatshell/internal/model"
	"github.com/jeranaias/chatshell/internal/offline"
	"github.com/jeranaias/chatshell/internal/ui/styles"
	"github.com/jeranaias/chatshell/internal/util"
)

// Welcome screen copy.
const (
	welcomeTitle = "Welcome to chatshell"
	welcomeText  = "Start a conversation with our AI assistant. You can ask questions, analyze documents, and more."
)

var welcomeCards = []struct{ title, text string }{
	{"Start a conversation", "Ask anything from simple questions to complex tasks"},
	{"Upload documents", "Analyze documents, extract information, and get insights"},
	{"Internet search", "Get up-to-date information from the web"},
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	mainW := m.mainWidth()
	main := lipgloss.JoinVertical(lipgloss.Left,
		m.renderMain(mainW),
		m.renderInput(mainW),
	)

	var columns []string
	if w := m.sidebarWidth(); w > 0 {
		columns = append(columns, m.renderSidebar(w))
	}
	columns = append(columns, main)
	if w := m.toolsWidth(); w > 0 {
		columns = append(columns, m.renderTools(w))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		lipgloss.JoinHorizontal(lipgloss.Top, columns...),
		m.renderStatus(),
	)
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) sidebarWidth() int {
	if !m.sidebarOpen {
		return 0
	}
	return m.theme.SidebarWidth()
}

func (m Model) toolsWidth() int {
	if !m.toolsOpen || m.theme.GetLayoutMode() != styles.LayoutWide {
		return 0
	}
	return toolsPanelWidth
}

func (m Model) mainWidth() int {
	return max(m.width-m.sidebarWidth()-m.toolsWidth(), 10)
}

// bodyHeight is the height between header and status line.
func (m Model) bodyHeight() int {
	return max(m.height-headerHeight-statusHeight, 1)
}

// layout sizes widgets after a resize or panel toggle.
func (m *Model) layout() {
	mainW := m.mainWidth()
	m.viewport.Width = mainW
	m.viewport.Height = max(m.bodyHeight()-(inputHeight+2), 1)
	m.input.SetWidth(max(mainW-4, 1))
	m.search.Width = max(m.sidebarWidth()-6, 1)
	m.rename.Width = max(m.sidebarWidth()-6, 1)
}

// refreshViewport re-renders the current conversation into the viewport.
func (m *Model) refreshViewport(toBottom bool) {
	m.viewport.SetContent(m.renderMessages(m.viewport.Width))
	if toBottom {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	t := m.theme
	parts := []string{t.HeaderBrand.Render("chatshell")}

	if m.focus == focusModels {
		for i, name := range m.state.AvailableModels {
			style := t.ModelOption
			if i == m.modelCursor {
				style = t.ModelSelected
			}
			parts = append(parts, style.Render(name))
		}
	} else {
		parts = append(parts, t.HeaderModel.Render(m.state.CurrentModel))
	}

	parts = append(parts,
		t.HeaderButton.Render(t.Name()),
		m.toggleButton("Tools", m.toolsOpen),
	)
	if m.cfg.Provider.Ollama.OfflineOnly {
		parts = append(parts, t.OfflineBadge.Render(offline.StatusIndicator(true)))
	}

	line := strings.Join(parts, " ")
	return t.Header.Width(m.width).MaxHeight(headerHeight).Render(line)
}

func (m Model) toggleButton(label string, on bool) string {
	if on {
		return m.theme.HeaderActive.Render(label)
	}
	return m.theme.HeaderButton.Render(label)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar(width int) string {
	t := m.theme
	inner := max(width-3, 1)

	var b strings.Builder
	b.WriteString(t.SidebarCurrent.Render("+ New chat"))
	b.WriteString("\n")

	switch {
	case m.focus == focusSearch:
		b.WriteString(m.search.View())
	case m.query != "":
		b.WriteString(t.SidebarHint.Render(util.TruncateWidth("/ "+m.query, inner)))
	default:
		b.WriteString(t.SidebarHint.Render("/ Search"))
	}
	b.WriteString("\n")

	row := 0
	for _, pinned := range []bool{true, false} {
		title := "Recent"
		if pinned {
			title = "Pinned"
		}
		b.WriteString(t.SectionTitle.Render(title))
		b.WriteString("\n")

		list := chat.SidebarList(m.state, pinned, m.query)
		if len(list) == 0 {
			b.WriteString(t.SidebarHint.Render(util.TruncateWidth(chat.EmptyListHint(pinned, m.query), inner)))
			b.WriteString("\n")
			continue
		}
		for _, c := range list {
			b.WriteString(m.renderSidebarRow(c, row, inner))
			b.WriteString("\n")
			row++
		}
	}

	style := t.Sidebar
	if m.focus != focusInput && m.focus != focusModels {
		style = t.SidebarFocused
	}
	return style.Width(width - 1).Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderSidebarRow(c model.Conversation, row, width int) string {
	t := m.theme

	if m.focus == focusRename && c.ID == m.renameID {
		return m.rename.View()
	}
	if m.focus == focusConfirmDelete && c.ID == m.deleteID {
		return t.StatusError.Render(util.TruncateWidth("Delete? (y/n)", width))
	}

	marker := "    "
	if c.Pinned {
		marker = t.PinMarker.Render(styles.StatusIndicators.Pinned) + " "
	}
	text := util.PadWidth(c.Title, max(width-4, 1))

	style := t.SidebarItem
	switch {
	case m.focus == focusSidebar && row == m.sidebarCursor:
		style = t.SidebarSelected
	case c.ID == m.state.CurrentConversationID:
		style = t.SidebarCurrent
	}
	return marker + style.Render(text)
}

// =============================================================================
// MAIN AREA
// =============================================================================

func (m Model) renderMain(width int) string {
	height := m.viewport.Height
	if m.showHelp {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.renderHelp())
	}
	if _, ok := m.state.Current(); !ok {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.renderWelcome(width))
	}
	return m.viewport.View()
}

func (m Model) renderWelcome(width int) string {
	t := m.theme
	wrap := min(width-4, 64)

	lines := []string{
		t.WelcomeTitle.Render(welcomeTitle),
		t.WelcomeText.Width(wrap).Render(welcomeText),
		t.Timestamp.Render("Currently using " + m.state.CurrentModel),
		"",
	}
	for _, card := range welcomeCards {
		lines = append(lines,
			t.AssistantLabel.Render(card.title),
			t.WelcomeText.Width(wrap).Render(card.text),
			"")
	}
	lines = append(lines, t.InputHint.Render("Type a message below to begin"))
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

// renderMessages renders the current conversation for the viewport.
func (m Model) renderMessages(width int) string {
	conv, ok := m.state.Current()
	if !ok || width <= 0 {
		return ""
	}
	if conv.IsEmpty() {
		return m.theme.SidebarHint.Render("No messages yet.")
	}

	bubbleW := max(width*4/5, min(width, 20))
	blocks := make([]string, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		blocks = append(blocks, m.renderMessage(msg, width, bubbleW))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg model.Message, width, bubbleW int) string {
	t := m.theme
	stamp := t.Timestamp.Render(msg.Timestamp.Local().Format("15:04"))

	if msg.Role == model.RoleUser {
		label := t.UserLabel.Render(msg.Role.DisplayName()) + " " + stamp
		body := t.UserBubble.MaxWidth(bubbleW).Width(bubbleW - 2).Render(msg.Content)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right,
			lipgloss.JoinVertical(lipgloss.Right, label, body))
	}

	name := msg.Role.DisplayName()
	if msg.Model != "" {
		name = msg.Model
	}
	label := t.AssistantLabel.Render(name) + " " + stamp

	var body string
	switch {
	case msg.IsLoading:
		body = t.AssistantBubble.Render(m.spinner.View() + t.Typing.Render(" typing"))
	case msg.IsError:
		body = t.ErrorBubble.Width(bubbleW - 2).Render(msg.Content)
	default:
		content := m.renderer.Render(msg.ID, msg.Content, bubbleW-4, t.GlamourStyle())
		body = t.AssistantBubble.Width(bubbleW - 2).Render(content)
	}
	return lipgloss.JoinVertical(lipgloss.Left, label, body)
}

func (m Model) renderInput(width int) string {
	style := m.theme.InputContainer
	if m.focus == focusInput {
		style = m.theme.InputContainerFocused
	}
	return style.Width(width - 2).Render(m.input.View())
}

func (m Model) renderHelp() string {
	h := help.New()
	h.Styles.FullKey = m.theme.ShortcutKey
	h.Styles.FullDesc = m.theme.ShortcutDsc
	h.Styles.FullSeparator = m.theme.Timestamp
	return m.theme.AssistantBubble.Render(h.FullHelpView(m.keys.FullHelp()))
}

// =============================================================================
// TOOLS PANEL
// =============================================================================

func (m Model) renderTools(width int) string {
	t := m.theme
	inner := width - 3

	var b strings.Builder
	b.WriteString(t.SectionTitle.UnsetMarginTop().Render("Tools"))
	b.WriteString("\n")
	for _, tool := range m.tools {
		action := t.ToolOff.Render("Connect")
		if tool.Toggle {
			action = t.ToolOff.Render("[ ]")
		}
		b.WriteString(util.PadWidth(tool.Title, inner-lipgloss.Width(action)) + action)
		b.WriteString("\n")
		b.WriteString(t.SidebarHint.Width(inner).Render(tool.Description))
		b.WriteString("\n")
	}

	if m.usage != nil {
		b.WriteString(t.SectionTitle.Render("Usage"))
		b.WriteString("\n")
		b.WriteString(t.WelcomeText.Width(inner).Render(m.usage.Snapshot().Summary()))
	}

	return t.ToolsPanel.Width(width - 1).Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(strings.TrimRight(b.String(), "\n"))
}

// =============================================================================
// STATUS LINE
// =============================================================================

func (m Model) renderStatus() string {
	t := m.theme

	var left string
	switch {
	case m.status != "" && m.statusIsErr:
		left = t.StatusError.Render(m.status)
	case m.status != "":
		left = t.StatusInfo.Render(m.status)
	default:
		left = m.conversationInfo()
	}

	h := help.New()
	h.Styles.ShortKey = t.ShortcutKey
	h.Styles.ShortDesc = t.ShortcutDsc
	bindings := m.keys.ShortHelp()
	if m.focus == focusSidebar {
		bindings = m.keys.SidebarHelp()
	}
	right := h.ShortHelpView(bindings)

	gap := m.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right = ""
		gap = max(m.width-2-lipgloss.Width(left), 0)
	}
	return t.StatusBar.Width(m.width).MaxHeight(statusHeight).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) conversationInfo() string {
	conv, ok := m.state.Current()
	if !ok {
		return fmt.Sprintf("%d conversations", len(m.state.Conversations))
	}
	info := fmt.Sprintf("%s  %d messages", util.TruncateWidth(conv.Title, 30), conv.MessageCount())
	if n := conv.PendingCount(); n > 0 {
		info += fmt.Sprintf("  %d waiting", n)
	}
	return info
}
