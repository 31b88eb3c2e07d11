// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/chatshell/internal/chat"
	"github.com/jeranaias/chatshell/internal/config"
	"github.com/jeranaias/chatshell/internal/telemetry"
	"github.com/jeranaias/chatshell/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// focus is the widget receiving key presses.
type focus int

const (
	focusInput focus = iota
	focusSidebar
	focusSearch
	focusRename
	focusModels
	focusConfirmDelete
)

// Layout constants.
const (
	inputHeight     = 3
	toolsPanelWidth = 30
	headerHeight    = 2
	statusHeight    = 1
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options wires the shell to the rest of the program.
type Options struct {
	// Context ends background work started by the shell (store
	// subscription and config watching).
	Context context.Context

	Controller *chat.Controller
	Config     *config.Config

	// ConfigPath is watched for changes when set.
	ConfigPath string

	// Usage feeds the tools panel. Optional.
	Usage *telemetry.UsageTracker

	Logger *zap.Logger
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat shell.
type Model struct {
	ctx        context.Context
	controller *chat.Controller
	store      *chat.Store
	cfg        *config.Config
	configPath string
	usage      *telemetry.UsageTracker
	logger     *zap.Logger

	// Latest copy of the store state and the version it was read at
	state   chat.State
	version uint64

	changes     <-chan chat.Change
	unsubscribe func()
	reloads     chan configReloadedMsg

	// Styling
	theme    *styles.Theme
	renderer *markdownRenderer
	keys     KeyMap

	// Dimensions
	width  int
	height int

	// Widgets
	viewport viewport.Model
	input    textarea.Model
	search   textinput.Model
	rename   textinput.Model
	spinner  spinner.Model

	// Panels
	focus       focus
	sidebarOpen bool
	toolsOpen   bool
	showHelp    bool

	// Sidebar
	query         string
	sidebarCursor int
	renameID      string
	deleteID      string

	// Model picker
	modelCursor int

	// Tools panel switches, presentation only
	tools []toolSwitch

	// Status line
	status      string
	statusIsErr bool
	statusSeq   int

	spinning bool
}

// New creates a shell model. Options.Controller and Options.Config are
// required.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mode, err := styles.ParseMode(opts.Config.UI.Theme)
	if err != nil {
		logger.Warn("unknown theme, using dark", zap.String("theme", opts.Config.UI.Theme))
	}
	theme := styles.NewTheme(mode)

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 8000
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.Focus()

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search conversations"
	search.CharLimit = 100

	rename := textinput.New()
	rename.Prompt = "> "
	rename.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = styles.TypingSpinner
	sp.Style = theme.Typing

	store := opts.Controller.Store()

	m := Model{
		ctx:         ctx,
		controller:  opts.Controller,
		store:       store,
		cfg:         opts.Config,
		configPath:  opts.ConfigPath,
		usage:       opts.Usage,
		logger:      logger.With(zap.String("component", "shell")),
		state:       store.State(),
		version:     store.Version(),
		theme:       theme,
		renderer:    newMarkdownRenderer(opts.Config.UI.RenderMarkdown),
		keys:        DefaultKeyMap(),
		viewport:    viewport.New(0, 0),
		input:       ta,
		search:      search,
		rename:      rename,
		spinner:     sp,
		focus:       focusInput,
		sidebarOpen: opts.Config.UI.SidebarOpen,
		toolsOpen:   opts.Config.UI.ShowToolsPanel,
		tools:       defaultTools(),
	}
	m.updatePlaceholder()

	m.changes, m.unsubscribe = store.Subscribe(ctx)
	if m.configPath != "" {
		m.reloads = make(chan configReloadedMsg, 1)
	}
	return m
}

// Close removes the shell's store subscription. It is safe to call more
// than once.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textarea.Blink,
		waitForChange(m.changes),
	}
	if m.reloads != nil {
		cmds = append(cmds,
			watchConfig(m.ctx, m.configPath, m.reloads, m.logger),
			waitForReload(m.ctx, m.reloads))
	}
	return tea.Batch(cmds...)
}

// State returns the store state the model last rendered.
func (m Model) State() chat.State {
	return m.state
}

// =============================================================================
// TOOLS PANEL
// =============================================================================

// toolSwitch is one row of the tools panel.
type toolSwitch struct {
	Title       string
	Description string
	Toggle      bool
}

func defaultTools() []toolSwitch {
	return []toolSwitch{
		{Title: "Internet Search", Description: "Enable web searches for up-to-date information", Toggle: true},
		{Title: "Deep Research Mode", Description: "More thorough analysis for complex questions", Toggle: true},
		{Title: "Chain of Thought", Description: "Show AI reasoning process step by step", Toggle: true},
		{Title: "Email Integration", Description: "Connect to Outlook or Gmail"},
		{Title: "JIRA Integration", Description: "Create and manage JIRA tickets"},
		{Title: "Microsoft Teams", Description: "Share conversations with Teams"},
	}
}
