// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME MODE
// =============================================================================

// Mode selects the palette.
type Mode string

const (
	ModeDark  Mode = "dark"
	ModeLight Mode = "light"
	ModeAuto  Mode = "auto"
)

// ParseMode parses a config theme value. Empty means dark.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeDark:
		return ModeDark, nil
	case ModeLight:
		return ModeLight, nil
	case ModeAuto:
		return ModeAuto, nil
	default:
		return ModeDark, fmt.Errorf("unknown theme %q", s)
	}
}

// =============================================================================
// THEME
// =============================================================================

// Theme holds all the styled components for the shell.
type Theme struct {
	// Mode is what was asked for; IsDark is what it resolved to
	Mode         Mode
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER
	// ==========================================================================

	Header        lipgloss.Style
	HeaderBrand   lipgloss.Style
	HeaderModel   lipgloss.Style
	HeaderButton  lipgloss.Style
	HeaderActive  lipgloss.Style
	OfflineBadge  lipgloss.Style
	ModelSelected lipgloss.Style
	ModelOption   lipgloss.Style

	// ==========================================================================
	// SIDEBAR
	// ==========================================================================

	Sidebar         lipgloss.Style
	SidebarFocused  lipgloss.Style
	SectionTitle    lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarSelected lipgloss.Style
	SidebarCurrent  lipgloss.Style
	SidebarHint     lipgloss.Style
	PinMarker       lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	ErrorBubble     lipgloss.Style
	Timestamp       lipgloss.Style
	Typing          lipgloss.Style

	// ==========================================================================
	// WELCOME
	// ==========================================================================

	WelcomeTitle lipgloss.Style
	WelcomeText  lipgloss.Style

	// ==========================================================================
	// INPUT
	// ==========================================================================

	InputContainer        lipgloss.Style
	InputContainerFocused lipgloss.Style
	InputHint             lipgloss.Style

	// ==========================================================================
	// TOOLS PANEL
	// ==========================================================================

	ToolsPanel lipgloss.Style
	ToolOn     lipgloss.Style
	ToolOff    lipgloss.Style

	// ==========================================================================
	// STATUS LINE
	// ==========================================================================

	StatusBar   lipgloss.Style
	StatusInfo  lipgloss.Style
	StatusError lipgloss.Style
	ShortcutKey lipgloss.Style
	ShortcutDsc lipgloss.Style
}

// NewTheme creates a theme for mode. ModeAuto follows the terminal
// background.
func NewTheme(mode Mode) *Theme {
	t := &Theme{
		Mode:         mode,
		ColorProfile: termenv.ColorProfile(),
	}
	t.IsDark = resolveDark(mode)
	t.initStyles()
	return t
}

func resolveDark(mode Mode) bool {
	switch mode {
	case ModeLight:
		return false
	case ModeAuto:
		return termenv.HasDarkBackground()
	default:
		return true
	}
}

// Toggle switches between the dark and light palettes. An auto theme
// becomes explicit.
func (t *Theme) Toggle() {
	if t.IsDark {
		t.Mode = ModeLight
	} else {
		t.Mode = ModeDark
	}
	t.IsDark = t.Mode == ModeDark
	t.initStyles()
}

// SetMode switches to mode and rebuilds every style.
func (t *Theme) SetMode(mode Mode) {
	t.Mode = mode
	t.IsDark = resolveDark(mode)
	t.initStyles()
}

// Name returns the label shown on the theme toggle.
func (t *Theme) Name() string {
	if t.IsDark {
		return "Dark"
	}
	return "Light"
}

// c resolves an adaptive color for the active palette.
func (t *Theme) c(color lipgloss.AdaptiveColor) lipgloss.Color {
	return pick(color, t.IsDark)
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(t.c(SurfaceDim)).
		Foreground(t.c(TextPrimary)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(t.c(Overlay)).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.c(Cyan))

	t.HeaderModel = lipgloss.NewStyle().
		Foreground(t.c(Purple)).
		Bold(true)

	t.HeaderButton = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary)).
		Padding(0, 1)

	t.HeaderActive = lipgloss.NewStyle().
		Foreground(t.c(TextInverse)).
		Background(t.c(Purple)).
		Padding(0, 1)

	t.OfflineBadge = lipgloss.NewStyle().
		Foreground(t.c(TextInverse)).
		Background(t.c(Emerald)).
		Bold(true).
		Padding(0, 1)

	t.ModelSelected = lipgloss.NewStyle().
		Foreground(t.c(TextInverse)).
		Background(t.c(Purple)).
		Padding(0, 1)

	t.ModelOption = lipgloss.NewStyle().
		Foreground(t.c(TextPrimary)).
		Padding(0, 1)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(t.c(Overlay)).
		Padding(0, 1)

	t.SidebarFocused = t.Sidebar.
		BorderForeground(t.c(Cyan))

	t.SectionTitle = lipgloss.NewStyle().
		Foreground(t.c(TextMuted)).
		Bold(true).
		MarginTop(1)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary))

	t.SidebarSelected = lipgloss.NewStyle().
		Foreground(t.c(TextPrimary)).
		Background(t.c(SelectionBg))

	t.SidebarCurrent = lipgloss.NewStyle().
		Foreground(t.c(Cyan)).
		Bold(true)

	t.SidebarHint = lipgloss.NewStyle().
		Foreground(t.c(TextMuted)).
		Italic(true)

	t.PinMarker = lipgloss.NewStyle().
		Foreground(t.c(Amber))

	// Messages
	t.UserLabel = lipgloss.NewStyle().
		Foreground(t.c(Cyan)).
		Bold(true)

	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(t.c(Purple)).
		Bold(true)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(t.c(UserBubbleFg)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(UserBubbleBorder)).
		Padding(0, 1)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(t.c(AssistantBubbleFg)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(AssistantBubbleBorder)).
		Padding(0, 1)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(t.c(ErrorBubbleFg)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(ErrorBubbleBorder)).
		Padding(0, 1)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(t.c(TextMuted))

	t.Typing = lipgloss.NewStyle().
		Foreground(t.c(Purple)).
		Italic(true)

	// Welcome
	t.WelcomeTitle = lipgloss.NewStyle().
		Foreground(t.c(Cyan)).
		Bold(true).
		MarginBottom(1)

	t.WelcomeText = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary))

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(Overlay)).
		Padding(0, 1)

	t.InputContainerFocused = t.InputContainer.
		BorderForeground(t.c(Cyan))

	t.InputHint = lipgloss.NewStyle().
		Foreground(t.c(TextMuted))

	// Tools panel
	t.ToolsPanel = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(t.c(Overlay)).
		Padding(0, 1)

	t.ToolOn = lipgloss.NewStyle().
		Foreground(t.c(Emerald))

	t.ToolOff = lipgloss.NewStyle().
		Foreground(t.c(TextMuted))

	// Status line
	t.StatusBar = lipgloss.NewStyle().
		Background(t.c(SurfaceDim)).
		Foreground(t.c(TextSecondary)).
		Padding(0, 1)

	t.StatusInfo = lipgloss.NewStyle().
		Foreground(t.c(Emerald))

	t.StatusError = lipgloss.NewStyle().
		Foreground(t.c(Rose)).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(t.c(Cyan)).
		Bold(true)

	t.ShortcutDsc = lipgloss.NewStyle().
		Foreground(t.c(TextMuted))
}

// GlamourStyle returns the glamour standard style name for the palette.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// =============================================================================
// LAYOUT
// =============================================================================

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns, sidebar hidden
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns, room for the tools panel
)

// SidebarWidth returns the sidebar width for the layout, 0 when hidden.
func (t *Theme) SidebarWidth() int {
	switch t.GetLayoutMode() {
	case LayoutNarrow:
		return 0
	case LayoutMedium:
		return 24
	default:
		return 32
	}
}

// =============================================================================
// TYPING INDICATOR
// =============================================================================

// TypingSpinner is the frame set for a reply in flight.
var TypingSpinner = spinner.Spinner{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    time.Second / 6,
}
