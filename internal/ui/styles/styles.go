// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling for the farqad TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark
// adjustment.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// COLORS
// =============================================================================

// Teal - brand color, user messages
var Teal = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// TealDeep - darker teal for backgrounds
var TealDeep = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#164E63"}

// Emerald - assistant accents, positive trends
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Violet - document-mode indicator, chart bars
var Violet = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Rose - errors, negative trends
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - warnings, busy indicator
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Text - primary text
var Text = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"}

// TextMuted - secondary text, timestamps, hints
var TextMuted = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

// Border - bubble and panel borders
var Border = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"}

// =============================================================================
// THEME
// =============================================================================

// Theme holds the styled components the chat UI renders with.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Header        lipgloss.Style
	HeaderBrand   lipgloss.Style
	StatusBar     lipgloss.Style
	ModeGeneral   lipgloss.Style
	ModeDocument  lipgloss.Style
	MemoryCount   lipgloss.Style

	UserBubble      lipgloss.Style
	UserLabel       lipgloss.Style
	AssistantBubble lipgloss.Style
	AssistantLabel  lipgloss.Style
	ErrorBubble     lipgloss.Style
	SourcesNote     lipgloss.Style

	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	ChartTitle lipgloss.Style
	ChartBar   lipgloss.Style
	ChartAxis  lipgloss.Style
	ChartValue lipgloss.Style

	Spinner lipgloss.Style
	Hint    lipgloss.Style
}

// NewTheme builds the theme, probing the terminal's capabilities.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}

	t.Header = lipgloss.NewStyle().
		Foreground(Text).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Border)
	t.HeaderBrand = lipgloss.NewStyle().Bold(true).Foreground(Teal)

	t.StatusBar = lipgloss.NewStyle().Foreground(TextMuted)
	t.ModeGeneral = lipgloss.NewStyle().Bold(true).Foreground(Emerald)
	t.ModeDocument = lipgloss.NewStyle().Bold(true).Foreground(Violet)
	t.MemoryCount = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(Text).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Teal).
		Padding(0, 1)
	t.UserLabel = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(Text).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
	t.AssistantLabel = lipgloss.NewStyle().Foreground(Emerald).Italic(true)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(Rose).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)

	t.SourcesNote = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.InputPrompt = lipgloss.NewStyle().Bold(true).Foreground(Teal)
	t.InputPlaceholder = lipgloss.NewStyle().Foreground(TextMuted)

	t.ChartTitle = lipgloss.NewStyle().Bold(true).Foreground(Text)
	t.ChartBar = lipgloss.NewStyle().Foreground(Violet)
	t.ChartAxis = lipgloss.NewStyle().Foreground(TextMuted)
	t.ChartValue = lipgloss.NewStyle().Foreground(Text)

	t.Spinner = lipgloss.NewStyle().Foreground(Amber)
	t.Hint = lipgloss.NewStyle().Foreground(TextMuted)

	return t
}
