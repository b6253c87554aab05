// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/farqad/farqad-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME BANNER
// =============================================================================

// WelcomeMessage is the greeting shown once per app lifetime, before
// any conversation is loaded.
const WelcomeMessage = "Welcome to Farqad! I am Farqad, your financial assistant. " +
	"Ask me about budgeting, revenue analysis, or load a document to explore its figures."

// WelcomeBanner renders the startup panel with the greeting and the key
// bindings the user needs to get going.
func WelcomeBanner(width int, username string, theme *styles.Theme) string {
	greeting := WelcomeMessage
	if username != "" {
		greeting = "Welcome back, " + username + "! " +
			"Ask me about budgeting, revenue analysis, or load a document to explore its figures."
	}

	hints := []string{
		"ctrl+d  toggle document mode",
		"ctrl+n  new chat",
		"ctrl+l  saved chats",
		"ctrl+c  quit",
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.HeaderBrand.Render("✦ Farqad"),
		"",
		greeting,
		"",
		theme.Hint.Render(strings.Join(hints, "\n")),
	)

	panel := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Teal).
		Padding(1, 2).
		Width(min(width-4, 64)).
		Render(body)

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, panel)
}
