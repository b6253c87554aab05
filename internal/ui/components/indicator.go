// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/farqad/farqad-tui/internal/dispatch"
	"github.com/farqad/farqad-tui/internal/ui/styles"
	"github.com/farqad/farqad-tui/internal/util"
)

// =============================================================================
// MODE INDICATOR
// =============================================================================

// ModeIndicator renders the current chat mode for the status bar.
func ModeIndicator(state *dispatch.State, theme *styles.Theme) string {
	switch state.Mode() {
	case dispatch.ModeDocument:
		if doc := state.FocusedDocument(); doc != nil {
			name := util.TruncateWidth(doc.Name, 28)
			return theme.ModeDocument.Render("● Document: " + name)
		}
		return theme.ModeDocument.Render("● Document (no file selected)")
	default:
		return theme.ModeGeneral.Render("● General")
	}
}

// InputPlaceholder returns the textarea placeholder for the mode.
func InputPlaceholder(state *dispatch.State) string {
	if state.Mode() == dispatch.ModeDocument {
		if doc := state.FocusedDocument(); doc != nil {
			return fmt.Sprintf("Ask about %s...", doc.Name)
		}
		return "Select a document, or ask a general question..."
	}
	return "Ask Farqad about your finances..."
}

// MemoryIndicator renders the bounded-history count, e.g. "memory 7/10".
func MemoryIndicator(count, max int, theme *styles.Theme) string {
	return theme.MemoryCount.Render(fmt.Sprintf("memory %d/%d", count, max))
}
