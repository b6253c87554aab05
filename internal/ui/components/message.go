// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/farqad/farqad-tui/internal/model"
	"github.com/farqad/farqad-tui/internal/transcript"
	"github.com/farqad/farqad-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLES
// =============================================================================

// MessageView renders a single transcript entry as a chat bubble. User
// messages align right, assistant messages align left. Assistant content
// is expected to be pre-rendered (markdown already expanded by the chat
// model); the bubble only frames it.
type MessageView struct {
	entry   transcript.Entry
	width   int
	theme   *styles.Theme
	content string
	isError bool
}

// NewMessageView wraps an entry for rendering. rendered is the display
// body; pass the raw content if no markdown pass ran.
func NewMessageView(entry transcript.Entry, rendered string, theme *styles.Theme) *MessageView {
	return &MessageView{entry: entry, width: 80, theme: theme, content: rendered}
}

// SetWidth sets the total line width the bubble lays out within.
func (mv *MessageView) SetWidth(width int) {
	if width > 20 {
		mv.width = width
	}
}

// MarkError switches the bubble to error styling.
func (mv *MessageView) MarkError() {
	mv.isError = true
}

// View renders the labeled bubble.
func (mv *MessageView) View() string {
	bubbleWidth := mv.width * 3 / 4
	if bubbleWidth < 20 {
		bubbleWidth = mv.width - 4
	}

	body := strings.TrimRight(mv.content, "\n")

	switch {
	case mv.entry.Role == model.RoleUser:
		bubble := mv.theme.UserBubble.Width(min(bubbleWidth, lipgloss.Width(body)+4)).Render(body)
		block := lipgloss.JoinVertical(lipgloss.Right, mv.theme.UserLabel.Render("You"), bubble)
		return lipgloss.PlaceHorizontal(mv.width, lipgloss.Right, block)

	case mv.isError:
		bubble := mv.theme.ErrorBubble.Width(bubbleWidth).Render(body)
		return lipgloss.JoinVertical(lipgloss.Left, mv.theme.AssistantLabel.Render("Farqad"), bubble)

	default:
		bubble := mv.theme.AssistantBubble.Width(bubbleWidth).Render(body)
		parts := []string{mv.theme.AssistantLabel.Render("Farqad"), bubble}
		if note := mv.sourcesNote(); note != "" {
			parts = append(parts, mv.theme.SourcesNote.Render(note))
		}
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}
}

// sourcesNote summarizes the citation block the backend attached, if
// any, as a single footnote line.
func (mv *MessageView) sourcesNote() string {
	src := strings.TrimSpace(mv.entry.Sources)
	if src == "" {
		return ""
	}
	lines := 0
	for _, line := range strings.Split(src, "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
		}
	}
	if lines == 1 {
		return "└ source: " + strings.TrimSpace(src)
	}
	return fmt.Sprintf("└ %d sources cited", lines)
}
