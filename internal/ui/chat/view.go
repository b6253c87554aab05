// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/farqad/farqad-tui/internal/history"
	"github.com/farqad/farqad-tui/internal/model"
	"github.com/farqad/farqad-tui/internal/ui/components"
)

// View renders the full chat screen.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")

	if m.pickerOpen != pickerNone {
		b.WriteString(components.PickerFrame(m.pickerList.View(), m.width))
	} else {
		b.WriteString(m.viewport.View())
	}

	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}

func (m *Model) headerView() string {
	brand := m.theme.HeaderBrand.Render("✦ Farqad")
	mode := components.ModeIndicator(m.state, m.theme)

	gap := m.width - lipgloss.Width(brand) - lipgloss.Width(mode) - 2
	if gap < 1 {
		gap = 1
	}
	line := brand + strings.Repeat(" ", gap) + mode
	return m.theme.Header.Width(m.width).Render(line)
}

func (m *Model) statusView() string {
	left := components.MemoryIndicator(m.history.MemoryCount(), history.MaxHistoryLength, m.theme)
	if m.busy {
		left = m.spinner.View() + " " + m.theme.StatusBar.Render("thinking...")
	}

	right := m.theme.Hint.Render("ctrl+d mode · ctrl+n new · ctrl+l chats · ctrl+c quit")
	if m.statusNote != "" {
		right = m.theme.StatusBar.Render(m.statusNote)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return " " + left + strings.Repeat(" ", gap) + right
}

// refreshViewport re-renders the transcript into the viewport.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.transcriptView())
}

// transcriptView renders all entries, or the welcome banner when the
// conversation is empty.
func (m *Model) transcriptView() string {
	entries := m.transcript.Entries()
	if len(entries) == 0 {
		return "\n" + components.WelcomeBanner(m.width, m.username, m.theme)
	}

	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		rendered := e.Content
		if e.Role == model.RoleAssistant && m.renderer != nil {
			if out, err := m.renderer.Render(e.Content); err == nil {
				rendered = out
			}
		}

		mv := components.NewMessageView(e, rendered, m.theme)
		mv.SetWidth(m.width - 2)
		if e.Role == model.RoleAssistant && strings.HasPrefix(e.Content, "Error: ") {
			mv.MarkError()
		}
		blocks = append(blocks, mv.View())

		if e.Chart.Valid() {
			cv := components.NewChartView(e.Chart, m.theme)
			cv.SetWidth(m.bubbleWidth())
			blocks = append(blocks, cv.View())
		}
	}
	return strings.Join(blocks, "\n")
}

// bubbleWidth is the content width message bubbles and charts lay out in.
func (m *Model) bubbleWidth() int {
	w := (m.width - 2) * 3 / 4
	if w < 20 {
		w = 40
	}
	return w
}
