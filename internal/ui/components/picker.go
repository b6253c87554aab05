// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/farqad/farqad-tui/internal/dispatch"
	"github.com/farqad/farqad-tui/internal/finance"
	"github.com/farqad/farqad-tui/internal/model"
	"github.com/farqad/farqad-tui/internal/ui/styles"
)

// =============================================================================
// PICKERS
// =============================================================================

// documentItem adapts a document for the list component.
type documentItem struct {
	doc dispatch.Document
}

func (i documentItem) Title() string       { return "📄 " + i.doc.Name }
func (i documentItem) Description() string { return i.doc.ID }
func (i documentItem) FilterValue() string { return i.doc.Name }

// NewDocumentPicker builds the document selector shown when document
// mode is entered without a focused file.
func NewDocumentPicker(docs []dispatch.Document, width, height int, theme *styles.Theme) list.Model {
	items := make([]list.Item, len(docs))
	for i, d := range docs {
		items[i] = documentItem{doc: d}
	}

	l := list.New(items, pickerDelegate(theme), width, height)
	l.Title = "Select a document"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = theme.HeaderBrand
	return l
}

// PickedDocument returns the document behind the selected item, if any.
func PickedDocument(l list.Model) (dispatch.Document, bool) {
	item, ok := l.SelectedItem().(documentItem)
	if !ok {
		return dispatch.Document{}, false
	}
	return item.doc, true
}

// savedChatItem adapts a saved chat for the list component.
type savedChatItem struct {
	chat  model.SavedChat
	index int
}

func (i savedChatItem) Title() string {
	return fmt.Sprintf("%s %s", i.chat.Icon(i.index), i.chat.Name)
}

func (i savedChatItem) Description() string {
	return fmt.Sprintf("%d messages · %s", len(i.chat.Messages), i.chat.Timestamp.Format("Jan 2 15:04"))
}

func (i savedChatItem) FilterValue() string { return i.chat.Name }

// NewSavedChatPicker builds the saved-chat selector.
func NewSavedChatPicker(chats []model.SavedChat, width, height int, theme *styles.Theme) list.Model {
	items := make([]list.Item, len(chats))
	for i, c := range chats {
		items[i] = savedChatItem{chat: c, index: i}
	}

	l := list.New(items, pickerDelegate(theme), width, height)
	l.Title = "Saved chats"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = theme.HeaderBrand
	return l
}

// PickedChat returns the saved chat behind the selected item, if any.
func PickedChat(l list.Model) (model.SavedChat, bool) {
	item, ok := l.SelectedItem().(savedChatItem)
	if !ok {
		return model.SavedChat{}, false
	}
	return item.chat, true
}

func pickerDelegate(theme *styles.Theme) list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(styles.Teal).
		BorderForeground(styles.Teal)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(styles.TealDeep).
		BorderForeground(styles.Teal)
	return d
}

// PickerFrame wraps a picker in a bordered panel.
func PickerFrame(content string, width int) string {
	panel := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Border).
		Padding(0, 1).
		Render(content)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, panel)
}

// SampleDocuments lists the documents available for focus. The bundled
// STC annual report ships with the client so document mode is usable
// before any upload pipeline exists.
func SampleDocuments() []dispatch.Document {
	return []dispatch.Document{
		{ID: finance.SampleReportDocumentID, Name: "STC Annual Report 2024.pdf"},
	}
}
