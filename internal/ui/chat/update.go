// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/farqad/farqad-tui/internal/dispatch"
	"github.com/farqad/farqad-tui/internal/history"
	"github.com/farqad/farqad-tui/internal/ui/components"
)

// Update handles Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case answerMsg:
		return m.handleAnswer(msg)

	case openDocSelectorMsg:
		if m.state.Mode() == dispatch.ModeDocument && m.state.FocusedDocument() == nil {
			m.openDocumentPicker()
		}
		return m, nil

	case storeChangedMsg:
		m.history.Reload()
		m.rebuildTranscript()
		m.statusNote = "session updated by another process"
		m.refreshViewport()
		return m, m.waitForStoreChange()

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateChildren(msg)
}

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	inputHeight := 4
	headerHeight := 2
	statusHeight := 1
	vpHeight := m.height - inputHeight - headerHeight - statusHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(m.width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}
	m.input.SetWidth(m.width - 2)

	// Word wrap follows the terminal, so the renderer is rebuilt on
	// every resize.
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.bubbleWidth()-4),
	)
	if err == nil {
		m.renderer = renderer
	}

	if m.pickerOpen != pickerNone {
		m.pickerList.SetSize(m.width-8, vpHeight-2)
	}

	m.refreshViewport()
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pickerOpen != pickerNone {
		return m.handlePickerKey(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		m.state.Abort()
		return m, tea.Quit

	case "esc":
		if m.busy {
			// Abandon the in-flight request; its answer will be stale.
			m.state.Abort()
			m.busy = false
			m.statusNote = "request cancelled"
			return m, nil
		}
		m.input.Reset()
		return m, nil

	case "enter":
		return m.submit()

	case "ctrl+d":
		return m.toggleMode()

	case "ctrl+n":
		m.history.Clear()
		m.transcript.Reset("How can I help you today?")
		m.statusNote = ""
		m.refreshViewport()
		return m, nil

	case "ctrl+l":
		m.openSavedChatPicker()
		return m, nil

	case "ctrl+u":
		m.viewport.HalfViewUp()
		return m, nil

	case "ctrl+j":
		m.viewport.HalfViewDown()
		return m, nil
	}

	return m.updateChildren(msg)
}

// submit sends the textarea content as a query.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m, nil
	}
	if m.busy {
		m.statusNote = "still thinking - esc to cancel"
		return m, nil
	}

	m.transcript.AddUser(query)
	m.input.Reset()
	m.busy = true
	m.statusNote = ""
	m.refreshViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(m.sendCmd(query), m.spinner.Tick)
}

func (m *Model) handleAnswer(msg answerMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	switch {
	case errors.Is(msg.err, dispatch.ErrBusy):
		m.statusNote = "still thinking - esc to cancel"

	case msg.err != nil:
		m.transcript.AddAssistant(dispatch.ErrorMessage(msg.err))

	case msg.result == nil:
		// Empty query was swallowed by the dispatcher.

	case !m.state.IsCurrent(msg.result.Generation):
		// A newer exchange superseded this answer; drop it.

	default:
		m.transcript.AddAssistant(msg.result.Answer)
	}

	m.input.Placeholder = components.InputPlaceholder(m.state)
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, nil
}

// toggleMode flips between general and document mode. Entering document
// mode without a focused file schedules the document picker.
func (m *Model) toggleMode() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.state.Mode() == dispatch.ModeDocument {
		m.state.SwitchToGeneralMode()
	} else if needsSelector := m.state.SwitchToDocumentMode(); needsSelector {
		cmd = openDocSelectorCmd()
	}
	m.input.Placeholder = components.InputPlaceholder(m.state)
	return m, cmd
}

// =============================================================================
// PICKERS
// =============================================================================

func (m *Model) openDocumentPicker() {
	m.pickerList = components.NewDocumentPicker(
		components.SampleDocuments(), m.width-8, m.pickerHeight(), m.theme)
	m.pickerOpen = pickerDocuments
	m.input.Blur()
}

func (m *Model) openSavedChatPicker() {
	m.pickerList = components.NewSavedChatPicker(
		m.history.SavedChats(), m.width-8, m.pickerHeight(), m.theme)
	m.pickerOpen = pickerSavedChats
	m.input.Blur()
}

func (m *Model) closePicker() {
	m.pickerOpen = pickerNone
	m.input.Focus()
}

func (m *Model) pickerHeight() int {
	h := m.viewport.Height - 2
	if h < 5 {
		h = 10
	}
	return h
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the list's filter input is active, every key belongs to it.
	if m.pickerList.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc", "ctrl+c":
			m.closePicker()
			return m, nil
		case "enter":
			return m.pickerSelect()
		case "ctrl+x":
			return m.pickerDelete()
		case "D":
			return m.pickerDeleteAll()
		}
	}

	var cmd tea.Cmd
	m.pickerList, cmd = m.pickerList.Update(msg)
	return m, cmd
}

func (m *Model) pickerSelect() (tea.Model, tea.Cmd) {
	switch m.pickerOpen {
	case pickerDocuments:
		if doc, ok := components.PickedDocument(m.pickerList); ok {
			m.state.FocusOnDocument(doc.ID, doc.Name)
			m.statusNote = "focused on " + doc.Name
		}
	case pickerSavedChats:
		if chat, ok := components.PickedChat(m.pickerList); ok {
			if m.history.LoadSavedChat(chat.ID) {
				m.rebuildTranscript()
			}
		}
	}
	m.closePicker()
	m.input.Placeholder = components.InputPlaceholder(m.state)
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, nil
}

// pickerDelete removes the selected saved chat. Deleting the active chat
// also resets the transcript with the deletion notice.
func (m *Model) pickerDelete() (tea.Model, tea.Cmd) {
	if m.pickerOpen != pickerSavedChats {
		return m, nil
	}
	chat, ok := components.PickedChat(m.pickerList)
	if !ok {
		return m, nil
	}

	if wasActive := m.history.DeleteSavedChat(chat.ID); wasActive {
		m.transcript.Reset(history.ChatDeletedMessage)
		m.refreshViewport()
	}
	m.openSavedChatPicker() // rebuild the list without the deleted entry
	return m, nil
}

// pickerDeleteAll wipes every saved chat and the live history, then
// closes the picker since there is nothing left to pick.
func (m *Model) pickerDeleteAll() (tea.Model, tea.Cmd) {
	if m.pickerOpen != pickerSavedChats {
		return m, nil
	}

	m.history.DeleteAllSavedChats()
	m.transcript.Reset(history.AllChatsClearedMessage)
	m.closePicker()
	m.refreshViewport()
	return m, nil
}

// updateChildren forwards a message to the focused child components.
func (m *Model) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.pickerOpen != pickerNone {
		m.pickerList, cmd = m.pickerList.Update(msg)
		return m, cmd
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}
