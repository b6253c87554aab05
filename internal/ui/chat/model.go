// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat TUI: a scrollback
// viewport over the transcript, a textarea for input, and pickers for
// documents and saved chats.
package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/farqad/farqad-tui/internal/dispatch"
	"github.com/farqad/farqad-tui/internal/finance"
	"github.com/farqad/farqad-tui/internal/history"
	"github.com/farqad/farqad-tui/internal/model"
	"github.com/farqad/farqad-tui/internal/store"
	"github.com/farqad/farqad-tui/internal/transcript"
	"github.com/farqad/farqad-tui/internal/ui/components"
	"github.com/farqad/farqad-tui/internal/ui/styles"
)

// docSelectorDelay is how long after entering document mode the selector
// opens, giving the mode indicator a beat to update first.
const docSelectorDelay = 300 * time.Millisecond

// picker identifies which overlay list, if any, is open.
type picker int

const (
	pickerNone picker = iota
	pickerDocuments
	pickerSavedChats
)

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	theme      *styles.Theme
	state      *dispatch.State
	history    *history.Manager
	dispatcher *dispatch.Dispatcher
	transcript *transcript.Transcript
	watcher    *store.Watcher

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	pickerOpen picker
	pickerList list.Model

	username   string
	width      int
	height     int
	busy       bool
	ready      bool
	statusNote string
}

// New assembles the chat model. watcher may be nil when the session file
// cannot be observed.
func New(state *dispatch.State, hist *history.Manager, d *dispatch.Dispatcher, username string, watcher *store.Watcher) *Model {
	theme := styles.NewTheme()

	ta := textarea.New()
	ta.Placeholder = components.InputPlaceholder(state)
	ta.Prompt = "┃ "
	ta.CharLimit = 4000
	ta.SetHeight(2)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	tr := transcript.New()
	tr.SetPostRenderHook(func(e *transcript.Entry) {
		e.Chart = finance.Extract(e.Content)
	})

	m := &Model{
		theme:      theme,
		state:      state,
		history:    hist,
		dispatcher: d,
		transcript: tr,
		watcher:    watcher,
		input:      ta,
		spinner:    sp,
		username:   username,
	}
	m.rebuildTranscript()
	return m
}

// Init starts the spinner and, when available, the session-file watcher.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.watcher != nil {
		cmds = append(cmds, m.waitForStoreChange())
	}
	return tea.Batch(cmds...)
}

// rebuildTranscript replays the persisted history through the transcript
// filters, so a restored session renders exactly like a live one.
func (m *Model) rebuildTranscript() {
	m.transcript.Reset("")
	for _, turn := range m.history.Turns() {
		if turn.Role == model.RoleUser {
			m.transcript.AddUser(turn.Content)
		} else {
			m.transcript.AddAssistant(turn.Content)
		}
	}
}

// =============================================================================
// MESSAGES AND COMMANDS
// =============================================================================

// answerMsg carries a completed (or failed) backend exchange.
type answerMsg struct {
	result *dispatch.Result
	err    error
}

// openDocSelectorMsg opens the document picker after docSelectorDelay.
type openDocSelectorMsg struct{}

// storeChangedMsg reports an external rewrite of the session file.
type storeChangedMsg struct{}

// sendCmd dispatches the query off the UI goroutine.
func (m *Model) sendCmd(query string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.dispatcher.Send(context.Background(), query)
		return answerMsg{result: result, err: err}
	}
}

func openDocSelectorCmd() tea.Cmd {
	return tea.Tick(docSelectorDelay, func(time.Time) tea.Msg {
		return openDocSelectorMsg{}
	})
}

// waitForStoreChange blocks on the watcher until the session file is
// rewritten by another process.
func (m *Model) waitForStoreChange() tea.Cmd {
	return func() tea.Msg {
		_, ok := <-m.watcher.Changes()
		if !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}
