// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farqad/farqad-tui/internal/dispatch"
	"github.com/farqad/farqad-tui/internal/history"
	"github.com/farqad/farqad-tui/internal/model"
	"github.com/farqad/farqad-tui/internal/store"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	state := dispatch.Restore(s)
	hist := history.NewManager(s)
	m := New(state, hist, nil, "", nil)

	// Size the screen the way the runtime would.
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(*Model)
}

func TestViewShowsWelcomeWhenEmpty(t *testing.T) {
	m := newTestModel(t)
	assert.Contains(t, m.View(), "Welcome to Farqad")
}

func TestRestoredHistoryReplaysIntoTranscript(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	hist := history.NewManager(s)
	hist.Append(model.NewUserTurn("what is my budget?"))
	hist.Append(model.NewAssistantTurn("Your budget is 5,000 SAR."))

	m := New(dispatch.Restore(s), history.NewManager(s), nil, "", nil)
	require.Equal(t, 2, m.transcript.Len())
	assert.Equal(t, model.RoleUser, m.transcript.Entries()[0].Role)
}

func TestAnswerErrorRendersErrorBubble(t *testing.T) {
	m := newTestModel(t)
	m.busy = true

	updated, _ := m.Update(answerMsg{err: errors.New("connection refused")})
	m = updated.(*Model)

	assert.False(t, m.busy)
	entries := m.transcript.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Error: connection refused. Please try again.", entries[0].Content)
}

func TestStaleAnswerDropped(t *testing.T) {
	m := newTestModel(t)

	gen, err := m.state.BeginSend()
	require.NoError(t, err)
	m.state.FinishSend(gen)
	m.state.Abort() // supersedes gen

	updated, _ := m.Update(answerMsg{result: &dispatch.Result{Answer: "late", Generation: gen}})
	m = updated.(*Model)
	assert.Zero(t, m.transcript.Len(), "stale answers must not render")
}

func TestToggleModeSchedulesDocumentPicker(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, dispatch.ModeGeneral, m.state.Mode())

	_, cmd := m.toggleMode()
	assert.Equal(t, dispatch.ModeDocument, m.state.Mode())
	assert.NotNil(t, cmd, "entering document mode without a file schedules the selector")

	_, cmd = m.toggleMode()
	assert.Equal(t, dispatch.ModeGeneral, m.state.Mode())
	assert.Nil(t, cmd)
}

func TestDocumentSelectorOpensOnlyWithoutFocus(t *testing.T) {
	m := newTestModel(t)

	m.state.SwitchToDocumentMode()
	updated, _ := m.Update(openDocSelectorMsg{})
	m = updated.(*Model)
	assert.Equal(t, pickerDocuments, m.pickerOpen)

	m.closePicker()
	m.state.FocusOnDocument("doc-1", "report.pdf")
	updated, _ = m.Update(openDocSelectorMsg{})
	m = updated.(*Model)
	assert.Equal(t, pickerNone, m.pickerOpen, "focused document needs no selector")
}

func TestPickerDeleteAllClearsSavedChats(t *testing.T) {
	m := newTestModel(t)

	// Two completed exchanges, snapshotted as saved chats.
	m.history.Append(model.NewUserTurn("what is my budget?"))
	m.history.Append(model.NewAssistantTurn("5,000 SAR."))
	require.NotEmpty(t, m.history.SavedChats())

	m.openSavedChatPicker()
	require.Equal(t, pickerSavedChats, m.pickerOpen)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'D'}})
	m = updated.(*Model)

	assert.Empty(t, m.history.SavedChats())
	assert.Zero(t, m.history.MemoryCount())
	assert.Equal(t, pickerNone, m.pickerOpen)
	require.Equal(t, 1, m.transcript.Len())
	assert.Equal(t, history.AllChatsClearedMessage, m.transcript.Entries()[0].Content)
}

func TestNewChatClearsHistoryAndTranscript(t *testing.T) {
	m := newTestModel(t)
	m.history.Append(model.NewUserTurn("hello"))
	m.transcript.AddUser("hello")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = updated.(*Model)

	assert.Zero(t, m.history.MemoryCount())
	require.Equal(t, 1, m.transcript.Len())
	assert.Equal(t, "How can I help you today?", m.transcript.Entries()[0].Content)
}
