// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farqad/farqad-tui/internal/model"
	"github.com/farqad/farqad-tui/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	return NewManager(s), s
}

func TestHistoryBoundedFIFO(t *testing.T) {
	m, _ := newTestManager(t)

	for i := 0; i < 15; i++ {
		m.Append(model.NewUserTurn(fmt.Sprintf("message %d", i)))
	}

	turns := m.Turns()
	require.Len(t, turns, MaxHistoryLength)
	// Oldest five dropped.
	assert.Equal(t, "message 5", turns[0].Content)
	assert.Equal(t, "message 14", turns[9].Content)
	assert.Equal(t, MaxHistoryLength, m.MemoryCount())
}

func TestHistoryPersistsEveryAppend(t *testing.T) {
	m, s := newTestManager(t)
	m.Append(model.NewUserTurn("what is my balance?"))
	m.Append(model.NewAssistantTurn("Your balance is 1,200 SAR."))

	// A fresh manager over the same store sees the same turns.
	m2 := NewManager(s)
	turns := m2.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, model.RoleUser, turns[0].Role)
	assert.Equal(t, "Your balance is 1,200 SAR.", turns[1].Content)
}

func TestRecentWindowExcludesLatestTurn(t *testing.T) {
	m, _ := newTestManager(t)

	assert.Empty(t, m.RecentWindow())

	m.Append(model.NewUserTurn("only one"))
	assert.Empty(t, m.RecentWindow())

	for i := 0; i < 7; i++ {
		m.Append(model.NewAssistantTurn(fmt.Sprintf("reply %d", i)))
	}
	// 8 turns total: window is turns[2:7], five entries, newest excluded.
	window := m.RecentWindow()
	require.Len(t, window, 5)
	assert.Equal(t, "reply 0", window[0].Content)
	assert.Equal(t, "reply 4", window[4].Content)
}

func TestSavedChatUpsertMatchesFirstMessage(t *testing.T) {
	m, s := newTestManager(t)

	m.Append(model.NewUserTurn("show me the revenue trend"))
	m.Append(model.NewAssistantTurn("Revenue grew 1.6% year over year."))

	chats := m.SavedChats()
	require.Len(t, chats, 1)
	firstID := chats[0].ID

	// A second manager with the same first user message updates the same
	// entry instead of creating a duplicate.
	m2 := NewManager(s)
	m2.Clear()
	m2.Append(model.NewUserTurn("show me the revenue trend"))
	m2.Append(model.NewAssistantTurn("Updated answer."))
	m2.Append(model.NewUserTurn("and the profit?"))

	chats = m2.SavedChats()
	require.Len(t, chats, 1)
	assert.Equal(t, firstID, chats[0].ID)
	assert.Len(t, chats[0].Messages, 3)
}

func TestSavedChatListBoundedAndMRU(t *testing.T) {
	m, _ := newTestManager(t)

	for i := 0; i < 12; i++ {
		m.Clear()
		m.Append(model.NewUserTurn(fmt.Sprintf("topic %d question", i)))
	}

	chats := m.SavedChats()
	require.Len(t, chats, MaxSavedChats)
	// Most recent first, oldest two truncated.
	assert.Equal(t, "topic 11 question", chats[0].Name)
	assert.Equal(t, "topic 2 question", chats[9].Name)
}

func TestDeleteSavedChat(t *testing.T) {
	m, _ := newTestManager(t)

	m.Append(model.NewUserTurn("first chat"))
	activeID := m.SavedChats()[0].ID

	wasActive := m.DeleteSavedChat(activeID)
	assert.True(t, wasActive)
	assert.Empty(t, m.Turns())
	assert.Empty(t, m.SavedChats())
}

func TestDeleteInactiveSavedChatKeepsLiveHistory(t *testing.T) {
	m, _ := newTestManager(t)

	m.Append(model.NewUserTurn("old topic"))
	oldID := m.SavedChats()[0].ID

	m.Clear()
	m.Append(model.NewUserTurn("new topic"))

	wasActive := m.DeleteSavedChat(oldID)
	assert.False(t, wasActive)
	assert.Len(t, m.Turns(), 1)
	require.Len(t, m.SavedChats(), 1)
	assert.Equal(t, "new topic", m.SavedChats()[0].Name)
}

func TestDeleteAllSavedChats(t *testing.T) {
	m, _ := newTestManager(t)
	m.Append(model.NewUserTurn("a"))
	m.Clear()
	m.Append(model.NewUserTurn("b"))

	m.DeleteAllSavedChats()
	assert.Empty(t, m.SavedChats())
	assert.Empty(t, m.Turns())
}

func TestLoadSavedChat(t *testing.T) {
	m, _ := newTestManager(t)

	m.Append(model.NewUserTurn("saved question"))
	m.Append(model.NewAssistantTurn("saved answer"))
	id := m.SavedChats()[0].ID

	m.Clear()
	m.Append(model.NewUserTurn("unrelated"))

	require.True(t, m.LoadSavedChat(id))
	turns := m.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, "saved question", turns[0].Content)
	assert.Equal(t, id, m.ActiveChatID())

	assert.False(t, m.LoadSavedChat("missing-id"))
}
