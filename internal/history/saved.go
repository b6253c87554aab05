// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"github.com/farqad/farqad-tui/internal/model"
	"github.com/farqad/farqad-tui/internal/store"
)

// Messages shown in the transcript after destructive saved-chat actions.
const (
	ChatDeletedMessage     = "Chat deleted. How can I help you today?"
	AllChatsClearedMessage = "All chat history has been cleared. How can I help you today?"
)

// SavedChats returns the persisted saved-chat list, most recent first.
func (m *Manager) SavedChats() []model.SavedChat {
	var chats []model.SavedChat
	if err := m.store.GetJSON(store.KeyChatHistories, &chats); err != nil {
		return nil
	}
	return chats
}

// LoadSavedChat replaces the live history with a saved chat's snapshot.
// Returns false when no chat with that ID exists.
func (m *Manager) LoadSavedChat(id string) bool {
	for _, chat := range m.SavedChats() {
		if chat.ID != id {
			continue
		}
		m.mu.Lock()
		m.turns = append([]model.Turn(nil), chat.Messages...)
		if len(m.turns) > MaxHistoryLength {
			m.turns = m.turns[len(m.turns)-MaxHistoryLength:]
		}
		m.activeChatID = chat.ID
		m.persistLocked()
		m.mu.Unlock()
		return true
	}
	return false
}

// DeleteSavedChat removes one saved chat. When it is the chat the live
// history belongs to, the live history is cleared too and the caller
// should show ChatDeletedMessage.
func (m *Manager) DeleteSavedChat(id string) (wasActive bool) {
	chats := m.SavedChats()
	kept := chats[:0]
	for _, chat := range chats {
		if chat.ID != id {
			kept = append(kept, chat)
		}
	}
	m.persistSaved(kept)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeChatID == id {
		m.turns = nil
		m.activeChatID = ""
		m.persistLocked()
		return true
	}
	return false
}

// DeleteAllSavedChats wipes the saved-chat list and the live history.
// The caller should show AllChatsClearedMessage.
func (m *Manager) DeleteAllSavedChats() {
	m.persistSaved(nil)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
	m.activeChatID = ""
	m.persistLocked()
}

// upsertSavedLocked refreshes the saved-chat entry for the live history:
// matched by ID when the history was loaded from a saved chat, otherwise
// by identical first-user-message content. The refreshed entry moves to
// the front and the list is truncated to MaxSavedChats from the back.
func (m *Manager) upsertSavedLocked() {
	if len(m.turns) == 0 {
		return
	}

	snapshot := model.NewSavedChat(m.turns)
	chats := m.SavedChats()

	matched := -1
	for i, chat := range chats {
		if m.activeChatID != "" && chat.ID == m.activeChatID {
			matched = i
			break
		}
		if first := chat.FirstUserContent(); first != "" && first == snapshot.FirstUserContent() {
			matched = i
			break
		}
	}

	if matched >= 0 {
		// Keep the existing identity, refresh content and recency.
		snapshot.ID = chats[matched].ID
		chats = append(chats[:matched], chats[matched+1:]...)
	}
	m.activeChatID = snapshot.ID

	chats = append([]model.SavedChat{snapshot}, chats...)
	if len(chats) > MaxSavedChats {
		chats = chats[:MaxSavedChats]
	}
	m.persistSaved(chats)
}

func (m *Manager) persistSaved(chats []model.SavedChat) {
	_ = m.store.SetJSON(store.KeyChatHistories, chats)
}
