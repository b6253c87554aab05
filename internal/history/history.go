// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history manages the live conversation history and the
// saved-chat list. The live history is a bounded FIFO of the most recent
// turns; saved chats are named snapshots kept in most-recently-used
// order. Both persist through the session store on every change.
package history

import (
	"sync"

	"github.com/farqad/farqad-tui/internal/model"
	"github.com/farqad/farqad-tui/internal/store"
)

const (
	// MaxHistoryLength bounds the live conversation history. Appending
	// beyond it drops the oldest turn.
	MaxHistoryLength = 10

	// MaxSavedChats bounds the saved-chat list.
	MaxSavedChats = 10

	// contextWindow is how many trailing turns are considered when
	// building the conversation_history sent to the backend.
	contextWindow = 6
)

// Manager owns the live history and saved chats for one session.
type Manager struct {
	mu           sync.Mutex
	store        *store.Store
	turns        []model.Turn
	activeChatID string
}

// NewManager creates a manager and loads any persisted history.
func NewManager(s *store.Store) *Manager {
	m := &Manager{store: s}

	var turns []model.Turn
	if err := s.GetJSON(store.KeyConversationHistory, &turns); err == nil {
		if len(turns) > MaxHistoryLength {
			turns = turns[len(turns)-MaxHistoryLength:]
		}
		m.turns = turns
	}
	return m
}

// Append adds a turn to the live history, dropping the oldest beyond
// MaxHistoryLength, and persists. Saved chats are refreshed on every
// user turn and on every third message overall, so an abandoned session
// is recoverable without rewriting the snapshot on each exchange.
func (m *Manager) Append(turn model.Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, turn)
	if len(m.turns) > MaxHistoryLength {
		m.turns = m.turns[len(m.turns)-MaxHistoryLength:]
	}

	m.persistLocked()

	if turn.IsUser() || len(m.turns)%3 == 0 {
		m.upsertSavedLocked()
	}
}

// Turns returns a copy of the live history.
func (m *Manager) Turns() []model.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Turn(nil), m.turns...)
}

// MemoryCount reports how many turns the assistant currently remembers.
func (m *Manager) MemoryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

// RecentWindow returns the last five turns before the most recent one,
// in wire form. This is the context window attached to outbound queries;
// the current exchange itself is excluded.
func (m *Manager) RecentWindow() []model.HistoryTurn {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.turns)
	if n < 2 {
		return []model.HistoryTurn{}
	}
	start := n - contextWindow
	if start < 0 {
		start = 0
	}
	window := m.turns[start : n-1]

	out := make([]model.HistoryTurn, 0, len(window))
	for _, t := range window {
		out = append(out, t.ToHistoryTurn())
	}
	return out
}

// Reload re-reads the persisted history after the session file changed
// on disk, e.g. when a second farqad process wrote it.
func (m *Manager) Reload() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var turns []model.Turn
	if err := m.store.GetJSON(store.KeyConversationHistory, &turns); err != nil {
		return
	}
	if len(turns) > MaxHistoryLength {
		turns = turns[len(turns)-MaxHistoryLength:]
	}
	m.turns = turns
}

// Clear empties the live history and detaches from any saved chat.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
	m.activeChatID = ""
	m.persistLocked()
}

// ActiveChatID returns the saved chat the live history belongs to, if any.
func (m *Manager) ActiveChatID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeChatID
}

// Persistence failures are deliberately swallowed here: the in-memory
// session keeps working when the disk does not, the same way the
// original client ignored storage quota errors.
func (m *Manager) persistLocked() {
	_ = m.store.SetJSON(store.KeyConversationHistory, m.turns)
}
