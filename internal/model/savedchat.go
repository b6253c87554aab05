// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/farqad/farqad-tui/internal/util"
)

// SavedChatNameLength is the number of leading characters of the first
// user message used as a saved chat's display name.
const SavedChatNameLength = 30

// SavedChat is one entry in the chatHistories list: a snapshot of a
// conversation, named after its first user message.
type SavedChat struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Messages  []Turn    `json:"messages"`
}

// NewSavedChat snapshots the given turns into a saved chat. The name is
// the first 30 characters of the first user message plus "...", or a
// fallback when no user turn exists yet.
func NewSavedChat(turns []Turn) SavedChat {
	return SavedChat{
		ID:        uuid.NewString(),
		Name:      savedChatName(turns),
		Timestamp: time.Now(),
		Messages:  append([]Turn(nil), turns...),
	}
}

// FirstUserContent returns the content of the first user turn, or "".
// Saved-chat upsert matches entries on this when IDs differ.
func (c SavedChat) FirstUserContent() string {
	for _, t := range c.Messages {
		if t.IsUser() {
			return t.Content
		}
	}
	return ""
}

// Icon picks the sidebar icon for the chat based on its first user
// message, falling back to a rotation by list position.
func (c SavedChat) Icon(index int) string {
	first := strings.ToLower(c.FirstUserContent())
	switch {
	case strings.Contains(first, "financial") || strings.Contains(first, "money") || strings.Contains(first, "budget"):
		return "💰"
	case strings.Contains(first, "report") || strings.Contains(first, "document"):
		return "📊"
	case strings.Contains(first, "help") || strings.Contains(first, "question"):
		return "❓"
	case strings.Contains(first, "create") || strings.Contains(first, "make"):
		return "🔧"
	}
	icons := []string{"💬", "📝", "🗂️", "📈", "🔍"}
	if index < 0 {
		index = 0
	}
	return icons[index%len(icons)]
}

func savedChatName(turns []Turn) string {
	for _, t := range turns {
		if t.IsUser() && strings.TrimSpace(t.Content) != "" {
			return util.TruncateRunes(strings.TrimSpace(t.Content), SavedChatNameLength)
		}
	}
	return "New Chat"
}
