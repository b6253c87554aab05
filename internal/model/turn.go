// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the core data types shared across the farqad
// client: conversation turns, saved chats, and extracted chart data.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in the live conversation history. It is the
// unit persisted under the conversationHistory session key and the unit
// sent to the backend as conversation context.
type Turn struct {
	ID        string    `json:"id,omitempty"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// turnJSON mirrors Turn on the wire. Older clients persisted an isUser
// boolean instead of a role string; both forms must load.
type turnJSON struct {
	ID        string `json:"id,omitempty"`
	Role      Role   `json:"role,omitempty"`
	IsUser    *bool  `json:"isUser,omitempty"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// UnmarshalJSON back-fills Role from the legacy isUser flag and defaults
// a missing timestamp to now.
func (t *Turn) UnmarshalJSON(data []byte) error {
	var raw turnJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.ID = raw.ID
	t.Content = raw.Content

	t.Role = raw.Role
	if t.Role == "" {
		if raw.IsUser != nil && *raw.IsUser {
			t.Role = RoleUser
		} else {
			t.Role = RoleAssistant
		}
	}

	t.Timestamp = time.Now()
	if raw.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, raw.Timestamp); err == nil {
			t.Timestamp = ts
		}
	}
	return nil
}

// MarshalJSON writes the modern role-based form.
func (t Turn) MarshalJSON() ([]byte, error) {
	return json.Marshal(turnJSON{
		ID:        t.ID,
		Role:      t.Role,
		Content:   t.Content,
		Timestamp: t.Timestamp.Format(time.RFC3339),
	})
}

// NewUserTurn creates a user turn with a generated ID.
func NewUserTurn(content string) Turn {
	return Turn{
		ID:        generateTurnID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantTurn creates an assistant turn with a generated ID.
func NewAssistantTurn(content string) Turn {
	return Turn{
		ID:        generateTurnID(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// IsUser reports whether the turn came from the user.
func (t Turn) IsUser() bool {
	return t.Role == RoleUser
}

// generateTurnID creates a unique turn ID ("turn_" + 16 hex chars).
func generateTurnID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "turn_" + hex.EncodeToString([]byte(time.Now().Format("150405.000")))
	}
	return "turn_" + hex.EncodeToString(b)
}

// HistoryTurn is the reduced {role, content} shape sent to the NLP
// endpoints as conversation_history.
type HistoryTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToHistoryTurn strips a Turn down to its wire form.
func (t Turn) ToHistoryTurn() HistoryTurn {
	return HistoryTurn{Role: t.Role, Content: t.Content}
}
