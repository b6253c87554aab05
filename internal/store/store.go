// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store implements the persistent session store backing the
// farqad client. It is a flat key/value file (~/.farqad/session.json)
// holding the auth token, active project/document context, the live
// conversation history, and the saved-chat list.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"

	"github.com/farqad/farqad-tui/internal/util"
)

// Session keys. The names are fixed: they are shared with other clients
// of the same account data, so renaming one silently orphans state.
const (
	KeyAuthToken           = "galaxy_chat_token"
	KeyChatMode            = "chatMode"
	KeyProjectID           = "chatProjectId"
	KeyContextID           = "chatContextId"
	KeyFocusedDocID        = "focusedDocumentId"
	KeyFocusedDocName      = "focusedDocumentName"
	KeyConversationHistory = "conversationHistory"
	KeyChatHistories       = "chatHistories"
	KeyUsername            = "username"
)

// ErrKeyNotFound indicates the requested session key has no value.
var ErrKeyNotFound = errors.New("session key not found")

// Store is a persistent string key/value store. All writes go to disk
// immediately and atomically; reads are served from memory.
//
// Store is safe for concurrent use. A second process writing the same
// file is observed through Watch, not through locking: last write wins,
// matching the semantics the account data always had.
type Store struct {
	mu   sync.Mutex
	path string
	data map[string]string

	// lastWriteSum fingerprints the bytes this process last wrote (or
	// read) from the file, so the watcher can tell its own atomic
	// rewrites apart from another process's.
	lastWriteSum uint64
}

// DefaultPath returns the standard session file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".farqad", "session.json"), nil
}

// Open loads the session file at path, creating an empty store when the
// file does not exist. A corrupt file is treated as empty rather than
// fatal: losing cached session state must never prevent startup.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		data: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		s.data = make(map[string]string)
	}
	s.lastWriteSum = checksum(raw)
	return s, nil
}

// Get returns the value for key, or ErrKeyNotFound.
func (s *Store) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return val, nil
}

// GetOr returns the value for key, or fallback when absent.
func (s *Store) GetOr(key, fallback string) string {
	if val, err := s.Get(key); err == nil {
		return val
	}
	return fallback
}

// Set stores a value and persists the file.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.persistLocked()
}

// Delete removes a key and persists the file. Deleting an absent key is
// a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.persistLocked()
}

// Clear removes every key and persists the empty store.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]string)
	return s.persistLocked()
}

// GetJSON unmarshals the value for key into v.
func (s *Store) GetJSON(key string, v any) error {
	raw, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("failed to decode session key %s: %w", key, err)
	}
	return nil
}

// SetJSON marshals v and stores it under key.
func (s *Store) SetJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode session key %s: %w", key, err)
	}
	return s.Set(key, string(raw))
}

// Keys returns a snapshot of all present keys.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Reload replaces the in-memory state with the file's current contents.
// Used by the watcher when another process rewrites the session file.
func (s *Store) Reload() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.data = make(map[string]string)
			s.lastWriteSum = 0
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to reload session file: %w", err)
	}

	fresh := make(map[string]string)
	if err := json.Unmarshal(raw, &fresh); err != nil {
		return fmt.Errorf("failed to decode session file: %w", err)
	}

	s.mu.Lock()
	s.data = fresh
	s.lastWriteSum = checksum(raw)
	s.mu.Unlock()
	return nil
}

// ReloadIfChanged reloads only when the file differs from what this
// process last wrote. It reports whether new data was loaded, so the
// watcher can ignore the filesystem echoes of the store's own writes.
func (s *Store) ReloadIfChanged() (bool, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to reload session file: %w", err)
	}

	s.mu.Lock()
	if checksum(raw) == s.lastWriteSum {
		s.mu.Unlock()
		return false, nil
	}
	s.mu.Unlock()

	if err := s.Reload(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) persistLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	if err := util.AtomicWriteFile(s.path, raw, 0600); err != nil {
		return fmt.Errorf("failed to persist session state: %w", err)
	}
	s.lastWriteSum = checksum(raw)
	return nil
}

func checksum(raw []byte) uint64 {
	h := fnv.New64a()
	h.Write(raw)
	return h.Sum64()
}
