// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch owns the chat session state (mode, project, focused
// document) and routes outbound queries to the right backend endpoint.
package dispatch

import (
	"errors"
	"sync"

	"github.com/farqad/farqad-tui/internal/finance"
	"github.com/farqad/farqad-tui/internal/store"
)

// Mode is the chat mode.
type Mode int

const (
	// ModeGeneral answers from the model's general knowledge.
	ModeGeneral Mode = iota
	// ModeDocument grounds answers in an indexed document.
	ModeDocument
)

func (m Mode) String() string {
	if m == ModeDocument {
		return "document"
	}
	return "general"
}

// Document identifies a focused document.
type Document struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ErrBusy is returned when a send is attempted while another request is
// in flight.
var ErrBusy = errors.New("a request is already in flight")

// State is the single mutable session-state object: everything the
// dispatcher and UI need to agree on lives here, not in globals.
type State struct {
	mu         sync.Mutex
	store      *store.Store
	mode       Mode
	projectID  string
	focusedDoc *Document

	inFlight   bool
	generation uint64
}

// Restore rebuilds session state from the store:
//
//   - a stored context ID means document mode with that context
//   - a project ID without a context ID means document mode with no
//     focused document (a document was uploaded but none focused)
//   - neither means general mode
func Restore(s *store.Store) *State {
	st := &State{store: s, projectID: s.GetOr(store.KeyProjectID, "")}

	if _, err := s.Get(store.KeyContextID); err == nil {
		st.mode = ModeDocument
		if id := s.GetOr(store.KeyFocusedDocID, ""); id != "" {
			st.focusedDoc = &Document{ID: id, Name: s.GetOr(store.KeyFocusedDocName, "")}
		}
		return st
	}

	if st.projectID != "" {
		st.mode = ModeDocument
		return st
	}

	st.mode = ModeGeneral
	return st
}

// Mode returns the current chat mode.
func (st *State) Mode() Mode {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.mode
}

// ProjectID returns the active project, or "0" when none is set: the
// backend treats project 0 as the general workspace.
func (st *State) ProjectID() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.projectID == "" {
		return "0"
	}
	return st.projectID
}

// FocusedDocument returns the focused document, or nil.
func (st *State) FocusedDocument() *Document {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.focusedDoc == nil {
		return nil
	}
	doc := *st.focusedDoc
	return &doc
}

// SwitchToGeneralMode leaves document mode and clears the persisted
// document context.
func (st *State) SwitchToGeneralMode() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.mode = ModeGeneral
	st.focusedDoc = nil
	_ = st.store.Set(store.KeyChatMode, ModeGeneral.String())
	_ = st.store.Delete(store.KeyContextID)
	_ = st.store.Delete(store.KeyFocusedDocID)
	_ = st.store.Delete(store.KeyFocusedDocName)
}

// SwitchToDocumentMode enters document mode. It returns true when no
// document is focused yet, meaning the caller should open the document
// selector.
func (st *State) SwitchToDocumentMode() (needsSelector bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.mode = ModeDocument
	_ = st.store.Set(store.KeyChatMode, ModeDocument.String())
	return st.focusedDoc == nil
}

// FocusOnDocument focuses a document and persists the context. The
// bundled sample report pins its own project so demo queries always hit
// the pre-indexed data.
func (st *State) FocusOnDocument(id, name string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.mode = ModeDocument
	st.focusedDoc = &Document{ID: id, Name: name}

	if id == finance.SampleReportDocumentID {
		st.projectID = finance.SampleReportProjectID
	}

	_ = st.store.Set(store.KeyChatMode, ModeDocument.String())
	_ = st.store.Set(store.KeyContextID, id)
	_ = st.store.Set(store.KeyFocusedDocID, id)
	_ = st.store.Set(store.KeyFocusedDocName, name)
	if st.projectID != "" {
		_ = st.store.Set(store.KeyProjectID, st.projectID)
	}
}

// ClearDocumentFocus drops the focused document but stays in document
// mode.
func (st *State) ClearDocumentFocus() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.focusedDoc = nil
	_ = st.store.Delete(store.KeyContextID)
	_ = st.store.Delete(store.KeyFocusedDocID)
	_ = st.store.Delete(store.KeyFocusedDocName)
}

// SetProject sets and persists the active project.
func (st *State) SetProject(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.projectID = id
	_ = st.store.Set(store.KeyProjectID, id)
}

// =============================================================================
// SINGLE-FLIGHT GUARD
// =============================================================================

// BeginSend marks a request as in flight and returns its generation.
// A second send while one is pending fails with ErrBusy, and responses
// from an older generation are identifiable as stale.
func (st *State) BeginSend() (uint64, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.inFlight {
		return 0, ErrBusy
	}
	st.inFlight = true
	st.generation++
	return st.generation, nil
}

// FinishSend clears the in-flight flag for the given generation. Stale
// generations are ignored.
func (st *State) FinishSend(gen uint64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if gen == st.generation {
		st.inFlight = false
	}
}

// IsCurrent reports whether a response generation is still the live one.
func (st *State) IsCurrent(gen uint64) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return gen == st.generation
}

// Abort invalidates any in-flight generation, so its response will be
// discarded when it lands.
func (st *State) Abort() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.generation++
	st.inFlight = false
}
