// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farqad/farqad-tui/internal/api"
	"github.com/farqad/farqad-tui/internal/history"
	"github.com/farqad/farqad-tui/internal/model"
	"github.com/farqad/farqad-tui/internal/store"
)

func newTestState(t *testing.T) (*State, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	return Restore(s), s
}

func TestIsDocumentRelevant(t *testing.T) {
	relevant := []string{
		"What does the document say?",
		"summarize this FILE please",
		"is revenue improving?",
		"according to the report, what changed?",
		"is it getting better?",
		"show me the growth trend",
	}
	for _, q := range relevant {
		assert.True(t, IsDocumentRelevant(q), q)
	}

	irrelevant := []string{
		"hello!",
		"what's the weather like?",
		"tell me a joke",
	}
	for _, q := range irrelevant {
		assert.False(t, IsDocumentRelevant(q), q)
	}
}

func TestStripConfirmationRequests(t *testing.T) {
	in := "Do you want me to extract this information from this specific file? The revenue is 100."
	out := StripConfirmationRequests(in)
	assert.Equal(t, "The revenue is 100.", out)

	// Arabic boilerplate is removed and double periods collapse.
	in = "هل ترغب في أن أستخرج المعلومات من هذا الملف؟.. الإيرادات ارتفعت."
	out = StripConfirmationRequests(in)
	assert.NotContains(t, out, "هل ترغب")
	assert.NotContains(t, out, "..")
}

func TestStripConfirmationAddsDirectPrefix(t *testing.T) {
	// Leftover confirmation language converts to a direct answer.
	out := StripConfirmationRequests("I would need your permission to proceed with the analysis")
	assert.True(t, len(out) > 0)
	assert.Contains(t, out, "Based on the document, here's what I found: ")
}

func TestModeReconstruction(t *testing.T) {
	t.Run("context id means document mode with focused doc", func(t *testing.T) {
		s, err := store.Open(filepath.Join(t.TempDir(), "session.json"))
		require.NoError(t, err)
		require.NoError(t, s.Set(store.KeyProjectID, "p1"))
		require.NoError(t, s.Set(store.KeyContextID, "doc-9"))
		require.NoError(t, s.Set(store.KeyFocusedDocID, "doc-9"))
		require.NoError(t, s.Set(store.KeyFocusedDocName, "Q1 Report"))

		st := Restore(s)
		assert.Equal(t, ModeDocument, st.Mode())
		require.NotNil(t, st.FocusedDocument())
		assert.Equal(t, "Q1 Report", st.FocusedDocument().Name)
	})

	t.Run("project without context means document mode without doc", func(t *testing.T) {
		s, err := store.Open(filepath.Join(t.TempDir(), "session.json"))
		require.NoError(t, err)
		require.NoError(t, s.Set(store.KeyProjectID, "p1"))

		st := Restore(s)
		assert.Equal(t, ModeDocument, st.Mode())
		assert.Nil(t, st.FocusedDocument())
	})

	t.Run("empty store means general mode", func(t *testing.T) {
		st, _ := newTestState(t)
		assert.Equal(t, ModeGeneral, st.Mode())
		assert.Equal(t, "0", st.ProjectID())
	})
}

func TestFocusOnSampleReportPinsProject(t *testing.T) {
	st, s := newTestState(t)

	st.FocusOnDocument("stc-doc-12345", "STC Financial Report")

	assert.Equal(t, "stc-project-0", st.ProjectID())
	assert.Equal(t, "stc-doc-12345", s.GetOr(store.KeyContextID, ""))
	assert.Equal(t, "stc-doc-12345", s.GetOr(store.KeyFocusedDocID, ""))
	assert.Equal(t, "STC Financial Report", s.GetOr(store.KeyFocusedDocName, ""))
	assert.Equal(t, "stc-project-0", s.GetOr(store.KeyProjectID, ""))
	assert.Equal(t, "document", s.GetOr(store.KeyChatMode, ""))
}

func TestSwitchToGeneralModeClearsContext(t *testing.T) {
	st, s := newTestState(t)
	st.FocusOnDocument("doc-1", "Report")

	st.SwitchToGeneralMode()

	assert.Equal(t, ModeGeneral, st.Mode())
	assert.Nil(t, st.FocusedDocument())
	_, err := s.Get(store.KeyContextID)
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
	_, err = s.Get(store.KeyFocusedDocID)
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
	_, err = s.Get(store.KeyFocusedDocName)
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
	assert.Equal(t, "general", s.GetOr(store.KeyChatMode, ""))
}

func TestSwitchToDocumentModeReportsMissingDoc(t *testing.T) {
	st, _ := newTestState(t)
	assert.True(t, st.SwitchToDocumentMode())

	st.FocusOnDocument("doc-1", "Report")
	assert.False(t, st.SwitchToDocumentMode())

	st.ClearDocumentFocus()
	assert.Equal(t, ModeDocument, st.Mode())
	assert.True(t, st.SwitchToDocumentMode())
}

func TestSingleFlightGuard(t *testing.T) {
	st, _ := newTestState(t)

	gen, err := st.BeginSend()
	require.NoError(t, err)

	_, err = st.BeginSend()
	assert.ErrorIs(t, err, ErrBusy)

	st.FinishSend(gen)
	gen2, err := st.BeginSend()
	require.NoError(t, err)
	assert.Greater(t, gen2, gen)
	assert.False(t, st.IsCurrent(gen))
	assert.True(t, st.IsCurrent(gen2))

	// Abort invalidates the in-flight generation.
	st.Abort()
	assert.False(t, st.IsCurrent(gen2))
	_, err = st.BeginSend()
	require.NoError(t, err)
}

// newDispatchFixture stands up a fake backend plus a dispatcher wired to
// a fresh state and history.
func newDispatchFixture(t *testing.T, handler http.HandlerFunc) (*Dispatcher, *State, *history.Manager) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := store.Open(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	st := Restore(s)
	hist := history.NewManager(s)
	return NewDispatcher(api.NewClient(srv.URL), st, hist), st, hist
}

func TestSendGeneralPath(t *testing.T) {
	var got api.GeneralAnswerRequest
	d, _, hist := newDispatchFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/nlp/general/answer", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(api.AnswerResponse{Answer: "Hello! I can help with budgeting."})
	})

	res, err := d.Send(context.Background(), "hello!")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, res.DocumentPath)
	assert.Equal(t, "Hello! I can help with budgeting.", res.Answer)
	assert.Equal(t, "0", got.ProjectID)
	assert.Empty(t, got.ConversationHistory)

	turns := hist.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, model.RoleUser, turns[0].Role)
	assert.Equal(t, model.RoleAssistant, turns[1].Role)
}

func TestSendDocumentPath(t *testing.T) {
	var got api.DocumentAnswerRequest
	var path string
	d, st, _ := newDispatchFixture(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(api.AnswerResponse{Answer: "Revenue increased in the period."})
	})

	st.FocusOnDocument("stc-doc-12345", "STC Financial Report")

	res, err := d.Send(context.Background(), "what does the document say about revenue?")
	require.NoError(t, err)
	assert.True(t, res.DocumentPath)
	assert.Equal(t, "/api/v1/nlp/index/answer/stc-project-0", path)

	assert.Equal(t, "stc-doc-12345", got.FileID)
	assert.Equal(t, 5, got.Limit)
	assert.True(t, got.AnalysisMode)
	assert.True(t, got.DirectAnswer)
	assert.Contains(t, got.Text, "without asking for confirmation or permission: what does the document say about revenue?")

	// Prefix added when the backend omits it.
	assert.Contains(t, res.Answer, "[Document Analysis]")
}

func TestSendDocumentSalvagesRefusalFromContext(t *testing.T) {
	d, st, _ := newDispatchFixture(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.AnswerResponse{
			Answer:  "The provided excerpts do not contain sufficient information to answer this question.",
			Context: "Revenue was 1,000 SAR in 2023 and 1,200 SAR in 2024.",
		})
	})
	st.FocusOnDocument("doc-1", "Annual Report")

	res, err := d.Send(context.Background(), "what does the document say about revenue?")
	require.NoError(t, err)

	// The refusal stays, but the figures in the retrieved context get
	// analyzed and appended.
	assert.Contains(t, res.Answer, "do not contain sufficient information")
	assert.Contains(t, res.Answer, "However, based on numeric data detected in the document:")
	assert.Contains(t, res.Answer, "improvement")
}

func TestSendDocumentRefusalWithoutFiguresGetsObservations(t *testing.T) {
	d, st, _ := newDispatchFixture(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.AnswerResponse{
			Answer: "I cannot provide an assessment from the available excerpts.",
		})
	})
	st.FocusOnDocument("doc-1", "Annual Report")

	res, err := d.Send(context.Background(), "is revenue getting better?")
	require.NoError(t, err)

	assert.Contains(t, res.Answer, "However, based on the limited information available, I can share these observations:")
	assert.Contains(t, res.Answer, "- The document does show revenue figures for different time periods")
	assert.Contains(t, res.Answer, "comparing the available numbers might show some trends")
	assert.Contains(t, res.Answer, "additional financial statements, annual reports, or industry comparisons")
}

func TestSendGeneralWithDocumentLoadedAddsNote(t *testing.T) {
	var got api.GeneralAnswerRequest
	d, st, _ := newDispatchFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/nlp/general/answer", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(api.AnswerResponse{Answer: "Sure."})
	})

	st.FocusOnDocument("doc-1", "Annual Report")

	// No document keyword: general path despite the focused document.
	res, err := d.Send(context.Background(), "tell me a joke")
	require.NoError(t, err)
	assert.False(t, res.DocumentPath)
	assert.Contains(t, got.Text, "You have a document loaded (Annual Report)")
}

func TestSendRecordsUserTurnOnFailure(t *testing.T) {
	d, _, hist := newDispatchFixture(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"boom"}`, http.StatusBadRequest)
	})

	_, err := d.Send(context.Background(), "hello")
	require.Error(t, err)

	turns := hist.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, model.RoleUser, turns[0].Role)

	assert.Contains(t, ErrorMessage(err), "Error: ")
	assert.Contains(t, ErrorMessage(err), ". Please try again.")
}

func TestSendUsesRecentWindow(t *testing.T) {
	var got api.GeneralAnswerRequest
	var mu sync.Mutex
	d, _, hist := newDispatchFixture(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		json.NewDecoder(r.Body).Decode(&got)
		mu.Unlock()
		json.NewEncoder(w).Encode(api.AnswerResponse{Answer: "ok"})
	})

	// Seed four exchanges (8 turns).
	for i := 0; i < 4; i++ {
		_, err := d.Send(context.Background(), "question")
		require.NoError(t, err)
	}
	require.Len(t, hist.Turns(), 8)

	_, err := d.Send(context.Background(), "fifth question")
	require.NoError(t, err)

	// Window is the last five turns before the newest pre-send turn.
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got.ConversationHistory, 5)
	assert.Equal(t, "question", got.ConversationHistory[4].Content)
	assert.Equal(t, "ok", got.ConversationHistory[3].Content)
}

func TestSendEmptyQueryIsNoOp(t *testing.T) {
	d, _, hist := newDispatchFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be called")
	})

	res, err := d.Send(context.Background(), "   ")
	assert.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, hist.Turns())
}
