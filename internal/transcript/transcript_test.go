// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelcomeShownOnce(t *testing.T) {
	tr := New()

	first := tr.AddAssistant("Welcome to Farqad, your financial assistant.")
	require.NotNil(t, first)

	second := tr.AddAssistant("مرحبًا بك في فرقد، المساعد المالي الذكي.")
	assert.Nil(t, second, "second welcome banner must be suppressed")
	assert.Equal(t, 1, tr.Len())

	// Reset does not re-arm the welcome banner.
	tr.Reset("Chat deleted. How can I help you today?")
	assert.Nil(t, tr.AddAssistant("Welcome to Farqad!"))
}

func TestSystemSeparatorsSuppressed(t *testing.T) {
	tr := New()

	separators := []string{
		"--- Conversation Start ---",
		"==== Session ====",
		"# Conversation History",
		"-- End of Conversation History --",
		"-- System Message --",
		"-- Chat Initialized --",
		"-- new session --",
	}
	for _, sep := range separators {
		assert.Nil(t, tr.AddAssistant(sep), sep)
	}
	assert.Equal(t, 0, tr.Len())

	// Ordinary text with dashes inside is not a separator.
	assert.NotNil(t, tr.AddAssistant("Revenue grew -- sharply -- this quarter."))
}

func TestSourcesExtracted(t *testing.T) {
	tr := New()

	entry := tr.AddAssistant("Revenue is 19,209,552 SAR.<sources>annual_report.pdf p.12</sources>")
	require.NotNil(t, entry)
	assert.Equal(t, "Revenue is 19,209,552 SAR.", entry.Content)
	assert.Equal(t, "annual_report.pdf p.12", entry.Sources)
}

func TestConsecutiveDuplicateSuppressed(t *testing.T) {
	tr := New()

	require.NotNil(t, tr.AddAssistant("The total is 500 SAR."))
	assert.Nil(t, tr.AddAssistant("The total is 500 SAR."))
	// Markup and spacing differences do not defeat dedup.
	assert.Nil(t, tr.AddAssistant("The  total is **500 SAR.**"))
	assert.Equal(t, 1, tr.Len())

	// A different message in between makes the repeat visible again.
	require.NotNil(t, tr.AddAssistant("Anything else?"))
	require.NotNil(t, tr.AddAssistant("The total is 500 SAR."))
}

func TestDuplicateSuppressedAcrossPrefixDifference(t *testing.T) {
	tr := New()

	// The same answer with and without the analysis prefix is one
	// message, whichever order it arrives in.
	require.NotNil(t, tr.AddAssistant("[Document Analysis] Revenue grew 5%."))
	assert.Nil(t, tr.AddAssistant("Revenue grew 5%."))
	assert.Equal(t, 1, tr.Len())

	require.NotNil(t, tr.AddAssistant("Net income fell."))
	assert.Nil(t, tr.AddAssistant("[Document Analysis] Net income fell."))
	assert.Equal(t, 2, tr.Len())
}

func TestDocumentAnalysisDedupAcrossTranscript(t *testing.T) {
	tr := New()

	require.NotNil(t, tr.AddAssistant("[Document Analysis] Revenue improved 1.6%."))
	require.NotNil(t, tr.AddAssistant("Anything else?"))

	// Same analysis later in the conversation is suppressed even though
	// it is not the immediately preceding message.
	assert.Nil(t, tr.AddAssistant("[Document Analysis] Revenue improved 1.6%."))
	assert.Equal(t, 2, tr.Len())
}

func TestUserMessagesNeverDeduplicated(t *testing.T) {
	tr := New()
	tr.AddUser("what is the revenue?")
	tr.AddUser("what is the revenue?")
	assert.Equal(t, 2, tr.Len())
}

func TestPostRenderHookRunsSynchronously(t *testing.T) {
	tr := New()
	var seen []string
	tr.SetPostRenderHook(func(e *Entry) {
		seen = append(seen, e.Content)
	})

	tr.AddAssistant("Revenue is 500 SAR.")
	tr.AddAssistant("Revenue is 500 SAR.") // suppressed: hook must not fire
	tr.AddUser("thanks")                   // user entries do not fire the hook

	require.Len(t, seen, 1)
	assert.Equal(t, "Revenue is 500 SAR.", seen[0])
}

func TestResetShowsNotice(t *testing.T) {
	tr := New()
	tr.AddUser("hello")
	tr.Reset("All chat history has been cleared. How can I help you today?")

	require.Equal(t, 1, tr.Len())
	assert.Equal(t, "All chat history has been cleared. How can I help you today?", tr.Entries()[0].Content)
}
