// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript maintains the displayed conversation: the ordered
// list of message bubbles the user actually sees. It filters what the
// backend sends before anything reaches the screen - duplicate replies,
// system separator lines, and repeated welcome banners all stop here.
package transcript

import (
	"regexp"
	"strings"

	"github.com/farqad/farqad-tui/internal/model"
	"github.com/farqad/farqad-tui/internal/util"
)

// DocumentAnalysisPrefix marks replies produced by the document-analysis
// path. Dedup treats two analyses of the same content as one message no
// matter where they sit in the transcript.
const DocumentAnalysisPrefix = "[Document Analysis]"

// Entry is one displayed message.
type Entry struct {
	Role    model.Role
	Content string
	Sources string
	Chart   *model.ChartData
}

// PostRenderHook runs synchronously after an assistant entry is
// appended. The chat UI uses it to extract chart data from the reply.
type PostRenderHook func(e *Entry)

// Transcript is the deduplicating message list.
type Transcript struct {
	entries      []Entry
	welcomeShown bool
	hook         PostRenderHook
}

// New creates an empty transcript.
func New() *Transcript {
	return &Transcript{}
}

// SetPostRenderHook installs the hook invoked after each appended
// assistant entry.
func (tr *Transcript) SetPostRenderHook(hook PostRenderHook) {
	tr.hook = hook
}

// Entries returns the displayed messages in order.
func (tr *Transcript) Entries() []Entry {
	return tr.entries
}

// Len returns the number of displayed messages.
func (tr *Transcript) Len() int {
	return len(tr.entries)
}

// Reset clears the transcript and shows a fresh assistant notice (for
// example after the active chat is deleted). The welcome-shown flag is
// not reset: the welcome banner appears once per process, full stop.
func (tr *Transcript) Reset(notice string) {
	tr.entries = nil
	if notice != "" {
		tr.entries = append(tr.entries, Entry{Role: model.RoleAssistant, Content: notice})
	}
}

// AddUser appends a user message. User messages are shown verbatim and
// never deduplicated: asking the same question twice is legitimate.
func (tr *Transcript) AddUser(content string) *Entry {
	tr.entries = append(tr.entries, Entry{Role: model.RoleUser, Content: content})
	return &tr.entries[len(tr.entries)-1]
}

// AddAssistant appends an assistant message after filtering. It returns
// the appended entry, or nil when the message was suppressed.
func (tr *Transcript) AddAssistant(content string) *Entry {
	if isWelcome(content) {
		if tr.welcomeShown {
			return nil
		}
		tr.welcomeShown = true
	}

	if isSystemSeparator(content) {
		return nil
	}

	cleaned, sources := extractSources(content)

	if tr.isDuplicate(cleaned) {
		return nil
	}

	tr.entries = append(tr.entries, Entry{
		Role:    model.RoleAssistant,
		Content: cleaned,
		Sources: sources,
	})
	entry := &tr.entries[len(tr.entries)-1]
	if tr.hook != nil {
		tr.hook(entry)
	}
	return entry
}

// isDuplicate reports whether the cleaned message repeats the previous
// entry, or repeats any earlier document-analysis entry. Comparison is
// on normalized plain text so markup or spacing differences do not
// produce visible duplicates.
func (tr *Transcript) isDuplicate(cleaned string) bool {
	norm := normalize(cleaned)
	if norm == "" {
		return true
	}

	if len(tr.entries) > 0 {
		// The analysis prefix is stripped on both sides: an answer that
		// repeats the previous entry minus the prefix is still a twin.
		last := tr.entries[len(tr.entries)-1]
		if normalizeAnalysis(last.Content) == normalizeAnalysis(cleaned) {
			return true
		}
	}

	if strings.Contains(cleaned, DocumentAnalysisPrefix) {
		stripped := normalizeAnalysis(cleaned)
		for _, e := range tr.entries {
			if strings.Contains(e.Content, DocumentAnalysisPrefix) && normalizeAnalysis(e.Content) == stripped {
				return true
			}
		}
	}
	return false
}

var sourcesRe = regexp.MustCompile(`(?s)<sources>(.*?)</sources>`)

// extractSources pulls the <sources> block out of an assistant reply so
// it can be rendered as a footnote instead of inline markup.
func extractSources(content string) (cleaned, sources string) {
	match := sourcesRe.FindStringSubmatch(content)
	if match == nil {
		return strings.TrimSpace(content), ""
	}
	cleaned = strings.TrimSpace(sourcesRe.ReplaceAllString(content, ""))
	return cleaned, strings.TrimSpace(match[1])
}

// Separator lines some backend prompts leak into their answers.
var separatorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^---.+---$`),
	regexp.MustCompile(`^====.+====$`),
	regexp.MustCompile(`(?i)^#* *Conversation History *#*$`),
	regexp.MustCompile(`(?i)^-- *End of Conversation History *--$`),
	regexp.MustCompile(`(?i)^-- *System Message *--$`),
	regexp.MustCompile(`(?i)^-- *Chat Initialized *--$`),
	regexp.MustCompile(`(?i)^-- *New Session *--$`),
}

func isSystemSeparator(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return false
	}
	for _, re := range separatorPatterns {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// Welcome banners arrive from several paths (login, mode switches,
// restored sessions); only the first one may render.
var welcomeMarkers = []string{
	"مرحبًا بك في فرقد",
	"Welcome to",
	"I am Farqad",
	"Farqad is",
}

func isWelcome(content string) bool {
	if strings.HasPrefix(content, DocumentAnalysisPrefix) {
		return false
	}
	for _, marker := range welcomeMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return util.NormalizeSpace(stripMarkdown(s))
}

func normalizeAnalysis(s string) string {
	return normalize(strings.ReplaceAll(s, DocumentAnalysisPrefix, ""))
}

var markdownMarksRe = regexp.MustCompile("[*_`#>]+")

// stripMarkdown removes formatting marks so "**Revenue**" and "Revenue"
// compare equal. It does not try to parse markdown, only to erase the
// characters renderers disagree about.
func stripMarkdown(s string) string {
	return markdownMarksRe.ReplaceAllString(s, "")
}
