// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/farqad/farqad-tui/internal/api"
	"github.com/farqad/farqad-tui/internal/finance"
	"github.com/farqad/farqad-tui/internal/history"
	"github.com/farqad/farqad-tui/internal/model"
	"github.com/farqad/farqad-tui/internal/transcript"
)

// Fallback answers when the backend returns an empty payload.
const (
	noDocumentAnswer = "Sorry, I couldn't generate a document analysis."
	noGeneralAnswer  = "Sorry, I couldn't generate a response."
)

// documentAnswerLimit is how many indexed chunks the backend may use
// per document answer.
const documentAnswerLimit = 5

// Recorder receives every completed turn for long-term storage, beyond
// the bounded live history. The session archive implements it.
type Recorder interface {
	RecordTurn(sessionID, name string, turn model.Turn) error
}

// Dispatcher sends user queries to the backend and post-processes the
// answers.
type Dispatcher struct {
	client   *api.Client
	state    *State
	history  *history.Manager
	recorder Recorder
}

// NewDispatcher wires a dispatcher to its backend client, session state,
// and history manager.
func NewDispatcher(client *api.Client, state *State, hist *history.Manager) *Dispatcher {
	return &Dispatcher{client: client, state: state, history: hist}
}

// SetRecorder attaches a turn recorder. A nil recorder disables
// archiving.
func (d *Dispatcher) SetRecorder(r Recorder) {
	d.recorder = r
}

// Result is a completed exchange.
type Result struct {
	Answer       string
	DocumentPath bool
	Generation   uint64
}

// Send routes one user query. The reply and the user turn are recorded
// in the history; on backend failure the user turn is still recorded and
// the error is returned for the UI to surface as
// "Error: <message>. Please try again.".
//
// Send refuses to overlap with itself: a second call while a request is
// in flight fails with ErrBusy.
func (d *Dispatcher) Send(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	gen, err := d.state.BeginSend()
	if err != nil {
		return nil, err
	}
	defer d.state.FinishSend(gen)

	// Context window is built before the new turn is recorded: it holds
	// prior exchanges only.
	window := d.history.RecentWindow()

	doc := d.state.FocusedDocument()
	useDocumentPath := doc != nil && IsDocumentRelevant(query)

	var answer string
	var sendErr error
	if useDocumentPath {
		answer, sendErr = d.sendDocument(ctx, query, doc, window)
	} else {
		answer, sendErr = d.sendGeneral(ctx, query, doc, window)
	}

	userTurn := model.NewUserTurn(query)
	d.history.Append(userTurn)
	d.record(userTurn)
	if sendErr != nil {
		return nil, sendErr
	}
	assistantTurn := model.NewAssistantTurn(answer)
	d.history.Append(assistantTurn)
	d.record(assistantTurn)

	return &Result{Answer: answer, DocumentPath: useDocumentPath, Generation: gen}, nil
}

// record archives a turn under the active saved chat. Archive failures
// never break the exchange.
func (d *Dispatcher) record(turn model.Turn) {
	if d.recorder == nil {
		return
	}
	sessionID := d.history.ActiveChatID()
	if sessionID == "" {
		sessionID = "live"
	}
	name := model.NewSavedChat(d.history.Turns()).Name
	_ = d.recorder.RecordTurn(sessionID, name, turn)
}

// sendDocument asks the indexed-document endpoint and cleans up the
// answer: confirmation boilerplate is stripped, improvement questions
// get a trend-grounded rewrite, and the document-analysis prefix is
// guaranteed.
func (d *Dispatcher) sendDocument(ctx context.Context, query string, doc *Document, window []model.HistoryTurn) (string, error) {
	prompt := fmt.Sprintf("Please analyze and answer the following query based on the document content without asking for confirmation or permission: %s. "+
		"Be direct and confident in your answer, providing as much relevant information as possible from the document. "+
		"Don't ask if the user wants information extracted - just provide the information.", query)

	resp, err := d.client.DocumentAnswer(ctx, d.state.ProjectID(), api.DocumentAnswerRequest{
		Text:                prompt,
		Limit:               documentAnswerLimit,
		FileID:              doc.ID,
		ConversationHistory: window,
		AnalysisMode:        true,
		DirectAnswer:        true,
	})
	if err != nil {
		return "", err
	}

	answer := resp.Answer
	if answer == "" {
		answer = noDocumentAnswer
	}

	answer = StripConfirmationRequests(answer)

	if enhanced := finance.EnhanceDocumentAnswer(query, answer); enhanced != "" {
		answer = enhanced
	} else if hasInsufficientInfo(answer) {
		answer += insufficientInfoSupplement(query, answer, resp.Context)
	}

	if !strings.Contains(answer, transcript.DocumentAnalysisPrefix) {
		answer = transcript.DocumentAnalysisPrefix + " " + answer
	}
	return answer, nil
}

// Phrases the backend uses when it declines to answer from the indexed
// chunks.
var insufficientInfoMarkers = []string{
	"do not contain sufficient information",
	"cannot provide an assessment",
	"cannot determine whether",
}

func hasInsufficientInfo(answer string) bool {
	for _, marker := range insufficientInfoMarkers {
		if strings.Contains(answer, marker) {
			return true
		}
	}
	return false
}

// insufficientInfoSupplement salvages a refusal: the retrieved context
// often holds figures the model declined to reason about, so a trend
// analysis over it can still give the user something concrete. Without
// figures the supplement falls back to generic observations.
func insufficientInfoSupplement(query, answer, retrievedContext string) string {
	source := retrievedContext
	if source == "" {
		source = answer
	}

	analysis := finance.AnalyzeTrends(source)
	if analysis.HasFinancialData {
		return "\n\nHowever, based on numeric data detected in the document:\n\n" + analysis.Summary
	}

	var b strings.Builder
	b.WriteString("\n\nHowever, based on the limited information available, I can share these observations:\n")
	if strings.Contains(answer, "revenue") || strings.Contains(query, "revenue") {
		b.WriteString("- The document does show revenue figures for different time periods, which could indicate financial activity.\n")
	}
	q := strings.ToLower(query)
	if strings.Contains(q, "improve") || strings.Contains(q, "better") || strings.Contains(q, "growth") {
		b.WriteString("- While I cannot make a definitive assessment, comparing the available numbers might show some trends. If you need a deeper analysis, you may need additional financial documents or reports with more comprehensive data.\n")
	}
	b.WriteString("\nFor a more complete analysis, I would recommend obtaining additional financial statements, annual reports, or industry comparisons.")
	return b.String()
}

// sendGeneral asks the general endpoint. When a document is focused but
// the question is not about it, the query carries a note naming the
// document so the model can redirect the user.
func (d *Dispatcher) sendGeneral(ctx context.Context, query string, doc *Document, window []model.HistoryTurn) (string, error) {
	text := query
	if doc != nil {
		name := doc.Name
		if name == "" {
			name = "document"
		}
		text += fmt.Sprintf("\nNote: You have a document loaded (%s). If your question is about this document, please mention it specifically.", name)
	}

	resp, err := d.client.GeneralAnswer(ctx, api.GeneralAnswerRequest{
		Text:                text,
		ConversationHistory: window,
		ProjectID:           d.state.ProjectID(),
	})
	if err != nil {
		return "", err
	}

	if resp.Answer == "" {
		return noGeneralAnswer, nil
	}
	return resp.Answer, nil
}

// ErrorMessage formats a send failure the way the transcript shows it.
func ErrorMessage(err error) string {
	return fmt.Sprintf("Error: %s. Please try again.", err.Error())
}

// =============================================================================
// CONFIRMATION STRIPPING
// =============================================================================

// Boilerplate the document pipeline emits when it wants permission to
// extract data. Users already asked; the phrases are removed outright.
var confirmationPhrases = []string{
	"حتاج منك أن تؤكد لي أنك تريدني أن أستخرج هذه المعلومات من هذا الملف بالتحديد",
	"هل ترغب في أن أستخرج المعلومات من هذا الملف؟",
	"هل تريد مني استخراج معلومات من هذا المستند؟",
	"Would you like me to extract information from this document?",
	"Do you want me to extract this information from this specific file?",
	"I need you to confirm that you want me to extract this information from this file specifically.",
}

// Confirmation language that survives phrase removal, in either
// language.
var confirmationMarkers = []string{"confirm", "permission", "تأكيد", "تؤكد"}

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// StripConfirmationRequests removes confirmation boilerplate from a
// document answer, tidies the leftover punctuation, and converts an
// answer that is still asking for permission into a direct one.
func StripConfirmationRequests(answer string) string {
	for _, phrase := range confirmationPhrases {
		answer = strings.ReplaceAll(answer, phrase, "")
	}

	answer = strings.TrimSpace(answer)
	answer = strings.ReplaceAll(answer, "..", ".")
	answer = multiSpaceRe.ReplaceAllString(answer, " ")

	lower := strings.ToLower(answer)
	for _, marker := range confirmationMarkers {
		if strings.Contains(lower, marker) {
			return "Based on the document, here's what I found: " + answer
		}
	}
	return answer
}
