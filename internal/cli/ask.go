// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"

	"github.com/farqad/farqad-tui/internal/finance"
	"github.com/farqad/farqad-tui/internal/ui/components"
	"github.com/farqad/farqad-tui/internal/ui/styles"
)

// =============================================================================
// ASK COMMAND
// =============================================================================

// runAsk answers one question on stdout, without the TUI.
//
//	farqad ask "what was the revenue growth?" --doc --chart
func (a *app) runAsk(args *ArgParser) error {
	query := args.JoinPositional(0)
	if query == "" {
		return usageErrorf("ask requires a question, e.g. farqad ask \"what is a budget?\"")
	}

	if args.BoolFlag("doc") {
		docs := components.SampleDocuments()
		a.state.FocusOnDocument(docs[0].ID, docs[0].Name)
	}

	if err := a.askOnce(query, args.BoolFlag("chart")); err != nil {
		return err
	}

	if !args.BoolFlag("follow") {
		return nil
	}
	return a.followUpLoop(args.BoolFlag("chart"))
}

// askOnce sends one query and prints the rendered answer.
func (a *app) askOnce(query string, withChart bool) error {
	result, err := a.dispatcher.Send(context.Background(), query)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}

	fmt.Print(renderMarkdown(result.Answer))

	chart := finance.Extract(result.Answer)
	if !chart.Valid() {
		return nil
	}

	if withChart {
		return printChartJSON(chart)
	}
	cv := components.NewChartView(chart, styles.NewTheme())
	fmt.Println(cv.View())
	return nil
}

// followUpLoop keeps prompting for questions until EOF or an empty line.
func (a *app) followUpLoop(withChart bool) error {
	l := liner.NewLiner()
	defer l.Close()
	l.SetCtrlCAborts(true)

	for {
		query, err := l.Prompt("> ")
		if err != nil {
			// Ctrl-C or Ctrl-D ends the conversation, not the process.
			return nil
		}
		query = strings.TrimSpace(query)
		if query == "" {
			return nil
		}
		l.AppendHistory(query)

		if err := a.askOnce(query, withChart); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}

// printChartJSON prints the extracted chart payload as highlighted JSON,
// for piping into other tools or eyeballing the raw data.
func printChartJSON(chart any) error {
	raw, err := json.MarshalIndent(chart, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode chart data: %w", err)
	}

	if err := quick.Highlight(os.Stdout, string(raw)+"\n", "json", "terminal256", "monokai"); err != nil {
		// Highlighting is cosmetic; fall back to plain output.
		fmt.Println(string(raw))
	}
	return nil
}

// renderMarkdown renders an answer for a plain terminal, falling back to
// the raw text when the renderer cannot be built.
func renderMarkdown(answer string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return answer + "\n"
	}
	out, err := renderer.Render(answer)
	if err != nil {
		return answer + "\n"
	}
	return out
}
