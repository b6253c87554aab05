// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/farqad/farqad-tui/internal/store"
	"github.com/farqad/farqad-tui/internal/ui/chat"
)

// =============================================================================
// CHAT COMMAND (DEFAULT)
// =============================================================================

// runChat starts the interactive TUI.
func (a *app) runChat() error {
	// The TUI owns the terminal, so diagnostics go to a file.
	logPath := a.cfg.Chat.LogFile
	if logPath == "" {
		logPath = filepath.Join(a.dataDir, "farqad.log")
	}
	if f, err := tea.LogToFile(logPath, "farqad"); err == nil {
		defer f.Close()
	}

	username := a.store.GetOr(store.KeyUsername, "")

	// Watch the session file so a second farqad process's writes (login,
	// cleared history) show up live.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher, err := store.NewWatcher(a.store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: session watcher unavailable: %v\n", err)
		watcher = nil
	} else {
		go watcher.Run(ctx)
		defer watcher.Close()
	}

	m := chat.New(a.state, a.history, a.dispatcher, username, watcher)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return &CommandError{Command: "chat", Action: "run", Reason: "TUI terminated", Err: err}
	}
	return nil
}
