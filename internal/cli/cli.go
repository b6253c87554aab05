// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses farqad's command line and runs the commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/farqad/farqad-tui/internal/api"
	"github.com/farqad/farqad-tui/internal/archive"
	"github.com/farqad/farqad-tui/internal/config"
	"github.com/farqad/farqad-tui/internal/dispatch"
	"github.com/farqad/farqad-tui/internal/history"
	"github.com/farqad/farqad-tui/internal/secrets"
	"github.com/farqad/farqad-tui/internal/store"
)

// Version information (can be overridden at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the CLI command to execute.
type Command int

const (
	CmdChat Command = iota // default: interactive TUI
	CmdAsk
	CmdLogin
	CmdRegister
	CmdLogout
	CmdSessions
	CmdVersion
	CmdHelp
)

const usageText = `farqad - financial assistant for the terminal

Farqad answers questions about your finances and analyzes financial
documents. Answers that contain financial data are charted inline.

Usage:
  farqad                       Start the chat TUI (default)
  farqad ask "question"        Ask a single question
  farqad login                 Sign in and store the session token
  farqad register              Create an account
  farqad logout                Clear the stored session
  farqad sessions [subcommand] Archived session management
  farqad version               Show version information
  farqad help                  Show this help

Ask flags:
  --doc          Focus the bundled sample report before asking
  --chart        Print extracted chart data as highlighted JSON
  --follow       Keep prompting for follow-up questions

Sessions subcommands:
  list                         List archived sessions
  show <id>                    Print one session's turns
  search <text>                Search archived turns
  delete <id>                  Delete one session
  delete-all --confirm         Delete every archived session
  export <id> [--format=md|json|yaml]

Environment:
  FARQAD_API_URL               Override the backend URL
  FARQAD_AUTH_URL              Override the auth service URL
`

// ParseCommand maps the first CLI argument to a command.
func ParseCommand(args []string) (Command, []string) {
	if len(args) == 0 {
		return CmdChat, nil
	}
	switch args[0] {
	case "ask":
		return CmdAsk, args[1:]
	case "login":
		return CmdLogin, args[1:]
	case "register":
		return CmdRegister, args[1:]
	case "logout":
		return CmdLogout, args[1:]
	case "sessions", "session":
		return CmdSessions, args[1:]
	case "version", "-v", "--version":
		return CmdVersion, args[1:]
	case "help", "-h", "--help":
		return CmdHelp, args[1:]
	case "chat":
		return CmdChat, args[1:]
	default:
		// Bare words are treated as an ask query, so
		// `farqad what is a budget` just works.
		return CmdAsk, args
	}
}

// Run executes the CLI and returns the process exit code.
func Run(args []string) int {
	cmd, rest := ParseCommand(args)

	switch cmd {
	case CmdHelp:
		fmt.Print(usageText)
		return ExitSuccess
	case CmdVersion:
		fmt.Printf("farqad %s (commit %s, built %s, %s/%s)\n",
			Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
		return ExitSuccess
	}

	app, err := newApp()
	if err != nil {
		return reportError(err)
	}
	defer app.Close()

	switch cmd {
	case CmdAsk:
		err = app.runAsk(NewArgParser(rest))
	case CmdLogin:
		err = app.runLogin(NewArgParser(rest))
	case CmdRegister:
		err = app.runRegister(NewArgParser(rest))
	case CmdLogout:
		err = app.runLogout()
	case CmdSessions:
		err = app.runSessions(NewArgParser(rest))
	default:
		err = app.runChat()
	}

	if err != nil {
		return reportError(err)
	}
	return ExitSuccess
}

// app holds the wired subsystems a command runs against.
type app struct {
	cfg        *config.Config
	store      *store.Store
	state      *dispatch.State
	history    *history.Manager
	client     *api.Client
	auth       *api.AuthClient
	dispatcher *dispatch.Dispatcher
	archive    *archive.Archive
	dataDir    string
}

// newApp loads config and opens the session store and archive.
func newApp() (*app, error) {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	// First run leaves an editable config behind. Failing to seed it is
	// not fatal; defaults still apply.
	if err := config.WriteDefaultIfMissing(cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not write default config: %v\n", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	sessionPath, err := store.DefaultPath()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(sessionPath)
	if err != nil {
		return nil, err
	}

	dataDir := filepath.Dir(sessionPath)
	arch, err := archive.Open(filepath.Join(dataDir, "archive.db"))
	if err != nil {
		// The archive is a convenience layer; chatting works without it.
		fmt.Fprintf(os.Stderr, "warning: session archive unavailable: %v\n", err)
		arch = nil
	}

	state := dispatch.Restore(s)
	hist := history.NewManager(s)
	client := api.NewClient(cfg.API.BaseURL).
		WithTimeout(cfg.Timeout()).
		WithMaxRetries(cfg.API.MaxRetries)

	// A stored login token rides along on every backend call. A token
	// that fails to decrypt is treated as signed out.
	if stored := s.GetOr(store.KeyAuthToken, ""); stored != "" {
		if token, err := secrets.DecryptString(stored); err == nil {
			client.WithAuthToken(token)
		} else {
			fmt.Fprintf(os.Stderr, "warning: stored session token unreadable, continuing signed out: %v\n", err)
		}
	}

	d := dispatch.NewDispatcher(client, state, hist)
	if arch != nil {
		d.SetRecorder(arch)
	}

	return &app{
		cfg:        cfg,
		store:      s,
		state:      state,
		history:    hist,
		client:     client,
		auth:       api.NewAuthClient(cfg.API.AuthURL),
		dispatcher: d,
		archive:    arch,
		dataDir:    dataDir,
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	if a.archive != nil {
		a.archive.Close()
	}
}
