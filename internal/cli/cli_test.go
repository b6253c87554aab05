// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farqad/farqad-tui/internal/api"
	"github.com/farqad/farqad-tui/internal/archive"
)

func TestArgParserFormats(t *testing.T) {
	args := NewArgParser([]string{"export", "s1", "--format=yaml", "--confirm", "-n", "5"})

	assert.Equal(t, "export", args.Subcommand())
	assert.Equal(t, "s1", args.Positional(1))
	assert.Equal(t, "yaml", args.Flag("format"))
	assert.True(t, args.BoolFlag("confirm"))
	assert.Equal(t, "5", args.Flag("n"))
	assert.Equal(t, "", args.Positional(9))
}

func TestArgParserExplicitBool(t *testing.T) {
	args := NewArgParser([]string{"--chart=false", "--doc=true"})
	assert.False(t, args.BoolFlag("chart"))
	assert.True(t, args.BoolFlag("doc"))
}

func TestJoinPositional(t *testing.T) {
	args := NewArgParser([]string{"what", "is", "my", "budget", "--chart"})
	assert.Equal(t, "what is my budget", args.JoinPositional(0))
	assert.True(t, args.BoolFlag("chart"))
}

func TestParseCommand(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want Command
	}{
		{nil, CmdChat},
		{[]string{"chat"}, CmdChat},
		{[]string{"ask", "hi"}, CmdAsk},
		{[]string{"login"}, CmdLogin},
		{[]string{"register"}, CmdRegister},
		{[]string{"logout"}, CmdLogout},
		{[]string{"sessions", "list"}, CmdSessions},
		{[]string{"session"}, CmdSessions},
		{[]string{"version"}, CmdVersion},
		{[]string{"--help"}, CmdHelp},
	} {
		got, _ := ParseCommand(tc.args)
		assert.Equal(t, tc.want, got, "%v", tc.args)
	}
}

func TestBareWordsBecomeAskQuery(t *testing.T) {
	cmd, rest := ParseCommand([]string{"what", "is", "a", "budget"})
	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "what is a budget", NewArgParser(rest).JoinPositional(0))
}

func TestExitCodeMapping(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCodeFor(nil))
	assert.Equal(t, ExitUsageError, exitCodeFor(usageErrorf("bad")))
	assert.Equal(t, ExitAuthError, exitCodeFor(api.ErrAuthFailed))
	assert.Equal(t, ExitNetworkError, exitCodeFor(api.ErrTimeout))
	assert.Equal(t, ExitNotFound, exitCodeFor(archive.ErrSessionNotFound))
	assert.Equal(t, ExitGeneralError, exitCodeFor(errors.New("boom")))

	wrapped := &CommandError{Command: "sessions", Action: "show", Reason: "lookup", Err: archive.ErrSessionNotFound}
	assert.Equal(t, ExitNotFound, exitCodeFor(wrapped))
}

func TestCommandErrorFormatting(t *testing.T) {
	err := &CommandError{Command: "login", Action: "authenticate", Reason: "sign-in rejected", Err: api.ErrAuthFailed}
	assert.Contains(t, err.Error(), "login authenticate failed")
	assert.ErrorIs(t, err, api.ErrAuthFailed)
}
