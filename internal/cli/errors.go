// errors.go - Unified error handling for the farqad CLI.
//
// Every command returns its error; only Run prints and maps it to an
// exit code.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/farqad/farqad-tui/internal/api"
	"github.com/farqad/farqad-tui/internal/archive"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitAuthError    = 4
	ExitNetworkError = 5
	ExitNotFound     = 7
)

// CommandError is a CLI failure with command context.
type CommandError struct {
	Command string
	Action  string
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError indicates bad invocation rather than a runtime failure.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// usageErrorf builds a UsageError.
func usageErrorf(format string, args ...any) error {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// exitCodeFor maps an error to its exit code.
func exitCodeFor(err error) int {
	var usage *UsageError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &usage):
		return ExitUsageError
	case errors.Is(err, api.ErrAuthFailed), errors.Is(err, api.ErrInvalidCredentials):
		return ExitAuthError
	case errors.Is(err, api.ErrTimeout), errors.Is(err, api.ErrServerError), errors.Is(err, api.ErrRateLimited):
		return ExitNetworkError
	case errors.Is(err, archive.ErrSessionNotFound):
		return ExitNotFound
	default:
		return ExitGeneralError
	}
}

// reportError prints the error for the user and returns its exit code.
func reportError(err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var usage *UsageError
	if errors.As(err, &usage) {
		fmt.Fprintln(os.Stderr, "Run 'farqad help' for usage.")
	}
	return exitCodeFor(err)
}
