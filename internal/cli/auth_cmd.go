// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/farqad/farqad-tui/internal/secrets"
	"github.com/farqad/farqad-tui/internal/store"
)

// =============================================================================
// AUTH COMMANDS
// =============================================================================

// runLogin signs in and stores the encrypted session token.
func (a *app) runLogin(args *ArgParser) error {
	username := args.Flag("username")
	password := args.Flag("password")

	var err error
	if username == "" {
		if username, err = promptLine("Username: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = promptPassword("Password: "); err != nil {
			return err
		}
	}
	if username == "" || password == "" {
		return usageErrorf("username and password are required")
	}

	token, err := a.auth.Login(context.Background(), username, password)
	if err != nil {
		return &CommandError{Command: "login", Action: "authenticate", Reason: "sign-in rejected", Err: err}
	}

	encrypted, err := secrets.EncryptString(token)
	if err != nil {
		return &CommandError{Command: "login", Action: "store token", Reason: "encryption failed", Err: err}
	}
	if err := a.store.Set(store.KeyAuthToken, encrypted); err != nil {
		return &CommandError{Command: "login", Action: "store token", Reason: "session write failed", Err: err}
	}
	if err := a.store.Set(store.KeyUsername, username); err != nil {
		return &CommandError{Command: "login", Action: "store username", Reason: "session write failed", Err: err}
	}

	fmt.Printf("Signed in as %s.\n", username)
	return nil
}

// runRegister creates an account, then signs in.
func (a *app) runRegister(args *ArgParser) error {
	username := args.Flag("username")
	email := args.Flag("email")
	password := args.Flag("password")

	var err error
	if username == "" {
		if username, err = promptLine("Username: "); err != nil {
			return err
		}
	}
	if email == "" {
		if email, err = promptLine("Email: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = promptPassword("Password: "); err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return usageErrorf("passwords do not match")
		}
	}
	if username == "" || email == "" || password == "" {
		return usageErrorf("username, email, and password are required")
	}

	if err := a.auth.Register(context.Background(), username, email, password); err != nil {
		return &CommandError{Command: "register", Action: "create account", Reason: "registration rejected", Err: err}
	}
	fmt.Printf("Account %s created.\n", username)

	token, err := a.auth.Login(context.Background(), username, password)
	if err != nil {
		fmt.Println("Sign in with 'farqad login' to start chatting.")
		return nil
	}
	encrypted, err := secrets.EncryptString(token)
	if err != nil {
		return &CommandError{Command: "register", Action: "store token", Reason: "encryption failed", Err: err}
	}
	if err := a.store.Set(store.KeyAuthToken, encrypted); err != nil {
		return &CommandError{Command: "register", Action: "store token", Reason: "session write failed", Err: err}
	}
	_ = a.store.Set(store.KeyUsername, username)

	fmt.Printf("Signed in as %s.\n", username)
	return nil
}

// runLogout drops the stored token and username. Conversation state is
// kept: logging out does not forget the chats.
func (a *app) runLogout() error {
	_ = a.store.Delete(store.KeyAuthToken)
	_ = a.store.Delete(store.KeyUsername)
	fmt.Println("Signed out.")
	return nil
}

// promptLine reads one line interactively.
func promptLine(prompt string) (string, error) {
	l := liner.NewLiner()
	defer l.Close()
	l.SetCtrlCAborts(true)

	input, err := l.Prompt(prompt)
	if err != nil {
		return "", fmt.Errorf("input aborted: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// promptPassword reads a password without echoing it.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
