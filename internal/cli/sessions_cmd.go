// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/farqad/farqad-tui/internal/archive"
	"github.com/farqad/farqad-tui/internal/model"
	"github.com/farqad/farqad-tui/internal/util"
)

// =============================================================================
// SESSIONS COMMAND
// =============================================================================

// runSessions manages the SQLite session archive.
func (a *app) runSessions(args *ArgParser) error {
	if a.archive == nil {
		return &CommandError{Command: "sessions", Action: args.Subcommand(), Reason: "session archive unavailable"}
	}

	switch args.Subcommand() {
	case "", "list":
		return a.sessionsList()
	case "show":
		return a.sessionsShow(args.Positional(1))
	case "search":
		return a.sessionsSearch(args.JoinPositional(1))
	case "delete":
		return a.sessionsDelete(args.Positional(1))
	case "delete-all":
		return a.sessionsDeleteAll(args.BoolFlag("confirm"))
	case "export":
		return a.sessionsExport(args.Positional(1), args.Flag("format"))
	default:
		return usageErrorf("unknown sessions subcommand: %s", args.Subcommand())
	}
}

func (a *app) sessionsList() error {
	sessions, err := a.archive.Sessions()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No archived sessions.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTURNS\tUPDATED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			s.ID, util.TruncateRunes(s.Name, 40), s.Turns, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func (a *app) sessionsShow(id string) error {
	if id == "" {
		return usageErrorf("sessions show requires a session id")
	}
	turns, err := a.archive.SessionTurns(id)
	if err != nil {
		return err
	}

	for _, turn := range turns {
		speaker := "Farqad"
		if turn.Role == model.RoleUser {
			speaker = "You"
		}
		fmt.Printf("[%s] %s:\n%s\n\n", turn.Timestamp.Local().Format("15:04"), speaker, turn.Content)
	}
	return nil
}

func (a *app) sessionsSearch(term string) error {
	if term == "" {
		return usageErrorf("sessions search requires a search term")
	}
	hits, err := a.archive.Search(term)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tROLE\tMATCH")
	for _, hit := range hits {
		fmt.Fprintf(w, "%s\t%s\t%s\n", hit.SessionID, hit.Role, util.TruncateRunes(hit.Content, 70))
	}
	return w.Flush()
}

func (a *app) sessionsDelete(id string) error {
	if id == "" {
		return usageErrorf("sessions delete requires a session id")
	}
	if err := a.archive.DeleteSession(id); err != nil {
		return err
	}
	fmt.Printf("Session %s deleted.\n", id)
	return nil
}

func (a *app) sessionsDeleteAll(confirmed bool) error {
	if !confirmed {
		return usageErrorf("sessions delete-all is destructive; re-run with --confirm")
	}
	if err := a.archive.Clear(); err != nil {
		return err
	}
	fmt.Println("All archived sessions deleted.")
	return nil
}

func (a *app) sessionsExport(id, format string) error {
	if id == "" {
		return usageErrorf("sessions export requires a session id")
	}
	f, err := archive.ParseExportFormat(format)
	if err != nil {
		return usageErrorf("%v", err)
	}

	out, err := a.archive.Export(id, f)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
