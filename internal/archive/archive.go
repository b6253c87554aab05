// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive keeps a durable record of every exchange in a local
// SQLite database. The session store only remembers the last ten turns;
// the archive is where older conversations remain searchable and
// exportable.
package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/farqad/farqad-tui/internal/model"
)

// ErrSessionNotFound indicates the requested session does not exist.
var ErrSessionNotFound = errors.New("session not found in archive")

// Archive is the SQLite-backed transcript log.
type Archive struct {
	db *sql.DB
}

// SessionMeta summarizes one archived session.
type SessionMeta struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Turns     int       `json:"turns" yaml:"turns"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// SearchHit is one matching turn from a search.
type SearchHit struct {
	SessionID   string
	SessionName string
	Role        model.Role
	Content     string
	CreatedAt   time.Time
}

// DefaultPath returns the standard archive location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".farqad", "archive.db"), nil
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS turns (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id);
`

// Open opens (and if needed creates) the archive at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}

// RecordTurn appends a turn to a session, creating the session row on
// first use. The session name is set once from the first recorded turn
// and refreshed only if still empty.
func (a *Archive) RecordTurn(sessionID, sessionName string, turn model.Turn) error {
	now := time.Now().UTC()

	_, err := a.db.Exec(`
		INSERT INTO sessions (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at = excluded.updated_at,
			name = CASE WHEN sessions.name = '' THEN excluded.name ELSE sessions.name END`,
		sessionID, sessionName, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	_, err = a.db.Exec(
		`INSERT INTO turns (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, string(turn.Role), turn.Content, turn.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to record turn: %w", err)
	}
	return nil
}

// Sessions lists archived sessions, most recently updated first.
func (a *Archive) Sessions() ([]SessionMeta, error) {
	rows, err := a.db.Query(`
		SELECT s.id, s.name, s.created_at, s.updated_at, COUNT(t.id)
		FROM sessions s
		LEFT JOIN turns t ON t.session_id = s.id
		GROUP BY s.id
		ORDER BY s.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionMeta
	for rows.Next() {
		var meta SessionMeta
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.CreatedAt, &meta.UpdatedAt, &meta.Turns); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, meta)
	}
	return sessions, rows.Err()
}

// SessionTurns returns a session's turns in order.
func (a *Archive) SessionTurns(sessionID string) ([]model.Turn, error) {
	var exists int
	err := a.db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE id = ?`, sessionID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	rows, err := a.db.Query(
		`SELECT role, content, created_at FROM turns WHERE session_id = ? ORDER BY id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load turns: %w", err)
	}
	defer rows.Close()

	var turns []model.Turn
	for rows.Next() {
		var turn model.Turn
		var role string
		if err := rows.Scan(&role, &turn.Content, &turn.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turn.Role = model.Role(role)
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// Search finds turns containing the term, newest first.
func (a *Archive) Search(term string) ([]SearchHit, error) {
	rows, err := a.db.Query(`
		SELECT t.session_id, s.name, t.role, t.content, t.created_at
		FROM turns t
		JOIN sessions s ON s.id = t.session_id
		WHERE t.content LIKE '%' || ? || '%'
		ORDER BY t.created_at DESC
		LIMIT 100`, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search archive: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var hit SearchHit
		var role string
		if err := rows.Scan(&hit.SessionID, &hit.SessionName, &role, &hit.Content, &hit.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search hit: %w", err)
		}
		hit.Role = model.Role(role)
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// DeleteSession removes a session and its turns.
func (a *Archive) DeleteSession(sessionID string) error {
	res, err := a.db.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

// Clear removes every session.
func (a *Archive) Clear() error {
	if _, err := a.db.Exec(`DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to clear archive: %w", err)
	}
	return nil
}
