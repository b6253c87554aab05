// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/farqad/farqad-tui/internal/model"
)

// ExportFormat selects a session export encoding.
type ExportFormat string

const (
	FormatMarkdown ExportFormat = "markdown"
	FormatJSON     ExportFormat = "json"
	FormatYAML     ExportFormat = "yaml"
)

// ParseExportFormat validates a user-supplied format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown export format: %s (expected markdown, json, or yaml)", s)
	}
}

// exportedSession is the serialized shape for json/yaml exports.
type exportedSession struct {
	ID       string         `json:"id" yaml:"id"`
	Name     string         `json:"name" yaml:"name"`
	Exported time.Time      `json:"exported_at" yaml:"exported_at"`
	Turns    []exportedTurn `json:"turns" yaml:"turns"`
}

type exportedTurn struct {
	Role      string    `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Export renders one session in the requested format.
func (a *Archive) Export(sessionID string, format ExportFormat) (string, error) {
	turns, err := a.SessionTurns(sessionID)
	if err != nil {
		return "", err
	}

	name := sessionID
	sessions, err := a.Sessions()
	if err == nil {
		for _, s := range sessions {
			if s.ID == sessionID {
				name = s.Name
				break
			}
		}
	}

	switch format {
	case FormatMarkdown:
		return exportMarkdown(name, turns), nil
	case FormatJSON, FormatYAML:
		doc := exportedSession{
			ID:       sessionID,
			Name:     name,
			Exported: time.Now().UTC(),
		}
		for _, t := range turns {
			doc.Turns = append(doc.Turns, exportedTurn{
				Role:      string(t.Role),
				Content:   t.Content,
				Timestamp: t.Timestamp,
			})
		}
		if format == FormatJSON {
			raw, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return "", fmt.Errorf("failed to encode export: %w", err)
			}
			return string(raw), nil
		}
		raw, err := yaml.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("failed to encode export: %w", err)
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("unknown export format: %s", format)
	}
}

func exportMarkdown(name string, turns []model.Turn) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", name)
	for _, t := range turns {
		speaker := "Farqad"
		if t.IsUser() {
			speaker = "You"
		}
		fmt.Fprintf(&b, "**%s** (%s):\n\n%s\n\n---\n\n", speaker, t.Timestamp.Format("2006-01-02 15:04"), t.Content)
	}
	return b.String()
}
