// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"strings"
)

// Keywords that mark a query as being about the loaded document. The
// list is deliberately broad: sending a general question to the document
// endpoint degrades the answer, but sending a document question to the
// general endpoint loses the document entirely.
var documentKeywords = []string{
	"document",
	"file",
	"report",
	"in this",
	"from this",
	"the document",
	"stc",
	"financial",
	"revenue",
	"data",
	"improv",
	"better",
	"growth",
	"trend",
	"performance",
	"what does the",
	"according to",
	"based on",
}

// IsDocumentRelevant reports whether a query should be answered from
// the focused document rather than general knowledge.
func IsDocumentRelevant(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range documentKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
