// farqad - a terminal client for the Farqad financial assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/farqad/farqad-tui/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
