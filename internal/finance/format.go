// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package finance extracts chartable financial data from assistant
// replies and derives trend analyses from it. Everything here is
// heuristic: the backend answers in prose, and this package recovers the
// numbers buried in it.
package finance

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders a value with thousands separators, dropping the
// fraction for whole numbers: 19209552 -> "19,209,552", 1.6 -> "1.6".
func FormatAmount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return printer.Sprint(number.Decimal(int64(v)))
	}
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// FormatPercent renders a percentage magnitude to the given decimals:
// FormatPercent(-1.597, 1) -> "1.6".
func FormatPercent(v float64, decimals int) string {
	return strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)
}
