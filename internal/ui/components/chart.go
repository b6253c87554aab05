// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the farqad
// TUI.
package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/farqad/farqad-tui/internal/finance"
	"github.com/farqad/farqad-tui/internal/model"
	"github.com/farqad/farqad-tui/internal/ui/styles"
	"github.com/farqad/farqad-tui/internal/util"
)

// =============================================================================
// CHART VIEW
// =============================================================================

// ChartView renders extracted financial data as a terminal chart.
type ChartView struct {
	chart *model.ChartData
	width int
	theme *styles.Theme
}

// NewChartView creates a chart view. A nil chart renders to "".
func NewChartView(chart *model.ChartData, theme *styles.Theme) *ChartView {
	return &ChartView{chart: chart, width: 72, theme: theme}
}

// SetWidth sets the total render width.
func (cv *ChartView) SetWidth(width int) {
	if width > 20 {
		cv.width = width
	}
}

// View renders the chart.
func (cv *ChartView) View() string {
	if !cv.chart.Valid() {
		return ""
	}

	var b strings.Builder
	b.WriteString(cv.theme.ChartTitle.Render(cv.chart.ChartTitle))
	b.WriteString("\n")

	switch cv.chart.ChartType {
	case model.ChartTypeLine:
		b.WriteString(cv.renderLine())
	case model.ChartTypePie:
		b.WriteString(cv.renderPie())
	default:
		b.WriteString(cv.renderBars())
	}
	return b.String()
}

// renderBars draws one scaled horizontal bar per label. Bars scale by
// magnitude so a series mixing gains and losses still lays out; losses
// draw with a lighter fill and keep their sign in the value column.
func (cv *ChartView) renderBars() string {
	labels, values := cv.points()
	labelWidth := maxLabelWidth(labels)
	barSpace := cv.width - labelWidth - 18
	if barSpace < 10 {
		barSpace = 10
	}

	maxVal := maxAbsValue(values)
	var b strings.Builder
	for i, label := range labels {
		filled := 0
		if maxVal > 0 {
			filled = int(math.Abs(values[i]) / maxVal * float64(barSpace))
		}
		if filled < 1 && values[i] != 0 {
			filled = 1
		}
		if filled > barSpace {
			filled = barSpace
		}

		glyph := "█"
		if values[i] < 0 {
			glyph = "░"
		}

		b.WriteString("  ")
		b.WriteString(cv.theme.ChartAxis.Render(util.PadRight(util.TruncateWidth(label, labelWidth), labelWidth)))
		b.WriteString(" ")
		b.WriteString(cv.theme.ChartBar.Render(strings.Repeat(glyph, filled)))
		b.WriteString(strings.Repeat(" ", barSpace-filled+1))
		b.WriteString(cv.theme.ChartValue.Render(finance.FormatAmount(values[i])))
		b.WriteString("\n")
	}
	return b.String()
}

// renderLine draws a sparkline plus the per-point values, which reads
// better in a narrow column than an axis plot.
func (cv *ChartView) renderLine() string {
	labels, values := cv.points()

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(cv.theme.ChartBar.Render(sparkline(values)))
	b.WriteString("\n")

	labelWidth := maxLabelWidth(labels)
	for i, label := range labels {
		b.WriteString("  ")
		b.WriteString(cv.theme.ChartAxis.Render(util.PadRight(util.TruncateWidth(label, labelWidth), labelWidth)))
		b.WriteString("  ")
		b.WriteString(cv.theme.ChartValue.Render(finance.FormatAmount(values[i])))
		if i > 0 {
			b.WriteString(cv.theme.ChartAxis.Render(trendMark(values[i-1], values[i])))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderPie approximates a pie as proportional bars with percentages.
func (cv *ChartView) renderPie() string {
	labels, values := cv.points()

	var total float64
	for _, v := range values {
		total += v
	}
	if total <= 0 {
		return cv.renderBars()
	}

	labelWidth := maxLabelWidth(labels)
	segSpace := cv.width - labelWidth - 14
	if segSpace < 10 {
		segSpace = 10
	}

	var b strings.Builder
	for i, label := range labels {
		share := values[i] / total
		filled := int(share * float64(segSpace))
		if filled < 1 {
			filled = 1
		}
		b.WriteString("  ")
		b.WriteString(cv.theme.ChartAxis.Render(util.PadRight(util.TruncateWidth(label, labelWidth), labelWidth)))
		b.WriteString(" ")
		b.WriteString(cv.theme.ChartBar.Render(strings.Repeat("▓", filled)))
		b.WriteString(" ")
		b.WriteString(cv.theme.ChartValue.Render(fmt.Sprintf("%.1f%%", share*100)))
		b.WriteString("\n")
	}
	return b.String()
}

func (cv *ChartView) points() ([]string, []float64) {
	labels := cv.chart.Data.Labels
	values := cv.chart.Series().Data
	if len(values) < len(labels) {
		labels = labels[:len(values)]
	}
	if len(labels) < len(values) {
		values = values[:len(labels)]
	}
	return labels, values
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline maps values onto eight block heights.
func sparkline(values []float64) string {
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	var b strings.Builder
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkRunes)-1))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

func trendMark(prev, cur float64) string {
	switch {
	case cur > prev:
		return "  ↑"
	case cur < prev:
		return "  ↓"
	default:
		return "  →"
	}
}

func maxLabelWidth(labels []string) int {
	width := 0
	for _, l := range labels {
		if w := util.RuneLen(l); w > width {
			width = w
		}
	}
	if width > 20 {
		width = 20
	}
	return width
}

func maxAbsValue(values []float64) float64 {
	max := 0.0
	for _, v := range values {
		if a := math.Abs(v); a > max {
			max = a
		}
	}
	return max
}
