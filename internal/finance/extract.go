// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package finance

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/farqad/farqad-tui/internal/model"
)

// Extraction caps. Charts past these sizes stop being readable in a
// terminal column anyway.
const (
	maxAmountPoints     = 10
	maxTimeSeriesPoints = 12
)

var (
	chartDataRe = regexp.MustCompile(`(?s)<chart_data>(.*?)</chart_data>`)
	seasonalRe  = regexp.MustCompile(`(?i)^(q[1-4]|jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`)
	currencyRe  = regexp.MustCompile(`([A-Z]{3}|[$€£¥])\s*(\d+(?:,\d+)*(?:\.\d+)?)\s*(billion|million|thousand|[kKmMbB])?`)
	percentRe   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	timeRe      = regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec|Q[1-4]|[12][0-9]{3})[\s\-:]*(\d+(?:\.\d+)?)`)
	nonNumberRe = regexp.MustCompile(`[^\d.-]`)
)

// Extract recovers chartable data from an assistant reply. It returns
// nil when the reply carries nothing worth charting.
//
// Sources are tried in order of reliability: an embedded <chart_data>
// JSON block wins outright, then the first markdown table, then loose
// currency amounts, percentages, and finally time-series pairs.
func Extract(text string) *model.ChartData {
	if chart := extractEmbedded(text); chart != nil {
		return chart
	}
	if chart := extractTable(text); chart != nil {
		return chart
	}
	if chart := extractCurrency(text); chart != nil {
		return chart
	}
	if chart := extractPercentages(text); chart != nil {
		return chart
	}
	return extractTimeSeries(text)
}

// extractEmbedded parses a backend-provided <chart_data> payload. A
// malformed payload falls through to the text heuristics rather than
// failing the whole extraction.
func extractEmbedded(text string) *model.ChartData {
	match := chartDataRe.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	var chart model.ChartData
	if err := json.Unmarshal([]byte(match[1]), &chart); err != nil {
		return nil
	}
	if !chart.Valid() {
		return nil
	}
	return &chart
}

// extractTable reads the first markdown table: column 0 becomes the
// labels, column 1 the values. Seasonal labels (months, quarters) make
// it a line chart.
func extractTable(text string) *model.ChartData {
	var rows []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "|") && strings.Count(line, "|") >= 2 {
			rows = append(rows, line)
		}
	}
	// Need at least a header, a divider or first row, and one more row.
	if len(rows) <= 2 {
		return nil
	}

	headers := splitTableRow(rows[0])

	start := 1
	if strings.Contains(rows[1], "---") {
		start = 2
	}

	var labels []string
	var values []float64
	for _, row := range rows[start:] {
		cells := splitTableRow(row)
		if len(cells) < 2 {
			continue
		}
		value, err := strconv.ParseFloat(nonNumberRe.ReplaceAllString(cells[1], ""), 64)
		if err != nil {
			continue
		}
		labels = append(labels, cells[0])
		values = append(values, value)
	}
	if len(values) == 0 {
		return nil
	}

	chartType := model.ChartTypeBar
	title := "Financial Data"
	for _, label := range labels {
		if seasonalRe.MatchString(label) {
			chartType = model.ChartTypeLine
			title = "Financial Trend"
			break
		}
	}

	seriesLabel := "Value"
	if len(headers) > 1 {
		seriesLabel = headers[1]
		title = headers[1]
	}

	return newChart(chartType, title, seriesLabel, labels, values)
}

// extractCurrency collects amounts attached to a currency code or
// symbol. Each amount is labeled with the word preceding it, looking
// back at most 30 characters.
func extractCurrency(text string) *model.ChartData {
	matches := currencyRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var labels []string
	var values []float64
	seen := make(map[string]bool)

	for i, m := range matches {
		if i >= maxAmountPoints {
			break
		}
		amount := text[m[4]:m[5]]
		value, err := strconv.ParseFloat(strings.ReplaceAll(amount, ",", ""), 64)
		if err != nil {
			continue
		}
		if m[6] >= 0 {
			switch strings.ToLower(text[m[6]:m[7]]) {
			case "billion", "b":
				value *= 1e9
			case "million", "m":
				value *= 1e6
			case "thousand", "k":
				value *= 1e3
			}
		}

		label := labelBefore(text, m[0], i)
		if seen[label] {
			label = fmt.Sprintf("%s %d", label, i+1)
		}
		seen[label] = true

		labels = append(labels, label)
		values = append(values, value)
	}
	if len(values) == 0 {
		return nil
	}
	return newChart(model.ChartTypeBar, "Financial Metrics", "Amount", labels, values)
}

// extractPercentages collects bare percentage values.
func extractPercentages(text string) *model.ChartData {
	matches := percentRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var labels []string
	var values []float64
	seen := make(map[string]bool)

	for i, m := range matches {
		if i >= maxAmountPoints {
			break
		}
		value, err := strconv.ParseFloat(text[m[2]:m[3]], 64)
		if err != nil {
			continue
		}

		label := labelBefore(text, m[0], i)
		if seen[label] {
			label = fmt.Sprintf("%s %d", label, i+1)
		}
		seen[label] = true

		labels = append(labels, label)
		values = append(values, value)
	}
	if len(values) == 0 {
		return nil
	}
	return newChart(model.ChartTypeBar, "Percentage Metrics", "Percentage", labels, values)
}

// extractTimeSeries collects month/quarter/year markers followed by a
// number, rendered as a line chart.
func extractTimeSeries(text string) *model.ChartData {
	matches := timeRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var labels []string
	var values []float64
	for i, m := range matches {
		if i >= maxTimeSeriesPoints {
			break
		}
		value, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		labels = append(labels, m[1])
		values = append(values, value)
	}
	if len(values) == 0 {
		return nil
	}
	return newChart(model.ChartTypeLine, "Time Series Data", "Value", labels, values)
}

// labelBefore returns the last word in the 30 characters preceding the
// match, or a positional fallback.
func labelBefore(text string, matchStart, index int) string {
	start := matchStart - 30
	if start < 0 {
		start = 0
	}
	context := strings.TrimSpace(text[start:matchStart])
	if context == "" {
		return fmt.Sprintf("Item %d", index+1)
	}
	if i := strings.LastIndex(context, " "); i >= 0 {
		context = context[i+1:]
	}
	if context == "" {
		return fmt.Sprintf("Item %d", index+1)
	}
	return context
}

func splitTableRow(row string) []string {
	var cells []string
	for _, cell := range strings.Split(row, "|") {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	return cells
}

func newChart(chartType, title, seriesLabel string, labels []string, values []float64) *model.ChartData {
	return &model.ChartData{
		ChartType:  chartType,
		ChartTitle: title,
		Data: model.ChartAxes{
			Labels: labels,
			Datasets: []model.Dataset{{
				Label: seriesLabel,
				Data:  values,
			}},
		},
	}
}
