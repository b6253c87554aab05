// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package finance

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PeriodRevenue is one period's revenue figure in a trend comparison.
type PeriodRevenue struct {
	Period  string  `json:"Period"`
	Revenue float64 `json:"Revenue"`
}

// TrendAnalysis is the outcome of comparing revenue across periods
// found in a piece of text.
type TrendAnalysis struct {
	HasFinancialData bool
	FinancialData    []PeriodRevenue
	Improved         bool
	PercentageChange float64
	Summary          string
}

var (
	jsonArrayRe    = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)
	numberRe       = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)
	year2023Re     = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)[^\d]+(2023|23)`)
	year2024Re     = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)[^\d]+(2024|24)`)
	revenueValueRe = regexp.MustCompile(`(?i)revenue(?:\s+is|:)?\s+(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`)
	periodValueRe  = regexp.MustCompile(`(?is)((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)?\s*\d{4}).{1,30}?(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`)
	nonNumericRe   = regexp.MustCompile(`[^0-9.]`)
)

// AnalyzeTrends hunts for a two-period revenue comparison in text. The
// cascade mirrors how answers actually arrive: embedded JSON first, then
// year-tagged figures, then repeated "revenue is N" statements, then any
// two period/number pairs.
func AnalyzeTrends(text string) TrendAnalysis {
	data := trendDataFromJSON(text)

	if len(data) == 0 {
		data = trendDataFromYears(text)
	}
	if len(data) == 0 {
		data = trendDataFromRevenueStatements(text)
	}
	if len(data) == 0 {
		data = trendDataFromPeriodPairs(text)
	}

	analysis := TrendAnalysis{FinancialData: data}
	if len(data) >= 2 && data[0].Revenue > 0 {
		analysis.HasFinancialData = true
		analysis.Improved = data[1].Revenue > data[0].Revenue
		analysis.PercentageChange = (data[1].Revenue - data[0].Revenue) / data[0].Revenue * 100
	} else if len(data) > 0 {
		analysis.HasFinancialData = true
	}

	if analysis.HasFinancialData {
		direction := "decline"
		if analysis.Improved {
			direction = "improvement"
		}
		analysis.Summary = fmt.Sprintf("Financial analysis shows %s of %s%% between periods.",
			direction, FormatPercent(analysis.PercentageChange, 2))
	} else {
		analysis.Summary = "No clear financial trend could be determined from the available data."
	}
	return analysis
}

// trendDataFromJSON parses an embedded [{"Period":..., "Revenue":...}]
// array. Revenue may arrive as a number or a formatted string.
func trendDataFromJSON(text string) []PeriodRevenue {
	match := jsonArrayRe.FindString(text)
	if match == "" {
		return nil
	}

	var rows []map[string]any
	if err := json.Unmarshal([]byte(match), &rows); err != nil || len(rows) < 2 {
		return nil
	}

	var data []PeriodRevenue
	for _, row := range rows {
		period, _ := row["Period"].(string)
		if period == "" {
			return nil
		}
		revenue, ok := numericValue(row["Revenue"])
		if !ok {
			return nil
		}
		data = append(data, PeriodRevenue{Period: period, Revenue: revenue})
	}
	return data
}

func trendDataFromYears(text string) []PeriodRevenue {
	if len(numberRe.FindAllString(text, -1)) < 2 {
		return nil
	}
	m2023 := year2023Re.FindStringSubmatch(text)
	m2024 := year2024Re.FindStringSubmatch(text)
	if m2023 == nil || m2024 == nil {
		return nil
	}

	v2023, err1 := parseAmount(m2023[1])
	v2024, err2 := parseAmount(m2024[1])
	if err1 != nil || err2 != nil || v2023 <= 0 {
		return nil
	}
	return []PeriodRevenue{
		{Period: "2023", Revenue: v2023},
		{Period: "2024", Revenue: v2024},
	}
}

func trendDataFromRevenueStatements(text string) []PeriodRevenue {
	matches := revenueValueRe.FindAllStringSubmatch(text, -1)
	if len(matches) < 2 {
		return nil
	}

	first, err1 := parseAmount(matches[0][1])
	second, err2 := parseAmount(matches[1][1])
	if err1 != nil || err2 != nil || first <= 0 {
		return nil
	}
	return []PeriodRevenue{
		{Period: "First Period", Revenue: first},
		{Period: "Second Period", Revenue: second},
	}
}

func trendDataFromPeriodPairs(text string) []PeriodRevenue {
	matches := periodValueRe.FindAllStringSubmatch(text, -1)
	if len(matches) < 2 {
		return nil
	}

	first, err1 := parseAmount(matches[0][2])
	second, err2 := parseAmount(matches[1][2])
	if err1 != nil || err2 != nil || first <= 0 {
		return nil
	}
	return []PeriodRevenue{
		{Period: strings.TrimSpace(matches[0][1]), Revenue: first},
		{Period: strings.TrimSpace(matches[1][1]), Revenue: second},
	}
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func numericValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		cleaned := nonNumericRe.ReplaceAllString(val, "")
		f, err := strconv.ParseFloat(cleaned, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// EnhanceDocumentAnswer rewrites a document-mode answer for questions
// about improvement or growth, replacing a vague reply with the trend
// the numbers actually show. Returns "" when no enhancement applies.
func EnhanceDocumentAnswer(question, answer string) string {
	q := strings.ToLower(question)

	askingAboutImprovement := strings.Contains(q, "improv") ||
		strings.Contains(q, "better") ||
		strings.Contains(q, "growth") ||
		strings.Contains(q, "trend") ||
		strings.Contains(q, "performance")

	if askingAboutImprovement {
		if sample := DetectSampleReportData(answer); sample.Found {
			return sample.Summary + "\n\nThis indicates that STC is showing positive growth in revenue during this period."
		}

		analysis := AnalyzeTrends(answer)
		if analysis.HasFinancialData {
			direction, trend, reading := "a decline", "negative trend", "there are challenges in performance during the measured period."
			if analysis.Improved {
				direction, trend, reading = "an improvement", "positive trend", "performance is improving during the measured period."
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Based on the financial data in the document, there is %s of %s%% between periods.\n\n",
				direction, FormatPercent(analysis.PercentageChange, 2))
			b.WriteString("Comparing: ")
			for i, period := range analysis.FinancialData {
				fmt.Fprintf(&b, "%s (%s)", period.Period, FormatAmount(period.Revenue))
				if i < len(analysis.FinancialData)-1 {
					b.WriteString(" to ")
				}
			}
			fmt.Fprintf(&b, "\n\nThis %s suggests that %s", trend, reading)
			return b.String()
		}
	}

	if strings.Contains(q, "stc") &&
		(strings.Contains(q, "financial") || strings.Contains(q, "revenue") || strings.Contains(q, "performance")) {
		if sample := DetectSampleReportData(answer); sample.Found {
			return sample.Summary
		}
	}

	return ""
}
