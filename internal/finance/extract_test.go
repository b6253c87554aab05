// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farqad/farqad-tui/internal/model"
)

func TestExtractEmbeddedChartData(t *testing.T) {
	text := `Here is the trend.
<chart_data>{"chartType":"line","chartTitle":"Revenue","data":{"labels":["Q1","Q2"],"datasets":[{"label":"Revenue","data":[10,12]}]}}</chart_data>`

	chart := Extract(text)
	require.NotNil(t, chart)
	assert.Equal(t, model.ChartTypeLine, chart.ChartType)
	assert.Equal(t, "Revenue", chart.ChartTitle)
	assert.Equal(t, []float64{10, 12}, chart.Series().Data)
}

func TestExtractEmbeddedMalformedFallsThrough(t *testing.T) {
	// Broken JSON must not abort extraction; the percentages still chart.
	text := `<chart_data>{not json}</chart_data> Growth was 5% then 7%.`
	chart := Extract(text)
	require.NotNil(t, chart)
	assert.Equal(t, "Percentage Metrics", chart.ChartTitle)
}

func TestExtractMarkdownTable(t *testing.T) {
	text := `Results:
| Year | Revenue |
|------|---------|
| 2023 | $500    |
| 2024 | $620    |`

	chart := Extract(text)
	require.NotNil(t, chart)
	assert.Equal(t, model.ChartTypeBar, chart.ChartType)
	assert.Equal(t, "Revenue", chart.ChartTitle)
	assert.Equal(t, []string{"2023", "2024"}, chart.Data.Labels)
	assert.Equal(t, []float64{500, 620}, chart.Series().Data)
}

func TestExtractTableSeasonalLabelsMakeLineChart(t *testing.T) {
	text := `| Month | Sales |
|-------|-------|
| Jan   | 100   |
| Feb   | 120   |`

	chart := Extract(text)
	require.NotNil(t, chart)
	assert.Equal(t, model.ChartTypeLine, chart.ChartType)
}

func TestExtractCurrencyAmounts(t *testing.T) {
	text := "Revenue reached SAR 19,209,552 thousand while profit was SAR 3.2 billion."

	chart := Extract(text)
	require.NotNil(t, chart)
	assert.Equal(t, "Financial Metrics", chart.ChartTitle)
	require.Len(t, chart.Series().Data, 2)
	assert.Equal(t, 19209552000.0, chart.Series().Data[0])
	assert.Equal(t, 3.2e9, chart.Series().Data[1])
	// Label comes from the word before the amount.
	assert.Equal(t, "reached", chart.Data.Labels[0])
}

func TestExtractCurrencyCapsAtTen(t *testing.T) {
	text := ""
	for i := 0; i < 15; i++ {
		text += "item $100 "
	}
	chart := Extract(text)
	require.NotNil(t, chart)
	assert.Len(t, chart.Series().Data, 10)
	// Repeated labels are made unique.
	assert.NotEqual(t, chart.Data.Labels[0], chart.Data.Labels[1])
}

func TestExtractPercentages(t *testing.T) {
	text := "Growth was 12.5% domestically and 8% internationally."
	chart := Extract(text)
	require.NotNil(t, chart)
	assert.Equal(t, model.ChartTypeBar, chart.ChartType)
	assert.Equal(t, []float64{12.5, 8}, chart.Series().Data)
}

func TestExtractTimeSeries(t *testing.T) {
	text := "Monthly figures: Jan 100, Feb 110, Mar 95."
	chart := Extract(text)
	require.NotNil(t, chart)
	assert.Equal(t, model.ChartTypeLine, chart.ChartType)
	assert.Equal(t, "Time Series Data", chart.ChartTitle)
	assert.Equal(t, []string{"Jan", "Feb", "Mar"}, chart.Data.Labels)
	assert.Equal(t, []float64{100, 110, 95}, chart.Series().Data)
}

func TestExtractNothingReturnsNil(t *testing.T) {
	assert.Nil(t, Extract("Hello! How can I help you today?"))
	assert.Nil(t, Extract(""))
}
