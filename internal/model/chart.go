// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Chart types understood by the terminal chart renderer. The names match
// the backend's embedded <chart_data> payloads.
const (
	ChartTypeBar  = "bar"
	ChartTypeLine = "line"
	ChartTypePie  = "pie"
)

// ChartData is a chart extracted from an assistant response. A nil
// *ChartData means the response carried nothing chartable.
//
// The JSON shape matches what the backend embeds in <chart_data> blocks,
// so those payloads parse directly into this type. Style fields that only
// make sense in a browser (colors, tension, fill) are accepted and
// ignored by the renderer.
type ChartData struct {
	ChartType  string     `json:"chartType"`
	ChartTitle string     `json:"chartTitle"`
	Data       ChartAxes  `json:"data"`
}

// ChartAxes holds the labels and datasets of a chart.
type ChartAxes struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one series of values.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor any       `json:"backgroundColor,omitempty"`
	BorderColor     any       `json:"borderColor,omitempty"`
	BorderWidth     float64   `json:"borderWidth,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
	Fill            bool      `json:"fill,omitempty"`
}

// Valid reports whether the chart has at least one label with a value.
func (c *ChartData) Valid() bool {
	if c == nil || len(c.Data.Labels) == 0 || len(c.Data.Datasets) == 0 {
		return false
	}
	return len(c.Data.Datasets[0].Data) > 0
}

// Series returns the first dataset, which is the one the renderer draws.
func (c *ChartData) Series() Dataset {
	if c == nil || len(c.Data.Datasets) == 0 {
		return Dataset{}
	}
	return c.Data.Datasets[0]
}
