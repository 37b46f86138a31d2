// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSelector is returned when a chart type or metric name does not
// match any of the supported values.
var ErrUnknownSelector = errors.New("unknown selector value")

// ChartType is the closed set of chart renderings the dashboard supports.
type ChartType int

const (
	ChartPie ChartType = iota
	ChartLine
	Chart3DBar
)

// AllChartTypes lists every chart type in the order offered by the selector.
func AllChartTypes() []ChartType {
	return []ChartType{Chart3DBar, ChartPie, ChartLine}
}

// String returns the wire value of the chart type.
func (c ChartType) String() string {
	switch c {
	case ChartPie:
		return "pie"
	case ChartLine:
		return "line"
	case Chart3DBar:
		return "3d"
	}
	return fmt.Sprintf("ChartType(%d)", int(c))
}

// Label is the human readable option text for the selector.
func (c ChartType) Label() string {
	switch c {
	case ChartPie:
		return "Pie Chart"
	case ChartLine:
		return "Line Chart"
	case Chart3DBar:
		return "3D Bar Chart"
	}
	return c.String()
}

// ParseChartType maps a wire value ("pie", "line", "3d" or "3d-bar") onto a ChartType.
func ParseChartType(s string) (ChartType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pie":
		return ChartPie, nil
	case "line":
		return ChartLine, nil
	case "3d", "3d-bar", "3d_bar":
		return Chart3DBar, nil
	}
	return ChartPie, fmt.Errorf("chart type %q: %w", s, ErrUnknownSelector)
}

func (c ChartType) MarshalText() ([]byte, error) {
	switch c {
	case ChartPie, ChartLine, Chart3DBar:
		return []byte(c.String()), nil
	}
	return nil, fmt.Errorf("chart type %d: %w", int(c), ErrUnknownSelector)
}

func (c *ChartType) UnmarshalText(text []byte) error {
	parsed, err := ParseChartType(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Metric selects which value series feeds the chart.
type Metric int

const (
	MetricTotal Metric = iota
	MetricPerMillion
)

// AllMetrics lists every metric in selector order.
func AllMetrics() []Metric {
	return []Metric{MetricTotal, MetricPerMillion}
}

func (m Metric) String() string {
	switch m {
	case MetricTotal:
		return "total"
	case MetricPerMillion:
		return "per_million"
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// Label is used both as selector option text and inside chart titles.
func (m Metric) Label() string {
	switch m {
	case MetricTotal:
		return "Total"
	case MetricPerMillion:
		return "Per Million"
	}
	return m.String()
}

// OptionLabel is the selector option text.
func (m Metric) OptionLabel() string {
	if m == MetricTotal {
		return "Total Numbers"
	}
	return m.Label()
}

// ParseMetric maps "total", "per_million" or "per-million" onto a Metric.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "total":
		return MetricTotal, nil
	case "per_million", "per-million":
		return MetricPerMillion, nil
	}
	return MetricTotal, fmt.Errorf("metric %q: %w", s, ErrUnknownSelector)
}

func (m Metric) MarshalText() ([]byte, error) {
	switch m {
	case MetricTotal, MetricPerMillion:
		return []byte(m.String()), nil
	}
	return nil, fmt.Errorf("metric %d: %w", int(m), ErrUnknownSelector)
}

func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Selection is the pair of selector values a refresh cycle renders with.
type Selection struct {
	Chart  ChartType `json:"chart" toml:"chart"`
	Metric Metric    `json:"metric" toml:"metric"`
}

// DefaultSelection is a pie chart of the raw totals.
func DefaultSelection() Selection {
	return Selection{Chart: ChartPie, Metric: MetricTotal}
}
