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

package view

import "github.com/jaycherian/covid-dashboard/internal/core/model"

// Table is the detail table. A healthy table has a header and exactly three
// rows; a failed one has only an Alert.
type Table struct {
	Header []string `json:"header,omitempty"`
	Rows   []Row    `json:"rows"`
	Alert  *Alert   `json:"alert,omitempty"`
}

// Row is one metric: name, grouped total, per-million rate.
type Row struct {
	Metric     string `json:"metric"`
	Total      string `json:"total"`
	PerMillion string `json:"perMillion"`
}

// Alert is a single visible message shown in place of the table.
type Alert struct {
	Message string `json:"message"`
	Color   string `json:"color"`
}

func TableHeader() []string {
	return []string{"Metric", "Total", "Per Million"}
}

// RenderTable builds the rows in the fixed order Cases, Deaths, Recovered.
func RenderTable(s *model.Snapshot) Table {
	totals := []int64{s.Cases, s.Deaths, s.Recovered}
	rates := s.PerMillion()
	rows := make([]Row, len(model.MetricNames))
	for i, name := range model.MetricNames {
		rows[i] = Row{Metric: name, Total: FormatCount(totals[i]), PerMillion: FormatRate(rates[i])}
	}
	return Table{Header: TableHeader(), Rows: rows}
}

// AlertTable replaces the whole table with one danger alert.
func AlertTable(message string) Table {
	return Table{Rows: []Row{}, Alert: &Alert{Message: message, Color: "danger"}}
}
