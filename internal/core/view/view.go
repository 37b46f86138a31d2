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

// Package view turns a statistics snapshot, or the failure to get one, into
// the complete set of values the dashboard page displays. Rendering is a pure
// function of its inputs: no I/O, no clock, no shared state.
package view

import (
	"github.com/jaycherian/covid-dashboard/internal/core/model"
)

// TimestampLayout formats fetch times as YYYY-MM-DD HH:MM:SS.
const TimestampLayout = "2006-01-02 15:04:05"

// Fixed strings of the degraded and pending views.
const (
	NotAvailable         = "N/A"
	FetchFailedMessage   = "Failed to fetch data"
	LastUpdateFailed     = "Last update failed"
	CardUpdateFailed     = "Update failed"
	ErrorChartTitle      = "Error Loading Data"
	Loading              = "Loading..."
	lastUpdatedPrefix    = "Last updated: "
	cardUpdatedPrefix    = "Updated: "
	pendingTimestampText = "Waiting for first update"
)

// ViewModel is everything one refresh cycle produces. The page swaps all of it
// at once; a view is never partially updated.
type ViewModel struct {
	TotalCases       string `json:"totalCases"`
	TotalDeaths      string `json:"totalDeaths"`
	TotalRecovered   string `json:"totalRecovered"`
	Chart            Figure `json:"chart"`
	Table            Table  `json:"table"`
	LastUpdated      string `json:"lastUpdated"`
	CasesUpdated     string `json:"casesUpdated"`
	DeathsUpdated    string `json:"deathsUpdated"`
	RecoveredUpdated string `json:"recoveredUpdated"`

	Selection  model.Selection `json:"selection"`
	Degraded   bool            `json:"degraded"`
	Generation uint64          `json:"generation"`
	// Epoch identifies the process that produced the view. Generations are
	// only comparable within one epoch.
	Epoch string `json:"epoch"`
}

// Build renders s, or the degraded view when err is set or s is nil.
func Build(s *model.Snapshot, err error, sel model.Selection) ViewModel {
	if err != nil || s == nil {
		return Degraded(sel)
	}
	return Render(s, sel)
}

// Render produces the full view for a valid snapshot.
func Render(s *model.Snapshot, sel model.Selection) ViewModel {
	ts := s.FetchedAt.Format(TimestampLayout)
	return ViewModel{
		TotalCases:       FormatCount(s.Cases),
		TotalDeaths:      FormatCount(s.Deaths),
		TotalRecovered:   FormatCount(s.Recovered),
		Chart:            RenderChart(s, sel),
		Table:            RenderTable(s),
		LastUpdated:      lastUpdatedPrefix + ts,
		CasesUpdated:     cardUpdatedPrefix + ts,
		DeathsUpdated:    cardUpdatedPrefix + ts,
		RecoveredUpdated: cardUpdatedPrefix + ts,
		Selection:        sel,
	}
}

// Degraded is the fixed fallback bundle shown whenever a cycle fails.
func Degraded(sel model.Selection) ViewModel {
	return ViewModel{
		TotalCases:       NotAvailable,
		TotalDeaths:      NotAvailable,
		TotalRecovered:   NotAvailable,
		Chart:            ErrorChart(),
		Table:            AlertTable(FetchFailedMessage),
		LastUpdated:      LastUpdateFailed,
		CasesUpdated:     CardUpdateFailed,
		DeathsUpdated:    CardUpdateFailed,
		RecoveredUpdated: CardUpdateFailed,
		Selection:        sel,
		Degraded:         true,
	}
}

// Pending is served before the first cycle has completed.
func Pending(sel model.Selection) ViewModel {
	return ViewModel{
		TotalCases:       Loading,
		TotalDeaths:      Loading,
		TotalRecovered:   Loading,
		Chart:            emptyChart(Loading),
		Table:            Table{Header: TableHeader(), Rows: []Row{}},
		LastUpdated:      pendingTimestampText,
		CasesUpdated:     pendingTimestampText,
		DeathsUpdated:    pendingTimestampText,
		RecoveredUpdated: pendingTimestampText,
		Selection:        sel,
	}
}
