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

import "time"

// ExampleSnapshotJSON is a trimmed copy of an upstream response, small enough
// to reason about in tests and in the local fake upstream.
const ExampleSnapshotJSON = `{"updated":1700000000000,"cases":100,"todayCases":0,"deaths":10,` +
	`"recovered":50,"active":40,"casesPerOneMillion":1.0,"deathsPerOneMillion":0.1,` +
	`"recoveredPerOneMillion":0.5,"affectedCountries":231}`

// ExampleSnapshot returns the decoded form of ExampleSnapshotJSON.
func ExampleSnapshot(fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		Cases:               100,
		Deaths:              10,
		Recovered:           50,
		CasesPerMillion:     1.0,
		DeathsPerMillion:    0.1,
		RecoveredPerMillion: 0.5,
		FetchedAt:           fetchedAt,
	}
}
