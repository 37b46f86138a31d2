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

// Package commands provides the concrete steps of the refresh cycle. Each
// command reads its input from the shared cor.Context, does one thing, and
// leaves its output for the next command.
package commands

import (
	"time"

	"github.com/jaycherian/covid-dashboard/internal/core/model"
)

// Well-known context keys shared across the refresh cycle.
const (
	SelectionParam = "__SELECTION__" // model.Selection the cycle renders with.
	CycleIDParam   = "__CYCLE_ID__"  // string id sent to the proxy as X-Request-ID.
	ViewParam      = "__VIEW__"      // view.ViewModel produced by RenderView.
)

// FetchedPayload is the raw proxy response together with the moment it arrived.
type FetchedPayload struct {
	Body      []byte
	FetchedAt time.Time
}

// selectionFrom returns the cycle's selection, or the default one.
func selectionFrom(get func(string) interface{}) model.Selection {
	if sel, ok := get(SelectionParam).(model.Selection); ok {
		return sel
	}
	return model.DefaultSelection()
}
