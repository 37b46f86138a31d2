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

package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/jaycherian/covid-dashboard/internal/core/cor"
)

// StatisticsFetcher is implemented by services.ProxyClient.
type StatisticsFetcher interface {
	FetchStatistics(ctx context.Context, requestID string) ([]byte, error)
}

// FetchStatistics is the first step of the cycle: one GET to the proxy.
type FetchStatistics struct {
	cor.BaseCommand
	fetcher StatisticsFetcher
	now     func() time.Time
}

// NewFetchStatistics builds the command. now stamps the fetch time and
// defaults to time.Now.
func NewFetchStatistics(name string, fetcher StatisticsFetcher, now func() time.Time) *FetchStatistics {
	if now == nil {
		now = time.Now
	}
	return &FetchStatistics{BaseCommand: *cor.NewBaseCommand(name), fetcher: fetcher, now: now}
}

func (c *FetchStatistics) Execute(context cor.Context) {
	cycleID, _ := context.Get(CycleIDParam).(string)

	body, err := c.fetcher.FetchStatistics(context.GetContext(), cycleID)
	if err != nil {
		slog.WarnContext(context.GetContext(), "failed to fetch statistics", "cycle_id", cycleID, "error", err)
		c.Fail(context, err)
		return
	}
	c.Succeed(context, &FetchedPayload{Body: body, FetchedAt: c.now()})
}
