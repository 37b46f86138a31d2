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

package workflow_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/bridges/otelslog"

	"github.com/jaycherian/covid-dashboard/internal/core/cor"
	"github.com/jaycherian/covid-dashboard/internal/core/model"
	"github.com/jaycherian/covid-dashboard/internal/core/services"
	"github.com/jaycherian/covid-dashboard/internal/core/view"
	"github.com/jaycherian/covid-dashboard/internal/core/workflow"
	"github.com/jaycherian/covid-dashboard/internal/telemetry"
	test "github.com/jaycherian/covid-dashboard/internal/testutil"
)

const tName = "github.com/jaycherian/covid-dashboard/tests/workflow"

var logger = otelslog.NewLogger(tName)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := test.GetConfig()
	shutdown, err := telemetry.SetupOpenTelemetry(ctx, config, config.Application.Name)
	if err != nil {
		panic(err)
	}
	logger.Info("completed test setup")

	exitCode := m.Run()

	if err := shutdown(ctx); err != nil {
		logger.Error("failed to shutdown telemetry", "error", err)
	}
	os.Exit(exitCode)
}

type fakeFetcher struct {
	mu         sync.Mutex
	body       string
	err        error
	panicValue interface{}
	requestIDs []string
}

func (f *fakeFetcher) FetchStatistics(_ context.Context, requestID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestIDs = append(f.requestIDs, requestID)
	if f.panicValue != nil {
		panic(f.panicValue)
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

func TestRefreshWorkflowRendersView(t *testing.T) {
	fetcher := &fakeFetcher{body: test.GetTestStatisticsText()}
	wf := workflow.NewRefreshWorkflow(fetcher, test.FixedClock())
	sel := model.Selection{Chart: model.ChartLine, Metric: model.MetricPerMillion}

	vm, err := wf.Run(context.Background(), sel)
	require.NoError(t, err)
	assert.Equal(t, view.Render(model.ExampleSnapshot(test.FixedTime), sel), vm)
	require.Len(t, fetcher.requestIDs, 1)
	assert.NotEmpty(t, fetcher.requestIDs[0])
}

func TestRefreshWorkflowDegradesOnFailure(t *testing.T) {
	sel := model.DefaultSelection()
	cases := map[string]*fakeFetcher{
		"proxy unavailable": {err: services.ErrProxyUnavailable},
		"malformed body":    {body: test.GetTestNegativeStatisticsText()},
		"fetcher panics":    {panicValue: "connection pool exhausted"},
	}
	for name, fetcher := range cases {
		t.Run(name, func(t *testing.T) {
			wf := workflow.NewRefreshWorkflow(fetcher, test.FixedClock())
			vm, err := wf.Run(context.Background(), sel)
			assert.Error(t, err)
			assert.Equal(t, view.Degraded(sel), vm)
		})
	}
}

func TestRefreshWorkflowErrorKinds(t *testing.T) {
	wf := workflow.NewRefreshWorkflow(&fakeFetcher{body: `{"cases":1}`}, nil)
	_, err := wf.Run(context.Background(), model.DefaultSelection())
	assert.True(t, errors.Is(err, model.ErrMalformedSnapshot))

	wf = workflow.NewRefreshWorkflow(&fakeFetcher{panicValue: "boom"}, nil)
	_, err = wf.Run(context.Background(), model.DefaultSelection())
	assert.True(t, errors.Is(err, cor.ErrCommandPanic))
}
