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

// Package workflow assembles commands into the refresh cycle.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jaycherian/covid-dashboard/internal/core/commands"
	"github.com/jaycherian/covid-dashboard/internal/core/cor"
	"github.com/jaycherian/covid-dashboard/internal/core/model"
	"github.com/jaycherian/covid-dashboard/internal/core/view"
)

// ErrMissingView means the chain finished cleanly without leaving a view behind.
var ErrMissingView = errors.New("refresh cycle produced no view")

// RefreshWorkflow is one fetch, decode and render pass. It is safe to run
// concurrently; each Run gets its own cor.Context.
type RefreshWorkflow struct {
	cor.BaseCommand
	chain cor.Chain
}

// NewRefreshWorkflow wires the three commands in order. now stamps fetch
// times and may be nil.
func NewRefreshWorkflow(fetcher commands.StatisticsFetcher, now func() time.Time) *RefreshWorkflow {
	out := &RefreshWorkflow{BaseCommand: *cor.NewBaseCommand("refresh-workflow")}
	out.chain = cor.NewBaseChain(out.GetName()).
		AddCommand(commands.NewFetchStatistics("fetch-statistics", fetcher, now)).
		AddCommand(commands.NewDecodeSnapshot("decode-snapshot")).
		AddCommand(commands.NewRenderView("render-view"))
	return out
}

// IsExecutable only needs the selection the cycle was triggered with.
func (w *RefreshWorkflow) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(commands.SelectionParam) != nil
}

func (w *RefreshWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Run executes one cycle and always returns a complete view: the rendered
// one, or the degraded bundle if any step failed. The error, if any, is
// returned alongside for logging and metrics.
func (w *RefreshWorkflow) Run(ctx context.Context, sel model.Selection) (view.ViewModel, error) {
	cycleID := uuid.NewString()
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("cycle.id", cycleID),
		attribute.String("selection.chart", sel.Chart.String()),
		attribute.String("selection.metric", sel.Metric.String()),
	)

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(commands.SelectionParam, sel)
	chainCtx.Add(commands.CycleIDParam, cycleID)
	chainCtx.Add(cor.CtxIn, sel)

	w.Execute(chainCtx)

	if err := chainCtx.Err(); err != nil {
		slog.WarnContext(ctx, "refresh cycle failed", "cycle_id", cycleID, "error", err)
		return view.Degraded(sel), err
	}
	out, ok := chainCtx.Get(commands.ViewParam).(view.ViewModel)
	if !ok {
		slog.ErrorContext(ctx, "refresh cycle produced no view", "cycle_id", cycleID)
		return view.Degraded(sel), ErrMissingView
	}
	slog.DebugContext(ctx, "refresh cycle completed", "cycle_id", cycleID)
	return out, nil
}
