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

// Package poller drives the dashboard's refresh cycles and holds the view
// currently on screen.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jaycherian/covid-dashboard/internal/core/model"
	"github.com/jaycherian/covid-dashboard/internal/core/view"
	"github.com/jaycherian/covid-dashboard/internal/metrics"
)

// Runner runs a single refresh cycle.
type Runner interface {
	Run(ctx context.Context, sel model.Selection) (view.ViewModel, error)
}

// Poller triggers a cycle on every tick of its interval and on every
// selection change. Each trigger takes the next generation number; a result
// is applied only if no higher generation has been applied before it, so a
// slow cycle can never overwrite a newer one. Every view carries the poller's
// epoch so a page can tell a restarted process from a stale response.
type Poller struct {
	runner   Runner
	interval time.Duration
	metrics  *metrics.DashboardMetrics
	tracer   trace.Tracer
	now      func() time.Time
	epoch    string

	generation atomic.Uint64

	mu        sync.RWMutex
	selection model.Selection
	latest    view.ViewModel
	applied   uint64
}

// NewPoller returns a poller serving the pending view for sel until the first
// cycle completes. m may be nil.
func NewPoller(runner Runner, interval time.Duration, sel model.Selection, m *metrics.DashboardMetrics) *Poller {
	epoch := uuid.NewString()
	pending := view.Pending(sel)
	pending.Epoch = epoch
	return &Poller{
		runner:    runner,
		interval:  interval,
		metrics:   m,
		tracer:    otel.Tracer("dashboard-poller"),
		now:       time.Now,
		epoch:     epoch,
		selection: sel,
		latest:    pending,
	}
}

// Epoch returns the identifier stamped on every view this poller serves.
func (p *Poller) Epoch() string {
	return p.epoch
}

// Selection returns the chart type and metric currently selected.
func (p *Poller) Selection() model.Selection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selection
}

// Latest returns the most recently applied view.
func (p *Poller) Latest() view.ViewModel {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// SetSelection stores sel and runs a cycle for it. The returned view is
// whatever is current once that cycle has finished.
func (p *Poller) SetSelection(ctx context.Context, sel model.Selection) view.ViewModel {
	p.mu.Lock()
	p.selection = sel
	p.mu.Unlock()

	slog.InfoContext(ctx, "selection changed", "chart", sel.Chart.String(), "metric", sel.Metric.String())
	p.Trigger(ctx)
	return p.Latest()
}

// Trigger runs one cycle with the current selection. It reports whether the
// result was applied.
func (p *Poller) Trigger(ctx context.Context) bool {
	gen := p.generation.Add(1)
	sel := p.Selection()

	traceCtx, span := p.tracer.Start(ctx, "refresh-cycle")
	defer span.End()
	span.SetAttributes(attribute.Int64("cycle.generation", int64(gen)))

	vm, err := p.runner.Run(traceCtx, sel)
	if err != nil {
		span.SetStatus(codes.Error, "refresh cycle failed")
	} else {
		span.SetStatus(codes.Ok, "refresh cycle completed")
	}
	if ctx.Err() != nil {
		// shutting down or the caller went away
		return false
	}
	vm.Generation = gen
	vm.Epoch = p.epoch
	p.metrics.RecordRefresh(vm.Degraded, p.now())
	return p.apply(ctx, vm)
}

func (p *Poller) apply(ctx context.Context, vm view.ViewModel) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if vm.Generation <= p.applied {
		slog.DebugContext(ctx, "discarding stale refresh result",
			"generation", vm.Generation, "applied", p.applied)
		p.metrics.RecordStale()
		return false
	}
	p.latest = vm
	p.applied = vm.Generation
	p.metrics.RecordApplied(vm.Generation)
	return true
}

// Run performs one cycle immediately and then one per interval until ctx is
// done. Ticks are handled serially; a tick that arrives while a cycle is in
// flight is dropped by the ticker.
func (p *Poller) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "starting refresh loop", "interval", p.interval.String())
	p.Trigger(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.Trigger(ctx)
		case <-ctx.Done():
			slog.InfoContext(ctx, "refresh loop stopped")
			return nil
		}
	}
}
