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

// Package metrics exposes Prometheus collectors for the proxy and the
// dashboard. Collectors are registered once per process on the default
// registry and served by promhttp on /metrics.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ProxyMetrics instruments the statistics proxy.
type ProxyMetrics struct {
	requestsTotal    *prometheus.CounterVec
	upstreamDuration prometheus.Histogram
	upstreamHealthy  prometheus.Gauge
}

// DashboardMetrics instruments the refresh cycle.
type DashboardMetrics struct {
	refreshTotal      *prometheus.CounterVec
	staleResults      prometheus.Counter
	lastSuccess       prometheus.Gauge
	appliedGeneration prometheus.Gauge
}

var (
	proxyOnce     sync.Once
	proxyInst     *ProxyMetrics
	dashboardOnce sync.Once
	dashboardInst *DashboardMetrics
)

// NewProxyMetrics returns the process-wide proxy collectors.
func NewProxyMetrics() *ProxyMetrics {
	proxyOnce.Do(func() {
		proxyInst = &ProxyMetrics{
			requestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "covid_proxy_requests_total",
					Help: "Statistics requests served, by response status",
				},
				[]string{"status"},
			),
			upstreamDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "covid_proxy_upstream_duration_seconds",
					Help:    "Duration of the outbound call to the statistics API",
					Buckets: prometheus.DefBuckets,
				},
			),
			upstreamHealthy: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "covid_proxy_upstream_healthy",
					Help: "Outcome of the last upstream call (1 = success, 0 = failure)",
				},
			),
		}
	})
	return proxyInst
}

// RecordUpstream records one outbound call and the status returned to the caller.
func (m *ProxyMetrics) RecordUpstream(status string, duration time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(status).Inc()
	m.upstreamDuration.Observe(duration.Seconds())
	if ok {
		m.upstreamHealthy.Set(1)
	} else {
		m.upstreamHealthy.Set(0)
	}
}

// NewDashboardMetrics returns the process-wide dashboard collectors.
func NewDashboardMetrics() *DashboardMetrics {
	dashboardOnce.Do(func() {
		dashboardInst = &DashboardMetrics{
			refreshTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "covid_dashboard_refresh_total",
					Help: "Refresh cycles completed, by result",
				},
				[]string{"result"},
			),
			staleResults: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "covid_dashboard_stale_results_total",
					Help: "Cycle results discarded because a newer generation was already applied",
				},
			),
			lastSuccess: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "covid_dashboard_last_success_timestamp_seconds",
					Help: "Unix time of the last successful refresh cycle",
				},
			),
			appliedGeneration: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "covid_dashboard_applied_generation",
					Help: "Generation of the view currently served",
				},
			),
		}
	})
	return dashboardInst
}

// RecordRefresh records the outcome of one cycle.
func (m *DashboardMetrics) RecordRefresh(degraded bool, at time.Time) {
	if m == nil {
		return
	}
	if degraded {
		m.refreshTotal.WithLabelValues("degraded").Inc()
		return
	}
	m.refreshTotal.WithLabelValues("success").Inc()
	m.lastSuccess.Set(float64(at.Unix()))
}

// RecordApplied notes which generation is now on screen.
func (m *DashboardMetrics) RecordApplied(generation uint64) {
	if m == nil {
		return
	}
	m.appliedGeneration.Set(float64(generation))
}

// RecordStale counts a discarded out-of-order result.
func (m *DashboardMetrics) RecordStale() {
	if m == nil {
		return
	}
	m.staleResults.Inc()
}
