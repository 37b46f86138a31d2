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

// Package services holds the two HTTP clients of the system: the proxy's
// client for the upstream statistics API and the dashboard's client for the
// proxy. This file decorates an HTTP client with an outbound rate limit.
package services

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// Doer is the subset of *http.Client the services depend on.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// QuotaAwareClient wraps a Doer and makes every request wait for a token from
// the limiter first. The wait is bounded by the request context.
type QuotaAwareClient struct {
	Wrapped   Doer
	RateLimit *rate.Limiter
}

// NewQuotaAwareClient returns wrapped unchanged when requestsPerSecond is not
// positive. Otherwise the burst is the per-second rate rounded up, at least 1.
//
// Inputs:
//   - wrapped: The client that actually sends requests.
//   - requestsPerSecond: The sustained outbound rate.
//
// Outputs:
//   - Doer: wrapped itself, or a *QuotaAwareClient around it.
func NewQuotaAwareClient(wrapped Doer, requestsPerSecond float64) Doer {
	if requestsPerSecond <= 0 {
		return wrapped
	}
	burst := int(math.Ceil(requestsPerSecond))
	if burst < 1 {
		burst = 1
	}
	return &QuotaAwareClient{
		Wrapped:   wrapped,
		RateLimit: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Do waits for a limiter token and then sends req. A context that ends while
// waiting fails the request without sending it.
func (q *QuotaAwareClient) Do(req *http.Request) (*http.Response, error) {
	if err := q.RateLimit.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return q.Wrapped.Do(req)
}

// newInstrumentedClient returns an http.Client whose transport emits client
// spans and propagates the trace context downstream.
func newInstrumentedClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
