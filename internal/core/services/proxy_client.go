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

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrProxyUnavailable is returned when the dashboard cannot get a usable
// response from the proxy service.
var ErrProxyUnavailable = errors.New("statistics proxy unavailable")

// StatisticsPath is the proxy route that relays the upstream statistics.
const StatisticsPath = "/covid-data"

// RequestIDHeader correlates a dashboard refresh cycle with the proxy request it made.
const RequestIDHeader = "X-Request-ID"

// ProxyClient is the dashboard's client for the proxy service.
type ProxyClient struct {
	Client  Doer
	BaseURL string // Injected at startup; the path is appended to it.
}

// NewProxyClient is the constructor for ProxyClient.
//
// Inputs:
//   - baseURL: The proxy's scheme and host, with or without a trailing slash.
//   - timeout: The bound on one request to the proxy.
//
// Outputs:
//   - *ProxyClient: A client whose requests carry the trace context.
func NewProxyClient(baseURL string, timeout time.Duration) *ProxyClient {
	return &ProxyClient{
		Client:  newInstrumentedClient(timeout),
		BaseURL: baseURL,
	}
}

// Endpoint is the full URL of the statistics route.
func (p *ProxyClient) Endpoint() string {
	return strings.TrimRight(p.BaseURL, "/") + StatisticsPath
}

// FetchStatistics GETs the statistics JSON from the proxy. Any failure,
// including a 500 relayed from the proxy, is an ErrProxyUnavailable.
//
// Inputs:
//   - ctx: Bounds the call together with the client timeout.
//   - requestID: Sent as the X-Request-ID header; omitted when empty.
//
// Outputs:
//   - []byte: The statistics JSON relayed by the proxy.
//   - error: An ErrProxyUnavailable on any failure.
func (p *ProxyClient) FetchStatistics(ctx context.Context, requestID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProxyUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if requestID != "" {
		req.Header.Set(RequestIDHeader, requestID)
	}

	body, err := doJSON(p.Client, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProxyUnavailable, err)
	}
	return body, nil
}
