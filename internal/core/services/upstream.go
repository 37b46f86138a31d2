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
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// ErrUpstreamUnavailable covers every way the upstream call can fail: network
// errors, timeouts, non-2xx statuses and bodies that are not JSON. Callers do
// not distinguish between them.
var ErrUpstreamUnavailable = errors.New("upstream statistics API unavailable")

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 4 << 20

// StatisticsService fetches the global statistics from the upstream API.
// It is stateless and safe for concurrent use.
type StatisticsService struct {
	Client Doer   // Outbound client, possibly rate limited.
	URL    string // Fixed upstream endpoint.
}

// NewStatisticsService builds the service with an instrumented client using
// the given timeout and an optional outbound rate limit.
//
// Inputs:
//   - url: The full upstream statistics URL.
//   - timeout: The bound on one upstream call, including reading the body.
//   - requestsPerSecond: The outbound rate limit; zero or less disables it.
//
// Outputs:
//   - *StatisticsService: A service ready for concurrent use.
func NewStatisticsService(url string, timeout time.Duration, requestsPerSecond float64) *StatisticsService {
	return &StatisticsService{
		Client: NewQuotaAwareClient(newInstrumentedClient(timeout), requestsPerSecond),
		URL:    url,
	}
}

// FetchStatistics performs one GET against the upstream URL and returns the
// body unmodified. There is no retry and no caching.
//
// Inputs:
//   - ctx: Bounds the call together with the client timeout.
//
// Outputs:
//   - []byte: The upstream JSON body, byte for byte.
//   - error: An ErrUpstreamUnavailable on any failure.
func (s *StatisticsService) FetchStatistics(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := doJSON(s.Client, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return body, nil
}

// doJSON sends req and returns the body of a 2xx response that holds valid JSON.
func doJSON(client Doer, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, req.URL.Redacted())
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", maxBodyBytes)
	}
	if !jsoniter.ConfigCompatibleWithStandardLibrary.Valid(body) {
		return nil, errors.New("response body is not valid JSON")
	}
	return body, nil
}
