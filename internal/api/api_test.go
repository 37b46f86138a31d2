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

package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/covid-dashboard/internal/api"
	"github.com/jaycherian/covid-dashboard/internal/core/model"
	"github.com/jaycherian/covid-dashboard/internal/core/poller"
	"github.com/jaycherian/covid-dashboard/internal/core/services"
	"github.com/jaycherian/covid-dashboard/internal/core/view"
	"github.com/jaycherian/covid-dashboard/internal/core/workflow"
	"github.com/jaycherian/covid-dashboard/internal/metrics"
	test "github.com/jaycherian/covid-dashboard/internal/testutil"
)

const allowedOrigin = "http://covid-dashboard.com"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeSource struct {
	body []byte
	err  error
}

func (f fakeSource) FetchStatistics(context.Context) ([]byte, error) {
	return f.body, f.err
}

func proxyRouter(source api.StatisticsSource) *gin.Engine {
	r := gin.New()
	r.Use(api.RequestID(), api.CORS(allowedOrigin))
	api.StatisticsRouter(r, source, metrics.NewProxyMetrics())
	api.HealthRouter(r)
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCovidDataRelaysBodyVerbatim(t *testing.T) {
	body := `{"cases": 100, "deaths":10,"recovered":50, "extra":{"kept":true}}`
	r := proxyRouter(fakeSource{body: []byte(body)})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/covid-data", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get(api.RequestIDHeader))
}

func TestCovidDataFailureDetail(t *testing.T) {
	r := proxyRouter(fakeSource{err: services.ErrUpstreamUnavailable})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/covid-data", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail": "Failed to fetch COVID data"}`, w.Body.String())
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := proxyRouter(fakeSource{body: []byte(`{}`)})
	req := httptest.NewRequest(http.MethodGet, "/covid-data", nil)
	req.Header.Set(api.RequestIDHeader, "abc-123")

	w := serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(api.RequestIDHeader))
}

func TestCORS(t *testing.T) {
	r := proxyRouter(fakeSource{body: []byte(`{}`)})

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/covid-data", nil)
		req.Header.Set("Origin", allowedOrigin)
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, allowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/covid-data", nil)
		req.Header.Set("Origin", allowedOrigin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := serve(r, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, allowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/covid-data", nil)
		req.Header.Set("Origin", "http://elsewhere.example")
		w := serve(r, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("no origin", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/covid-data", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestHealthAndMetrics(t *testing.T) {
	r := proxyRouter(fakeSource{body: []byte(`{}`)})
	serve(r, httptest.NewRequest(http.MethodGet, "/covid-data", nil))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "covid_proxy_requests_total")
	assert.Contains(t, w.Body.String(), "covid_proxy_upstream_healthy")
}

type fakeDashboard struct {
	mu        sync.Mutex
	selection model.Selection
	latest    view.ViewModel
}

func (f *fakeDashboard) Latest() view.ViewModel {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest
}

func (f *fakeDashboard) Selection() model.Selection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selection
}

func (f *fakeDashboard) SetSelection(_ context.Context, sel model.Selection) view.ViewModel {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selection = sel
	f.latest = view.Render(model.ExampleSnapshot(test.FixedTime), sel)
	f.latest.Generation++
	return f.latest
}

func dashboardRouter(state api.DashboardState) *gin.Engine {
	r := gin.New()
	api.DashboardRouter(r, state, 5*time.Second)
	return r
}

func TestDashboardPage(t *testing.T) {
	state := &fakeDashboard{selection: model.Selection{Chart: model.ChartLine, Metric: model.MetricPerMillion}}
	w := serve(dashboardRouter(state), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	page := w.Body.String()
	assert.Equal(t, "COVID-19 Dashboard", api.DashboardTitle)
	assert.Contains(t, page, "<title>"+api.DashboardTitle+"</title>")
	assert.Contains(t, page, `<option value="line" selected>Line Chart</option>`)
	assert.Contains(t, page, `<option value="per_million" selected>Per Million</option>`)
	assert.Contains(t, page, `<option value="pie">Pie Chart</option>`)
	assert.Contains(t, page, "Data Source: disease.sh API")
	assert.Contains(t, page, "5000")
	assert.Contains(t, page, "view.epoch !== epoch")
}

func TestViewEndpoint(t *testing.T) {
	state := &fakeDashboard{latest: view.Degraded(model.DefaultSelection())}
	state.latest.Generation = 7
	state.latest.Epoch = "epoch-1"

	w := serve(dashboardRouter(state), httptest.NewRequest(http.MethodGet, "/api/view", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		TotalCases string `json:"totalCases"`
		Generation uint64 `json:"generation"`
		Epoch      string `json:"epoch"`
		Degraded   bool   `json:"degraded"`
		Table      struct {
			Alert struct {
				Message string `json:"message"`
			} `json:"alert"`
		} `json:"table"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "N/A", got.TotalCases)
	assert.Equal(t, uint64(7), got.Generation)
	assert.Equal(t, "epoch-1", got.Epoch)
	assert.True(t, got.Degraded)
	assert.Equal(t, "Failed to fetch data", got.Table.Alert.Message)
}

func postSelection(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/selection", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return serve(r, req)
}

func TestSelectionEndpoint(t *testing.T) {
	state := &fakeDashboard{selection: model.DefaultSelection()}
	r := dashboardRouter(state)

	w := postSelection(r, `{"chart":"3d"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.Selection{Chart: model.Chart3DBar, Metric: model.MetricTotal}, state.Selection())
	assert.Contains(t, w.Body.String(), "COVID-19 Total Statistics (3D)")

	w = postSelection(r, `{"metric":"per_million"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.Selection{Chart: model.Chart3DBar, Metric: model.MetricPerMillion}, state.Selection())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/selection", nil))
	assert.JSONEq(t, `{"chart":"3d","metric":"per_million"}`, w.Body.String())
}

func TestSelectionEndpointRejectsUnknownValues(t *testing.T) {
	state := &fakeDashboard{selection: model.DefaultSelection()}
	r := dashboardRouter(state)

	for _, body := range []string{`{"chart":"radar"}`, `{"metric":"per_capita"}`, `not json`} {
		w := postSelection(r, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.Equal(t, model.DefaultSelection(), state.Selection())
}

// The dashboard pulls through a real proxy router from a fake upstream.
func TestDashboardThroughProxy(t *testing.T) {
	upstream := test.NewFakeServer(t, http.StatusOK, test.GetTestStatisticsText())
	proxy := httptest.NewServer(proxyRouter(services.NewStatisticsService(upstream.URL, time.Second, 0)))
	defer proxy.Close()

	refresh := workflow.NewRefreshWorkflow(services.NewProxyClient(proxy.URL, time.Second), test.FixedClock())
	p := poller.NewPoller(refresh, time.Minute, model.DefaultSelection(), metrics.NewDashboardMetrics())
	require.True(t, p.Trigger(context.Background()))

	dash := httptest.NewServer(dashboardRouter(p))
	defer dash.Close()

	resp, err := http.Get(dash.URL + "/api/view")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got view.ViewModel
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "100", got.TotalCases)
	assert.Equal(t, "Last updated: 2024-03-05 14:07:09", got.LastUpdated)
	assert.Len(t, got.Table.Rows, 3)

	upstream.Respond(http.StatusBadGateway, `{}`)
	require.True(t, p.Trigger(context.Background()))
	assert.True(t, p.Latest().Degraded)
	assert.Equal(t, view.NotAvailable, p.Latest().TotalDeaths)
}
