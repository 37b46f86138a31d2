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

// Package api holds the gin routes of the proxy and the dashboard.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/covid-dashboard/internal/metrics"
)

// FetchFailedDetail is the body detail of every failed /covid-data call.
const FetchFailedDetail = "Failed to fetch COVID data"

// StatisticsSource returns the raw upstream statistics document.
type StatisticsSource interface {
	FetchStatistics(ctx context.Context) ([]byte, error)
}

// StatisticsRouter registers GET /covid-data. The upstream body is relayed
// unchanged; any failure becomes a 500 with a fixed detail message.
func StatisticsRouter(r gin.IRoutes, source StatisticsSource, m *metrics.ProxyMetrics) {
	r.GET("/covid-data", func(c *gin.Context) {
		start := time.Now()
		body, err := source.FetchStatistics(c.Request.Context())
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "failed to fetch statistics",
				"request_id", c.GetString(RequestIDKey), "error", err)
			m.RecordUpstream(strconv.Itoa(http.StatusInternalServerError), time.Since(start), false)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": FetchFailedDetail})
			return
		}
		m.RecordUpstream(strconv.Itoa(http.StatusOK), time.Since(start), true)
		c.Data(http.StatusOK, "application/json", body)
	})
}
