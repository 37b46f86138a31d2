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

package api

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/covid-dashboard/internal/core/model"
	"github.com/jaycherian/covid-dashboard/internal/core/view"
)

//go:embed assets/index.html
var assets embed.FS

// DashboardTitle is shown in the page heading and the browser tab.
const DashboardTitle = "COVID-19 Dashboard"

// DashboardState is the view holder behind the dashboard routes.
type DashboardState interface {
	Latest() view.ViewModel
	Selection() model.Selection
	SetSelection(ctx context.Context, sel model.Selection) view.ViewModel
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Title              string
	ChartOptions       []option
	MetricOptions      []option
	PollIntervalMillis int64
}

type selectionRequest struct {
	Chart  string `json:"chart"`
	Metric string `json:"metric"`
}

// DashboardRouter registers the page, the view endpoint and the selection
// endpoint on r. The page polls /api/view every pollInterval.
func DashboardRouter(r *gin.Engine, state DashboardState, pollInterval time.Duration) {
	r.SetHTMLTemplate(template.Must(template.ParseFS(assets, "assets/index.html")))

	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", newPageData(state.Selection(), pollInterval))
	})

	api := r.Group("/api")
	{
		api.GET("/view", func(c *gin.Context) {
			c.JSON(http.StatusOK, state.Latest())
		})

		api.GET("/selection", func(c *gin.Context) {
			c.JSON(http.StatusOK, state.Selection())
		})

		api.POST("/selection", func(c *gin.Context) {
			var req selectionRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
				return
			}
			sel, err := mergeSelection(state.Selection(), req)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
				return
			}
			// the cycle outlives a client that hangs up mid-request
			vm := state.SetSelection(context.WithoutCancel(c.Request.Context()), sel)
			c.JSON(http.StatusOK, vm)
		})
	}
}

// mergeSelection applies the non-empty fields of req on top of current.
func mergeSelection(current model.Selection, req selectionRequest) (model.Selection, error) {
	out := current
	if req.Chart != "" {
		chart, err := model.ParseChartType(req.Chart)
		if err != nil {
			return current, err
		}
		out.Chart = chart
	}
	if req.Metric != "" {
		metric, err := model.ParseMetric(req.Metric)
		if err != nil {
			return current, err
		}
		out.Metric = metric
	}
	return out, nil
}

func newPageData(sel model.Selection, pollInterval time.Duration) pageData {
	data := pageData{
		Title:              DashboardTitle,
		PollIntervalMillis: pollInterval.Milliseconds(),
	}
	for _, c := range model.AllChartTypes() {
		data.ChartOptions = append(data.ChartOptions, option{Value: c.String(), Label: c.Label(), Selected: c == sel.Chart})
	}
	for _, m := range model.AllMetrics() {
		data.MetricOptions = append(data.MetricOptions, option{Value: m.String(), Label: m.OptionLabel(), Selected: m == sel.Metric})
	}
	return data
}
