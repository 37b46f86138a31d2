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

package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/covid-dashboard/internal/api"
	"github.com/jaycherian/covid-dashboard/internal/config"
	"github.com/jaycherian/covid-dashboard/internal/core/poller"
	"github.com/jaycherian/covid-dashboard/internal/core/services"
	"github.com/jaycherian/covid-dashboard/internal/core/workflow"
	"github.com/jaycherian/covid-dashboard/internal/metrics"
)

const serviceName = "covid-dashboard"

type StateManager struct {
	config *config.Config
	poller *poller.Poller
}

var state = &StateManager{}

// SetupOS points the config loader at ./configs and the local runtime unless
// the environment already says otherwise.
func SetupOS() (err error) {
	if _, ok := os.LookupEnv(config.EnvConfigFilePrefix); !ok {
		if err = os.Setenv(config.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if _, ok := os.LookupEnv(config.EnvConfigRuntime); !ok {
		err = os.Setenv(config.EnvConfigRuntime, config.DefaultRuntime)
	}
	return err
}

func GetConfig() *config.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup os: %v\n", err)
		}
		c, err := config.Load()
		if err != nil {
			log.Fatalf("failed to load configuration: %v\n", err)
		}
		state.config = c
	}
	return state.config
}

func InitState(_ context.Context) {
	c := GetConfig()
	client := services.NewProxyClient(c.Dashboard.ProxyBaseURL, c.Dashboard.ProxyTimeout.Duration)
	refresh := workflow.NewRefreshWorkflow(client, nil)
	state.poller = poller.NewPoller(
		refresh,
		c.Dashboard.RefreshInterval.Duration,
		c.DefaultSelection(),
		metrics.NewDashboardMetrics(),
	)
}

// NewRouter builds the dashboard's gin engine.
func NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(api.RequestID(), api.AccessLog())

	api.DashboardRouter(r, state.poller, state.config.Dashboard.ViewPollInterval.Duration)
	api.HealthRouter(r)
	return r
}
