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

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/covid-dashboard/internal/config"
	"github.com/jaycherian/covid-dashboard/internal/core/model"
	test "github.com/jaycherian/covid-dashboard/internal/testutil"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDefaults(t *testing.T) {
	c := config.NewConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, "https://disease.sh/v3/covid-19/all", c.Proxy.UpstreamURL)
	assert.Equal(t, "http://covid-dashboard.com", c.Proxy.AllowedOrigin)
	assert.Equal(t, 60*time.Second, c.Dashboard.RefreshInterval.Duration)
	assert.Equal(t, 10*time.Second, c.Dashboard.ProxyTimeout.Duration)
	assert.Equal(t, model.DefaultSelection(), c.DefaultSelection())
}

func TestLoadLayersRuntimeOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env.toml", `
[proxy]
upstream_timeout = "7s"

[dashboard]
refresh_interval = "30s"
default_chart = "line"
`)
	writeFile(t, dir, ".env.staging.toml", `
[dashboard]
refresh_interval = "15s"
default_metric = "per_million"
`)
	t.Setenv(config.EnvConfigFilePrefix, dir)
	t.Setenv(config.EnvConfigRuntime, "staging")

	c, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, c.Proxy.UpstreamTimeout.Duration)
	assert.Equal(t, 15*time.Second, c.Dashboard.RefreshInterval.Duration)
	assert.Equal(t, model.Selection{Chart: model.ChartLine, Metric: model.MetricPerMillion}, c.DefaultSelection())
	// untouched keys keep their defaults
	assert.Equal(t, ":8050", c.Dashboard.ListenAddr)
}

func TestLoadMissingFilesKeepsDefaults(t *testing.T) {
	t.Setenv(config.EnvConfigFilePrefix, t.TempDir())
	t.Setenv(config.EnvConfigRuntime, "nowhere")

	c, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig(), c)
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env.toml", `
[dashboard]
default_chart = "histogram"
`)
	t.Setenv(config.EnvConfigFilePrefix, dir)
	t.Setenv(config.EnvConfigRuntime, "test")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := config.NewConfig()
	c.Proxy.UpstreamURL = "disease.sh"
	c.Dashboard.RefreshInterval = config.Duration{}
	c.Telemetry.Exporter = config.ExporterGCP

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proxy.upstream_url")
	assert.Contains(t, err.Error(), "dashboard.refresh_interval")
	assert.Contains(t, err.Error(), "google_project_id")
}

func TestRepositoryTestConfig(t *testing.T) {
	c := test.GetConfig()
	assert.Equal(t, "covid-dashboard-test", c.Application.Name)
	assert.Equal(t, "http://127.0.0.1:8000", c.Dashboard.ProxyBaseURL)
	assert.Equal(t, time.Second, c.Dashboard.RefreshInterval.Duration)
}
