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

// Package config defines the application configuration, loaded from layered
// TOML files. Both binaries read the same files; each one only looks at the
// sections it needs.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jaycherian/covid-dashboard/internal/core/model"
)

// Duration wraps time.Duration so it can be written as "60s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Telemetry controls logging and OpenTelemetry export.
type Telemetry struct {
	Exporter string `toml:"exporter"` // "none" keeps providers in-process, "gcp" exports to Cloud Trace and Cloud Monitoring.
	LogFile  string `toml:"log_file"` // Optional file that receives a copy of every log line.
}

// Proxy configures the statistics proxy service.
type Proxy struct {
	ListenAddr        string   `toml:"listen_addr"`
	UpstreamURL       string   `toml:"upstream_url"`        // Fixed upstream statistics endpoint.
	AllowedOrigin     string   `toml:"allowed_origin"`      // The single origin allowed to call the proxy cross-origin.
	UpstreamTimeout   Duration `toml:"upstream_timeout"`    // Client timeout for the outbound call.
	UpstreamRateLimit float64  `toml:"upstream_rate_limit"` // Outbound requests per second, 0 disables limiting.
}

// Dashboard configures the dashboard process and its refresh cycle.
type Dashboard struct {
	ListenAddr       string          `toml:"listen_addr"`
	ProxyBaseURL     string          `toml:"proxy_base_url"` // Base URL of the proxy service, injected rather than hard coded.
	ProxyTimeout     Duration        `toml:"proxy_timeout"`
	RefreshInterval  Duration        `toml:"refresh_interval"`   // Timer trigger period.
	ViewPollInterval Duration        `toml:"view_poll_interval"` // How often the page pulls the latest view.
	DefaultChart     model.ChartType `toml:"default_chart"`
	DefaultMetric    model.Metric    `toml:"default_metric"`
}

// Config is the root of the configuration tree.
type Config struct {
	Application struct {
		Name            string `toml:"name"`
		GoogleProjectId string `toml:"google_project_id"` // Only needed when Telemetry.Exporter is "gcp".
	} `toml:"application"`
	Telemetry Telemetry `toml:"telemetry"`
	Proxy     Proxy     `toml:"proxy"`
	Dashboard Dashboard `toml:"dashboard"`
}

// NewConfig returns a Config populated with the defaults. Values found in the
// TOML files overwrite these.
func NewConfig() *Config {
	c := &Config{}
	c.Application.Name = "covid-dashboard"
	c.Telemetry = Telemetry{Exporter: ExporterNone}
	c.Proxy = Proxy{
		ListenAddr:      ":8000",
		UpstreamURL:     "https://disease.sh/v3/covid-19/all",
		AllowedOrigin:   "http://covid-dashboard.com",
		UpstreamTimeout: Duration{5 * time.Second},
	}
	c.Dashboard = Dashboard{
		ListenAddr:       ":8050",
		ProxyBaseURL:     "http://localhost:8000",
		ProxyTimeout:     Duration{10 * time.Second},
		RefreshInterval:  Duration{60 * time.Second},
		ViewPollInterval: Duration{5 * time.Second},
		DefaultChart:     model.ChartPie,
		DefaultMetric:    model.MetricTotal,
	}
	return c
}

const (
	ExporterNone = "none"
	ExporterGCP  = "gcp"
)

// DefaultSelection is the selector state a freshly started dashboard renders.
func (c *Config) DefaultSelection() model.Selection {
	return model.Selection{Chart: c.Dashboard.DefaultChart, Metric: c.Dashboard.DefaultMetric}
}

// Validate reports every problem found in the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Telemetry.Exporter {
	case ExporterNone, "":
	case ExporterGCP:
		if c.Application.GoogleProjectId == "" {
			errs = append(errs, errors.New("telemetry.exporter is gcp but application.google_project_id is empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter: unknown exporter %q", c.Telemetry.Exporter))
	}
	errs = append(errs,
		checkURL("proxy.upstream_url", c.Proxy.UpstreamURL),
		checkURL("proxy.allowed_origin", c.Proxy.AllowedOrigin),
		checkURL("dashboard.proxy_base_url", c.Dashboard.ProxyBaseURL),
		checkPositive("proxy.upstream_timeout", c.Proxy.UpstreamTimeout),
		checkPositive("dashboard.proxy_timeout", c.Dashboard.ProxyTimeout),
		checkPositive("dashboard.refresh_interval", c.Dashboard.RefreshInterval),
		checkPositive("dashboard.view_poll_interval", c.Dashboard.ViewPollInterval),
	)
	if c.Proxy.UpstreamRateLimit < 0 {
		errs = append(errs, errors.New("proxy.upstream_rate_limit must not be negative"))
	}
	if c.Proxy.ListenAddr == "" || c.Dashboard.ListenAddr == "" {
		errs = append(errs, errors.New("listen_addr must not be empty"))
	}
	return errors.Join(errs...)
}

func checkURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%s: %q is not an absolute http(s) URL", key, raw)
	}
	return nil
}

func checkPositive(key string, d Duration) error {
	if d.Duration <= 0 {
		return fmt.Errorf("%s must be positive, got %s", key, d.Duration)
	}
	return nil
}
