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

package telemetry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/jaycherian/covid-dashboard/internal/config"
	"github.com/jaycherian/covid-dashboard/internal/telemetry"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestLoggerUsesCloudLoggingKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := telemetry.NewLogger(&buf, slog.LevelInfo)

	logger.Warn("upstream slow", "duration_ms", 1200)
	line := decodeLine(t, &buf)

	assert.Equal(t, "WARNING", line["severity"])
	assert.Equal(t, "upstream slow", line["message"])
	assert.Contains(t, line, "timestamp")
	assert.NotContains(t, line, "msg")
	assert.NotContains(t, line, "logging.googleapis.com/trace")
}

func TestLoggerAddsTraceContext(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	var buf bytes.Buffer
	telemetry.NewLogger(&buf, slog.LevelInfo).With("component", "poller").InfoContext(ctx, "refresh cycle completed")
	line := decodeLine(t, &buf)

	assert.Equal(t, "INFO", line["severity"])
	assert.Equal(t, "poller", line["component"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", line["logging.googleapis.com/trace"])
	assert.Equal(t, "00f067aa0ba902b7", line["logging.googleapis.com/spanId"])
	assert.Equal(t, true, line["logging.googleapis.com/trace_sampled"])
}

func TestSetupOpenTelemetryWithoutExporter(t *testing.T) {
	c := config.NewConfig()
	shutdown, err := telemetry.SetupOpenTelemetry(context.Background(), c, "covid-dashboard-test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
