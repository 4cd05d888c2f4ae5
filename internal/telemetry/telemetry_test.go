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
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/cloud"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/telemetry"
)

func TestLoggerUsesCloudLoggingKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := telemetry.NewLogger(&buf, slog.LevelDebug)
	logger.Warn("provider skipped", "provider", "gpt")

	rec := gjson.Parse(buf.String())
	assert.Equal(t, "WARNING", rec.Get("severity").String())
	assert.Equal(t, "provider skipped", rec.Get("message").String())
	assert.True(t, rec.Get("timestamp").Exists())
	assert.Equal(t, "gpt", rec.Get("provider").String())
}

func TestLoggerAddsTraceContext(t *testing.T) {
	shutdown, err := telemetry.SetupOpenTelemetry(context.Background(), cloud.NewConfig())
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	ctx, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	var buf bytes.Buffer
	telemetry.NewLogger(&buf, slog.LevelInfo).With("component", "x").InfoContext(ctx, "scored")

	rec := gjson.Parse(buf.String())
	assert.Equal(t, span.SpanContext().TraceID().String(), rec.Get("logging\\.googleapis\\.com/trace").String())
	assert.Equal(t, "x", rec.Get("component").String())
}

func TestLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	telemetry.NewLogger(&buf, telemetry.ParseLevel("warn")).Info("hidden")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, telemetry.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, telemetry.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, telemetry.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, telemetry.ParseLevel("verbose"))
}
