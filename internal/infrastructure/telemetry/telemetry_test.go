package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/mrops-br/product-catalog-api/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func testOTLPConfig() *config.OTLPConfig {
	return &config.OTLPConfig{ServiceName: "products-api-test", Environment: "test"}
}

func TestLogger_InjectsTraceAndRoute(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, testOTLPConfig(), slog.LevelInfo)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	ctx = WithHTTPRoute(ctx, "/products/{id}")
	logger.InfoContext(ctx, "hello")
	span.End()

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "products-api-test", record["service.name"])
	assert.Equal(t, "test", record["environment"])
	assert.Equal(t, span.SpanContext().TraceID().String(), record["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), record["span_id"])
	assert.Equal(t, "/products/{id}", record["http.route"])
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, testOTLPConfig(), slog.LevelWarn)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestLogger_WithAttrsAndGroupKeepTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, testOTLPConfig(), slog.LevelInfo).
		With(slog.String("component", "repository")).
		WithGroup("request")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	logger.InfoContext(ctx, "grouped", slog.String("id", "42"))
	span.End()

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "repository", record["component"])

	group, ok := record["request"].(map[string]any)
	require.True(t, ok, "expected request group in %s", buf.String())
	assert.Equal(t, "42", group["id"])
	assert.Equal(t, span.SpanContext().TraceID().String(), group["trace_id"])
}

func TestNoOpTelemetry_ServesPrometheusMetrics(t *testing.T) {
	telem, err := NewNoOpTelemetry(testOTLPConfig(), slog.LevelError)
	require.NoError(t, err)
	defer func() { _ = telem.Shutdown(context.Background()) }()

	counter, err := telem.MeterProvider.Meter("test").Int64Counter("products.created.total")
	require.NoError(t, err)
	counter.Add(context.Background(), 2)

	families, err := telem.Registry.Gather()
	require.NoError(t, err)

	found := false
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "products_created") {
			found = true
		}
	}
	assert.True(t, found, "expected products_created metric family")
}
