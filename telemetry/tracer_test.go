package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracerDisabledIsNoop(t *testing.T) {
	tr, err := NewTracer(TracingConfig{}, "quarkxr", "dev")
	require.NoError(t, err)

	_, span := tr.Tracer().Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestTracerSamplesSpans(t *testing.T) {
	tr, err := NewTracer(TracingConfig{Enabled: true, Exporter: "none", SamplingRate: 1}, "quarkxr", "dev")
	require.NoError(t, err)
	defer tr.Shutdown(context.Background())

	_, span := tr.Tracer().Start(context.Background(), "pass")
	assert.True(t, span.SpanContext().IsSampled())
	span.End()
}

func TestTracerRejectsUnknownExporter(t *testing.T) {
	_, err := NewTracer(TracingConfig{Enabled: true, Exporter: "jaeger"}, "quarkxr", "dev")
	assert.Error(t, err)
}
