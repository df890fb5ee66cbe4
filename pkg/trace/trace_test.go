package trace

import (
	"context"
	"errors"
	"testing"

	"github.com/amoylab/nextcrm/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), &config.TracingConfig{}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	shutdown, err = InitTracing(context.Background(), nil, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_UnknownProtocol(t *testing.T) {
	_, err := InitTracing(context.Background(), &config.TracingConfig{
		Enabled:     true,
		ServiceName: "test",
		Protocol:    "udp",
	}, zap.NewNop())
	assert.Error(t, err)
}

func TestInitTracing_HTTP(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := InitTracing(context.Background(), &config.TracingConfig{
		Enabled:     true,
		ServiceName: "test",
		Protocol:    ProtocolHTTP,
		Endpoint:    "127.0.0.1:4318",
		Insecure:    true,
		SamplerRate: 0,
		Headers:     map[string]string{"x-key": "v"},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSpanScope(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	sc := Tracer("test").Start(context.Background(), "work")
	sc.WithAttrs(attribute.String("k", "v")).RecordError(nil)
	sc.RecordError(errors.New("boom")).End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "work", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("k", "v"))
}

func TestSpanScope_Nil(t *testing.T) {
	var sc *SpanScope
	assert.NotPanics(t, func() {
		sc.WithAttrs(attribute.Int("n", 1)).RecordError(errors.New("x")).End()
	})
}
