package observability

import (
	"context"
	"testing"

	"github.com/incognito-chat/backend/internal/config"
	"github.com/incognito-chat/backend/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitMetricsWithoutEndpoint(t *testing.T) {
	prev := otel.GetMeterProvider()
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	mp, err := InitMetrics(context.Background(), config.TelemetryConfig{ServiceName: "incognito-auth"}, "test", logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, mp)
	assert.Same(t, mp, otel.GetMeterProvider())
	require.NoError(t, mp.Shutdown(context.Background()))
}

func TestInitMetricsWithEndpoint(t *testing.T) {
	prev := otel.GetMeterProvider()
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	// The gRPC exporter connects lazily, so construction succeeds without a collector.
	mp, err := InitMetrics(context.Background(), config.TelemetryConfig{
		ServiceName:  "incognito-auth",
		OTLPEndpoint: "127.0.0.1:4317",
		OTLPInsecure: true,
	}, "test", logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, mp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = mp.Shutdown(ctx)
}
