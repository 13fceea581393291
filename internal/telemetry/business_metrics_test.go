package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBusinessMetrics_RegistersWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBusinessMetrics("test", reg)

	m.CheckoutStarted.Inc()
	m.PaymentAttempts.WithLabelValues("stripe", "succeeded").Inc()
	m.LiveConnections.Set(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CheckoutStarted))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.LiveConnections))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["test_business_checkout_started_total"])
	assert.True(t, names["test_business_payment_attempts_total"])
}

func TestCaptureError_NoopWhenDisabled(t *testing.T) {
	sentryEnabled = false
	assert.NotPanics(t, func() {
		CaptureError(assert.AnError, map[string]any{"k": "v"})
	})
	assert.False(t, IsEnabled())
}
