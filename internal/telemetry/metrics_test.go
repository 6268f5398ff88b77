package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistersAndTracksValues(t *testing.T) {
	m := NewMetrics()
	require.NotNil(t, m)

	m.Transitions.WithLabelValues("Unassociated", "Associating").Inc()
	m.Associations.Inc()
	m.Disassociations.WithLabelValues("ReasonAborted").Inc()
	m.PendingRequests.Set(3)
	m.InvokeLatency.WithLabelValues("get").Observe(0.05)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Transitions.WithLabelValues("Unassociated", "Associating")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Associations))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Disassociations.WithLabelValues("ReasonAborted")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.PendingRequests))
}
