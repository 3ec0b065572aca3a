package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/megamart-analytics/internal/infrastructure/megamart"
)

func TestMetrics_Contadores(t *testing.T) {
	m := New()

	m.ObserveUpstream("listar productos", "2xx", 120*time.Millisecond)
	m.ObserveUpstream("listar productos", "circuit_open", 0)
	m.ObserveRefresh("ventas", time.Second, nil)
	m.ObserveRefresh("ventas", time.Second, errors.New("HTTP 503"))
	m.IncWizardTransition("begin", true)
	m.IncWizardTransition("begin", false)
	m.IncWizardTransition("begin", false)
	m.IncSnapshotStoreError("put")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("listar productos", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("listar productos", "circuit_open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshFailures.WithLabelValues("ventas")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeErrors.WithLabelValues("put")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.wizardTransitions.WithLabelValues("begin", "error")))
}

func TestMetrics_HandlerExponeBreaker(t *testing.T) {
	m := New()
	m.WatchBreaker(func() megamart.BreakerState { return megamart.BreakerOpen })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "megamart_upstream_circuit_state 1")
}
