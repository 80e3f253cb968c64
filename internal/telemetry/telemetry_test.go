package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunok-chang/Radiation-Safety/internal/logging"
	"github.com/kunok-chang/Radiation-Safety/internal/transport"
)

func TestMetricsObserveEnsemble(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	cfg := transport.DefaultConfig()
	cfg.Seed = 5
	cfg.PhotonCount = 300
	res, err := transport.RunEnsemble(context.Background(), cfg, transport.WithObserver(m))
	require.NoError(t, err)
	m.ObserveRun(res)

	assert.Equal(t, float64(res.Absorbed), testutil.ToFloat64(m.photons.WithLabelValues("absorbed")))
	assert.Equal(t, float64(res.Escaped), testutil.ToFloat64(m.photons.WithLabelValues("escaped")))
	assert.Equal(t, float64(res.Diverged), testutil.ToFloat64(m.photons.WithLabelValues("diverged")))
	assert.Equal(t, float64(res.CrossingCount), testutil.ToFloat64(m.crossings))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs))
	assert.Equal(t, 1, testutil.CollectAndCount(m.interactions))
}

func TestHandlerServesMetricsAndHealth(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ObservePhoton(transport.PhotonResult{Outcome: transport.Escaped, Crossed: true, Interactions: 2})

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `radsafety_photons_total{outcome="escaped"} 1`)
	assert.Contains(t, string(body), "radsafety_boundary_crossings_total 1")
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", Handler(prometheus.NewRegistry()), logging.NewNop())
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestSetupTracingDisabledByDefault(t *testing.T) {
	t.Setenv(envOTelEndpoint, "")
	shutdown, err := SetupTracing(context.Background(), "radsafety-test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	t.Setenv(envOTelEndpoint, "http://127.0.0.1:4318")
	t.Setenv(envOTelEnabled, "false")
	shutdown, err = SetupTracing(context.Background(), "radsafety-test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
