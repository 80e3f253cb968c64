package transport

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRunEnsemble_ReferenceScenario(t *testing.T) {
	cfg := Config{
		AttenuationCoefficient: 0.1,
		DomainRadius:           10,
		BoundaryCheckRadius:    5,
		PhotonCount:            1000,
		Seed:                   20240601,
	}
	res, err := RunEnsemble(context.Background(), cfg)
	require.NoError(t, err)

	require.Equal(t, 1000, res.PhotonCount)
	require.GreaterOrEqual(t, res.CrossingCount, 0)
	require.LessOrEqual(t, res.CrossingCount, res.PhotonCount)
	// a 2e5-photon baseline puts the crossing probability at 0.763;
	// the standard error at 1000 photons is ~0.013
	assert.InDelta(t, 0.763, res.CrossingFraction(), 0.06)
	assert.Equal(t, res.PhotonCount, res.Absorbed+res.Escaped+res.Diverged)
	assert.Zero(t, res.Diverged)

	require.Len(t, res.Paths, 100)
	for i, p := range res.Paths {
		require.NotEmpty(t, p, "path %d", i)
		require.Equal(t, Origin, p[0], "path %d must start at origin", i)
	}

	again, err := RunEnsemble(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, res.CrossingCount, again.CrossingCount, "same seed must reproduce the crossing count")
	assert.Equal(t, res.Paths, again.Paths)
}

func TestRunEnsemble_IndependentOfWorkerCount(t *testing.T) {
	cfg := testConfig()
	cfg.PhotonCount = 2000

	cfg.Workers = 1
	serial, err := RunEnsemble(context.Background(), cfg)
	require.NoError(t, err)

	cfg.Workers = 7
	parallel, err := RunEnsemble(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, serial.CrossingCount, parallel.CrossingCount)
	assert.Equal(t, serial.Absorbed, parallel.Absorbed)
	assert.Equal(t, serial.Escaped, parallel.Escaped)
	assert.Equal(t, serial.MeanInteractions, parallel.MeanInteractions)
	assert.Equal(t, serial.Paths, parallel.Paths)
}

func TestRunEnsemble_MeanInteractionsBeforeAbsorption(t *testing.T) {
	// the domain is so large that no photon escapes, so flights are geometric(0.5)
	cfg := Config{
		AttenuationCoefficient: 1,
		DomainRadius:           1e9,
		PhotonCount:            100_000,
		PathSampleSize:         1,
		Seed:                   77,
	}
	res, err := RunEnsemble(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, cfg.PhotonCount, res.Absorbed)
	// variance 2, standard error ~0.0045
	assert.InDelta(t, 2.0, res.MeanInteractions, 0.03)
}

func TestRunEnsemble_PathRetention(t *testing.T) {
	cfg := testConfig()
	cfg.PhotonCount = 10
	res, err := RunEnsemble(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, res.Paths, 10)

	cfg.PhotonCount = 50
	cfg.PathSampleSize = 5
	res, err = RunEnsemble(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, res.Paths, 5)

	// retained paths are those of photons 0..4
	for i, p := range res.Paths {
		r, err := SimulatePhoton(cfg, NewPhotonStream(cfg.Seed, i))
		require.NoError(t, err)
		assert.Equal(t, r.Path, p)
	}
}

func TestRunEnsemble_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.AttenuationCoefficient = 0
	res, err := RunEnsemble(context.Background(), cfg)
	require.Nil(t, res)
	require.True(t, errors.Is(err, ErrInvalidConfig))

	cfg = testConfig()
	cfg.DomainRadius = -1
	_, err = RunEnsemble(context.Background(), cfg)
	require.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestRunEnsemble_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunEnsemble(ctx, testConfig())
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunEnsemble_DivergedPhotonsAreCounted(t *testing.T) {
	cfg := Config{DomainRadius: 10, PhotonCount: 20, FixedStepSize: 0.01, MaxInteractions: 10, Seed: 3}
	res, err := RunEnsemble(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Diverged)
	require.Len(t, res.DivergedPhotons, 20)
	for i, d := range res.DivergedPhotons {
		assert.Equal(t, i, d.Index)
		assert.Equal(t, 10, d.Interactions)
	}
}

type countingObserver struct {
	mu       sync.Mutex
	photons  int
	crossing int
}

func (o *countingObserver) ObservePhoton(r PhotonResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.photons++
	if r.Crossed {
		o.crossing++
	}
}

func TestRunEnsemble_ObserverAndProgress(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 4
	obs := &countingObserver{}
	var (
		mu    sync.Mutex
		calls int
		last  int
	)
	res, err := RunEnsemble(context.Background(), cfg,
		WithObserver(obs),
		WithProgress(func(done, total int) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if done > last {
				last = done
			}
			if total != cfg.PhotonCount {
				t.Errorf("progress total %d, want %d", total, cfg.PhotonCount)
			}
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, cfg.PhotonCount, obs.photons)
	assert.Equal(t, res.CrossingCount, obs.crossing)
	assert.Equal(t, 100, calls)
	assert.Equal(t, cfg.PhotonCount, last)
}

func TestRunEnsemble_TimeSeedWhenUnset(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 0
	cfg.PhotonCount = 10
	res, err := RunEnsemble(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotZero(t, res.Seed)
}

func TestRunEnsemble_Span(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, err := RunEnsemble(context.Background(), testConfig())
	require.NoError(t, err)

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "transport.RunEnsemble", spans[0].Name)
	var sawCrossings bool
	for _, kv := range spans[0].Attributes {
		if kv.Key == "crossing_count" {
			sawCrossings = true
		}
	}
	assert.True(t, sawCrossings)
}
