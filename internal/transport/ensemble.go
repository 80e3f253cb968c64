package transport

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kunok-chang/Radiation-Safety/internal/transport"

// Observer receives every photon history as it completes. Implementations
// are called from several worker goroutines at once.
type Observer interface {
	ObservePhoton(r PhotonResult)
}

// EnsembleResult aggregates one run of PhotonCount photons.
type EnsembleResult struct {
	PhotonCount      int
	CrossingCount    int
	Paths            []Path // first PathSampleSize photons, by photon index
	Absorbed         int
	Escaped          int
	Diverged         int
	DivergedPhotons  []DivergedPhoton
	MeanInteractions Real
	Seed             uint64
	Elapsed          time.Duration
}

// CrossingFraction is the share of photons that reached the check radius.
func (r *EnsembleResult) CrossingFraction() Real {
	if r.PhotonCount == 0 {
		return 0
	}
	return Real(r.CrossingCount) / Real(r.PhotonCount)
}

// CrossingStdErr is the binomial standard error of CrossingFraction.
func (r *EnsembleResult) CrossingStdErr() Real {
	if r.PhotonCount == 0 {
		return 0
	}
	p := r.CrossingFraction()
	return math.Sqrt(p * (1 - p) / Real(r.PhotonCount))
}

type runOptions struct {
	logger   *slog.Logger
	observer Observer
	progress func(done, total int)
}

type Option func(*runOptions)

func WithLogger(l *slog.Logger) Option { return func(o *runOptions) { o.logger = l } }

func WithObserver(obs Observer) Option { return func(o *runOptions) { o.observer = obs } }

// WithProgress installs a callback invoked roughly every 1% of photons.
// It may be called from several goroutines.
func WithProgress(fn func(done, total int)) Option {
	return func(o *runOptions) { o.progress = fn }
}

// RunEnsemble simulates cfg.PhotonCount independent photons across
// cfg.Workers goroutines. Photon i always uses NewPhotonStream(seed, i), so a
// given seed reproduces the same result for any worker count.
func RunEnsemble(ctx context.Context, cfg Config, opts ...Option) (res *EnsembleResult, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	o := runOptions{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "transport.RunEnsemble", trace.WithAttributes(
		attribute.Int("photon_count", cfg.PhotonCount),
		attribute.Float64("attenuation_coefficient", cfg.AttenuationCoefficient),
		attribute.Float64("domain_radius", cfg.DomainRadius),
		attribute.Float64("boundary_check_radius", cfg.BoundaryCheckRadius),
		attribute.Int64("seed", int64(seed)),
		attribute.Int("workers", cfg.Workers),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("crossing_count", res.CrossingCount))
		}
		span.End()
	}()

	o.logger.Info("ensemble start",
		"photons", cfg.PhotonCount,
		"mu", cfg.AttenuationCoefficient,
		"radius", cfg.DomainRadius,
		"check_radius", cfg.BoundaryCheckRadius,
		"fixed_step", cfg.FixedStepSize,
		"seed", seed,
		"workers", cfg.Workers,
	)

	start := time.Now()
	total, err := runWorkers(ctx, cfg, seed, &o)
	if err != nil {
		return nil, err
	}

	res = &EnsembleResult{
		PhotonCount:     cfg.PhotonCount,
		CrossingCount:   total.log.crossings,
		Paths:           total.paths,
		Absorbed:        total.log.Count(Absorbed),
		Escaped:         total.log.Count(Escaped),
		Diverged:        total.log.Count(Diverged),
		DivergedPhotons: total.log.Diverged(),
		Seed:            seed,
		Elapsed:         time.Since(start),
	}
	res.MeanInteractions = Real(total.log.interactions) / Real(cfg.PhotonCount)

	for _, d := range res.DivergedPhotons {
		o.logger.Warn("photon diverged",
			"photon", d.Index,
			"interactions", d.Interactions,
			"x", d.Position.X, "y", d.Position.Y, "z", d.Position.Z,
		)
	}
	o.logger.Info("ensemble done",
		"crossings", res.CrossingCount,
		"absorbed", res.Absorbed,
		"escaped", res.Escaped,
		"diverged", res.Diverged,
		"elapsed", res.Elapsed,
	)
	return res, nil
}

type workerTally struct {
	log   OutcomeLog
	paths []Path
}

func runWorkers(ctx context.Context, cfg Config, seed uint64, o *runOptions) (*workerTally, error) {
	n := cfg.PhotonCount
	workers := cfg.Workers
	if workers > n {
		workers = n
	}
	keep := imin(n, cfg.PathSampleSize)
	// each slot below keep is written by exactly one worker
	paths := make([]Path, keep)

	var counter int64
	nextPrint := int64(1)
	if n >= 100 {
		nextPrint = int64(n / 100) // ~1%
	}

	per, rem := n/workers, n%workers
	var wg sync.WaitGroup
	logs := make(chan *OutcomeLog, workers)
	errs := make(chan error, workers)

	first := 0
	for w := 0; w < workers; w++ {
		count := per
		if w < rem {
			count++
		}
		wg.Add(1)
		go func(first, count int) {
			defer wg.Done()
			local := &OutcomeLog{}
			for i := first; i < first+count; i++ {
				if err := ctx.Err(); err != nil {
					errs <- err
					return
				}
				r := simulatePhoton(cfg, NewPhotonStream(seed, i))
				local.record(i, &r)
				if i < keep {
					paths[i] = r.Path
				}
				if o.observer != nil {
					o.observer.ObservePhoton(r)
				}
				if o.progress != nil {
					if done := atomic.AddInt64(&counter, 1); done%nextPrint == 0 {
						o.progress(int(done), n)
					}
				}
			}
			logs <- local
		}(first, count)
		first += count
	}

	wg.Wait()
	close(logs)
	close(errs)
	if err := <-errs; err != nil {
		return nil, err
	}

	total := &workerTally{paths: paths}
	for l := range logs {
		total.log.Merge(l)
	}
	return total, nil
}
