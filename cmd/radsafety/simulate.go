package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kunok-chang/Radiation-Safety/internal/store"
	"github.com/kunok-chang/Radiation-Safety/internal/telemetry"
	"github.com/kunok-chang/Radiation-Safety/internal/transport"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the photon random-walk ensemble",
	Long: `Simulates photons emitted isotropically from the origin of a homogeneous
sphere. Each photon flies an exponential free path, then is absorbed or
scattered isotropically with equal probability, until it is absorbed or leaves
the sphere. Photons that reach --check-radius are counted.

Configuration precedence: defaults, --config file (JSON or YAML),
RADSAFETY_* environment variables, then flags.`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	f := simulateCmd.Flags()
	f.String("config", "", "JSON or YAML run configuration")
	f.Float64("mu", transport.AttenuationCoefficient, "Linear attenuation coefficient (1/length)")
	f.Float64("radius", transport.DomainRadius, "Radius of the simulated medium")
	f.Int("photons", transport.PhotonCount, "Number of photons to simulate")
	f.Float64("check-radius", transport.BoundaryCheckRadius, "Count photons reaching this radius (0 disables)")
	f.Float64("step", 0, "Fixed step size; selects the non-attenuating walk when > 0")
	f.Int("max-interactions", transport.MaxInteractions, "Per-photon interaction ceiling")
	f.Int("sample", transport.PathSampleSize, "Number of photon paths to keep")
	f.Uint64("seed", 0, "Random seed (0 picks one from the clock)")
	f.Int("workers", 0, "Worker goroutines (0 uses all CPUs)")
	f.String("units", transport.Units, "Length unit label for the report")
	f.String("paths-out", "", "Write the kept paths as JSON to this file")
	f.String("db", "", "Archive the run in this SQLite database")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address during the run")
	f.Duration("linger", 0, "Keep the metrics server up this long after the run")
	f.Bool("progress", false, "Log progress every 1% of photons")
}

// resolveConfig applies defaults, the config file, the environment and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command) (transport.Config, error) {
	flags := cmd.Flags()
	cfg := transport.DefaultConfig()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := transport.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	} else if err := transport.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	if flags.Changed("mu") {
		cfg.AttenuationCoefficient, _ = flags.GetFloat64("mu")
	}
	if flags.Changed("radius") {
		cfg.DomainRadius, _ = flags.GetFloat64("radius")
	}
	if flags.Changed("photons") {
		cfg.PhotonCount, _ = flags.GetInt("photons")
	}
	if flags.Changed("check-radius") {
		cfg.BoundaryCheckRadius, _ = flags.GetFloat64("check-radius")
	}
	if flags.Changed("step") {
		cfg.FixedStepSize, _ = flags.GetFloat64("step")
	}
	if flags.Changed("max-interactions") {
		cfg.MaxInteractions, _ = flags.GetInt("max-interactions")
	}
	if flags.Changed("sample") {
		cfg.PathSampleSize, _ = flags.GetInt("sample")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("units") {
		cfg.Units, _ = flags.GetString("units")
	}
	return cfg, cfg.Validate()
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	pathsOut, _ := flags.GetString("paths-out")
	dbPath, _ := flags.GetString("db")
	metricsAddr, _ := flags.GetString("metrics-addr")
	linger, _ := flags.GetDuration("linger")
	progress, _ := flags.GetBool("progress")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)

	var srvDone chan error
	srvCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	if metricsAddr != "" {
		srvDone = make(chan error, 1)
		go func() { srvDone <- telemetry.Serve(srvCtx, metricsAddr, telemetry.Handler(reg), logger) }()
	}

	opts := []transport.Option{transport.WithLogger(logger), transport.WithObserver(metrics)}
	if progress {
		opts = append(opts, transport.WithProgress(func(done, total int) {
			logger.Info("progress", "done", done, "total", total, "pct", float64(done)*100/float64(total))
		}))
	}

	res, err := transport.Run(ctx, cfg, transport.Outputs{Report: cmd.OutOrStdout(), PathsFile: pathsOut}, opts...)
	if err != nil {
		return err
	}
	metrics.ObserveRun(res)
	if pathsOut != "" {
		logger.Info("paths written", "file", pathsOut, "count", len(res.Paths))
	}

	if dbPath != "" {
		s, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer s.Close()
		id, err := s.SaveRun(ctx, cfg, res)
		if err != nil {
			return err
		}
		logger.Info("run archived", "db", dbPath, "run_id", id)
	}

	if srvDone != nil {
		if linger > 0 {
			select {
			case <-time.After(linger):
			case <-ctx.Done():
			}
		}
		stopServer()
		return <-srvDone
	}
	return nil
}
