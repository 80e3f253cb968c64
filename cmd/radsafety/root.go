package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/kunok-chang/Radiation-Safety/internal/logging"
	"github.com/kunok-chang/Radiation-Safety/internal/telemetry"
)

const serviceName = "radsafety"

var (
	logger      = logging.NewNop()
	stopProfile = func() {}
	stopTracing = func(context.Context) error { return nil }
)

var rootCmd = &cobra.Command{
	Use:           "radsafety",
	Short:         "Monte Carlo photon transport and source flux estimates",
	Long:          `radsafety simulates photon random walks through a homogeneous attenuating medium and estimates flux around point and line sources.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		format, _ := cmd.Flags().GetString("log-format")
		f, err := logging.ParseFormat(format)
		if err != nil {
			return err
		}
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		logger = logging.NewWithWriter(os.Stderr, level, f)

		if path, _ := cmd.Flags().GetString("cpuprofile"); path != "" {
			pf, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := pprof.StartCPUProfile(pf); err != nil {
				_ = pf.Close()
				return err
			}
			stopProfile = func() {
				pprof.StopCPUProfile()
				_ = pf.Close()
			}
		}

		shutdown, err := telemetry.SetupTracing(cmd.Context(), serviceName)
		if err != nil {
			logger.Warn("tracing disabled", "error", err)
		} else {
			stopTracing = shutdown
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := stopTracing(context.Background()); err != nil {
			logger.Warn("flush traces", "error", err)
		}
		stopProfile()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		stopProfile()
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Verbose (debug level) logging")
	rootCmd.PersistentFlags().String("log-format", logging.FormatText, "Log format: text or json")
	rootCmd.PersistentFlags().String("cpuprofile", "", "Write a CPU profile to this file")
}
