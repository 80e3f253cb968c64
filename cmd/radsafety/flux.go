package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/kunok-chang/Radiation-Safety/internal/flux"
)

var fluxCmd = &cobra.Command{
	Use:   "flux",
	Short: "Estimate flux around idealized sources",
}

var fluxPointCmd = &cobra.Command{
	Use:   "point",
	Short: "Flux at a distance from an isotropic point source",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		rate, _ := f.GetFloat64("rate")
		distance, _ := f.GetFloat64("distance")
		mu, _ := f.GetFloat64("mu")
		samples, _ := f.GetInt("samples")
		est, err := flux.EstimatePointSource(flux.PointSourceParams{
			Rate: rate, Distance: distance, Mu: mu, Samples: samples,
		}, fluxRNG(cmd))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Distance: %g m\n", distance)
		printEstimate(cmd, est)
		return nil
	},
}

var fluxLineCmd = &cobra.Command{
	Use:   "line",
	Short: "Flux at a perpendicular distance from a line source",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		rate, _ := f.GetFloat64("rate")
		distance, _ := f.GetFloat64("distance")
		half, _ := f.GetFloat64("half-length")
		samples, _ := f.GetInt("samples")
		est, err := flux.EstimateLineSource(flux.LineSourceParams{
			Rate: rate, Distance: distance, HalfLength: half, Samples: samples,
		}, fluxRNG(cmd))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Distance: %g m (line half length %g m)\n", distance, half)
		printEstimate(cmd, est)
		return nil
	},
}

func fluxRNG(cmd *cobra.Command) *rand.Rand {
	seed, _ := cmd.Flags().GetUint64("seed")
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logger.Debug("flux estimate", "seed", seed)
	return rand.New(rand.NewPCG(seed, seed>>1))
}

func printEstimate(cmd *cobra.Command, est flux.Estimate) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Samples: %d\n", est.Samples)
	fmt.Fprintf(out, "Simulated Flux: %.4e ± %.1e photons/m^2/h\n", est.Flux, est.StdErr)
	fmt.Fprintf(out, "Analytic Flux: %.4e photons/m^2/h\n", est.Analytic)
}

func init() {
	rootCmd.AddCommand(fluxCmd)
	fluxCmd.AddCommand(fluxPointCmd, fluxLineCmd)

	for _, c := range []*cobra.Command{fluxPointCmd, fluxLineCmd} {
		c.Flags().Float64("rate", 1e6, "Emission rate (photons/h, per metre for a line)")
		c.Flags().Float64("distance", 10, "Distance from the source (m)")
		c.Flags().Int("samples", 100_000, "Monte Carlo samples")
		c.Flags().Uint64("seed", 0, "Random seed (0 picks one from the clock)")
	}
	fluxPointCmd.Flags().Float64("mu", 0, "Attenuation coefficient of the medium (1/m)")
	fluxLineCmd.Flags().Float64("half-length", flux.DefaultHalfLength, "Half length of the line source (m)")
}
