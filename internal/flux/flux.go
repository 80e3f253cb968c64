// Package flux estimates photon flux around idealized point and line sources,
// both in closed form and by direct Monte Carlo sampling.
package flux

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var ErrInvalidParams = errors.New("invalid flux parameters")

// Estimate is a Monte Carlo flux estimate next to its analytic value.
type Estimate struct {
	Samples  int
	Flux     float64 // photons per unit area per unit time
	StdErr   float64
	Analytic float64
}

// RelErr is the relative deviation of the estimate from the analytic value.
func (e Estimate) RelErr() float64 {
	if e.Analytic == 0 {
		return math.Inf(1)
	}
	return math.Abs(e.Flux-e.Analytic) / e.Analytic
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}

// summarize turns per-sample flux contributions into an Estimate.
func summarize(contrib []float64, analytic float64) Estimate {
	mean, std := stat.MeanStdDev(contrib, nil)
	n := float64(len(contrib))
	return Estimate{
		Samples:  len(contrib),
		Flux:     mean,
		StdErr:   stat.StdErr(std, n),
		Analytic: analytic,
	}
}
