package flux

import (
	"math"
	"math/rand/v2"
)

// LineSourceParams describe a uniform line source along y and a detector at
// perpendicular distance Distance from its midpoint.
type LineSourceParams struct {
	Rate       float64 // photons per unit time per unit length
	Distance   float64
	HalfLength float64 // the line spans [-HalfLength, HalfLength]
	Samples    int
}

// DefaultHalfLength approximates an infinite line at detector distances of a few metres.
const DefaultHalfLength = 1e3

func (p LineSourceParams) validate() error {
	switch {
	case !(p.Rate > 0) || math.IsInf(p.Rate, 0):
		return invalid("rate must be > 0, got %g", p.Rate)
	case !(p.Distance > 0) || math.IsInf(p.Distance, 0):
		return invalid("distance must be > 0, got %g", p.Distance)
	case !(p.HalfLength > 0) || math.IsInf(p.HalfLength, 0):
		return invalid("half length must be finite and > 0, got %g", p.HalfLength)
	case p.Samples <= 0:
		return invalid("samples must be > 0, got %d", p.Samples)
	}
	return nil
}

// LineSourceFlux is rate·atan(L/x)/(2πx) for a line of half length L.
// A non-positive halfLength means an infinite line, rate/(4x).
func LineSourceFlux(rate, x, halfLength float64) float64 {
	if halfLength <= 0 || math.IsInf(halfLength, 1) {
		return rate / (4 * x)
	}
	return rate * math.Atan(halfLength/x) / (2 * math.Pi * x)
}

// EstimateLineSource samples emission points uniformly along the line and
// averages their point-source contributions 2L·rate/(4πd²) at the detector.
func EstimateLineSource(p LineSourceParams, rng *rand.Rand) (Estimate, error) {
	if err := p.validate(); err != nil {
		return Estimate{}, err
	}
	L, x := p.HalfLength, p.Distance
	contrib := make([]float64, p.Samples)
	for i := range contrib {
		y := L * (2*rng.Float64() - 1)
		d2 := x*x + y*y
		contrib[i] = 2 * L * p.Rate / (4 * math.Pi * d2)
	}
	return summarize(contrib, LineSourceFlux(p.Rate, x, L)), nil
}
