package flux

import (
	"math"
	"math/rand/v2"

	"github.com/kunok-chang/Radiation-Safety/internal/transport"
)

// PointSourceParams describe an isotropic point source in a homogeneous medium.
type PointSourceParams struct {
	Rate     float64 // photons emitted per unit time
	Distance float64 // radius of the detector sphere
	Mu       float64 // attenuation coefficient, 0 for vacuum
	Samples  int
}

func (p PointSourceParams) validate() error {
	switch {
	case !(p.Rate > 0) || math.IsInf(p.Rate, 0):
		return invalid("rate must be > 0, got %g", p.Rate)
	case !(p.Distance > 0) || math.IsInf(p.Distance, 0):
		return invalid("distance must be > 0, got %g", p.Distance)
	case !(p.Mu >= 0) || math.IsInf(p.Mu, 0):
		return invalid("mu must be >= 0, got %g", p.Mu)
	case p.Samples <= 0:
		return invalid("samples must be > 0, got %d", p.Samples)
	}
	return nil
}

// PointSourceFlux is the uncollided flux rate·e^(-μr)/(4πr²).
func PointSourceFlux(rate, r, mu float64) float64 {
	return rate * math.Exp(-mu*r) / (4 * math.Pi * r * r)
}

// EstimatePointSource emits photons and tallies those whose first free path
// carries them across the sphere of radius Distance. The sphere is centred on
// the source, so the emission direction never changes the tally. Each
// crossing contributes rate/(4πr²); in vacuum every photon crosses.
func EstimatePointSource(p PointSourceParams, rng *rand.Rand) (Estimate, error) {
	if err := p.validate(); err != nil {
		return Estimate{}, err
	}
	r := p.Distance
	area := 4 * math.Pi * r * r
	contrib := make([]float64, p.Samples)
	for i := range contrib {
		if p.Mu > 0 && transport.SampleFreePath(rng, p.Mu) < r {
			continue
		}
		contrib[i] = p.Rate / area
	}
	return summarize(contrib, PointSourceFlux(p.Rate, r, p.Mu)), nil
}
