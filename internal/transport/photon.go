package transport

import (
	"math/rand/v2"
)

// Path is the ordered list of positions a photon visited, starting at the origin.
type Path []Point3

// PhotonResult describes one photon history.
type PhotonResult struct {
	Path         Path
	Crossed      bool // reached BoundaryCheckRadius at least once
	Outcome      Outcome
	Interactions int // free flights taken
}

// SimulatePhoton tracks a single photon from the origin until it is absorbed,
// leaves the domain or exceeds cfg.MaxInteractions. The configuration is
// validated before rng is touched.
func SimulatePhoton(cfg Config, rng *rand.Rand) (PhotonResult, error) {
	if err := cfg.Validate(); err != nil {
		return PhotonResult{}, err
	}
	return simulatePhoton(cfg.withDefaults(), rng), nil
}

// simulatePhoton expects a validated config with defaults applied.
func simulatePhoton(cfg Config, rng *rand.Rand) PhotonResult {
	attenuating := cfg.Attenuating()
	R := cfg.DomainRadius
	rc := cfg.BoundaryCheckRadius

	P := Origin
	D := SampleIsotropicDirection(rng)
	path := make(Path, 1, pathCapacity(cfg))
	path[0] = P
	crossed := false
	outcome := Diverged

	n := 0
	for n < cfg.MaxInteractions {
		if P.Dist() >= R {
			break
		}

		var step Real
		if attenuating {
			step = SampleFreePath(rng, cfg.AttenuationCoefficient)
		} else {
			step = cfg.FixedStepSize
		}
		P = P.Add(D.Mul(step))
		n++
		if traceSteps {
			traceStep(n, P, D)
		}

		// first crossing only: later re-entries never reset the flag
		if rc > 0 && !crossed && P.Dist() >= rc {
			crossed = true
		}
		path = append(path, P)

		if attenuating && absorbed(rng) {
			outcome = Absorbed
			break
		}
		D = SampleIsotropicDirection(rng)
	}
	// an interaction drawn beyond the domain radius still counts as an escape
	if P.Dist() >= R {
		outcome = Escaped
	}
	return PhotonResult{Path: path, Crossed: crossed, Outcome: outcome, Interactions: n}
}

// pathCapacity guesses the number of vertices a photon will record.
// Attenuating photons average two flights; the fixed-step walk needs about
// (R/step)^2 steps to escape.
func pathCapacity(cfg Config) int {
	want := initialPathCap
	if !cfg.Attenuating() {
		k := cfg.DomainRadius / cfg.FixedStepSize
		if k*k+1 < Real(cfg.MaxInteractions) {
			want = int(k*k) + 1
		} else {
			want = cfg.MaxInteractions + 1
		}
	}
	return imin(want, cfg.MaxInteractions+1)
}
