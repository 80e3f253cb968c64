package transport

import (
	"math"
	"math/rand/v2"
)

// SampleIsotropicDirection returns a unit direction uniform on S^2.
// cosθ is drawn uniformly on [-1, 1] (θ = arccos(1-2U)); drawing θ itself
// uniformly on [0, π] would crowd directions around the poles.
func SampleIsotropicDirection(rng *rand.Rand) Vector3 {
	phi := 2 * math.Pi * rng.Float64()
	cosTheta := 1 - 2*rng.Float64()
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	sinPhi, cosPhi := math.Sincos(phi)
	return Vector3{sinTheta * cosPhi, sinTheta * sinPhi, cosTheta}
}

// SampleFreePath draws a distance to the next interaction from the
// exponential distribution with rate mu, by inverting its CDF.
func SampleFreePath(rng *rand.Rand, mu Real) Real {
	u := rng.Float64() // [0, 1)
	if u < minUniform {
		u = minUniform
	}
	return -math.Log(u) / mu
}

// absorbed draws the interaction outcome at the end of a free path.
func absorbed(rng *rand.Rand) bool {
	return rng.Float64() < absorptionProbability
}

// NewPhotonStream returns the random stream owned by photon index of a run
// seeded with seed. Streams depend only on (seed, index), so results do not
// change with the number of workers.
func NewPhotonStream(seed uint64, index int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(index)*0x9e3779b97f4a7c15))
}
