package transport

// Defaults for a 10 cm sphere of a weakly attenuating medium.
const (
	AttenuationCoefficient = 0.1  // 1/cm
	DomainRadius           = 10.0 // cm
	PhotonCount            = 1000
	BoundaryCheckRadius    = 5.0 // cm
	MaxInteractions        = 10_000
	PathSampleSize         = 100 // paths kept for plotting
	Units                  = "cm"
	// hot-loop constants
	absorptionProbability = 0.5
	minUniform            = 1e-12 // lower clamp for the free-path draw, keeps ln(U) finite
	initialPathCap        = 8
)
