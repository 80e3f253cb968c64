package transport

import (
	"math"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

// KS statistic for a continuous target CDF F on sorted samples xs.
func ksD(xs []float64, F func(float64) float64) float64 {
	sort.Float64s(xs)
	n := len(xs)
	var d float64
	for i, x := range xs {
		Fi := F(x)
		empUpper := float64(i+1) / float64(n)
		empLower := float64(i) / float64(n)
		di := math.Max(Fi-empLower, empUpper-Fi)
		if di > d {
			d = di
		}
	}
	return d
}

// ksCrit01 is the one-sample KS critical value at α = 0.01.
func ksCrit01(n int) float64 { return 1.628 / math.Sqrt(float64(n)) }

// zeroSource always yields 0, so rng.Float64() returns exactly 0.
type zeroSource struct{}

func (zeroSource) Uint64() uint64 { return 0 }

// countingSource counts draws from the wrapped source.
type countingSource struct {
	src   rand.Source
	draws int
}

func (c *countingSource) Uint64() uint64 {
	c.draws++
	return c.src.Uint64()
}

func TestSampleIsotropicDirection_Unit(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 100_000; i++ {
		d := SampleIsotropicDirection(rng)
		if l := d.Len(); math.Abs(l-1) > 1e-9 {
			t.Fatalf("direction not unit: |d|=%.15g", l)
		}
	}
}

func TestSampleIsotropicDirection_UniformOnSphere(t *testing.T) {
	rng := rand.New(rand.NewPCG(12345, 67890))
	const n = 100_000
	var sum Vector3
	zs := make([]float64, n)
	for i := 0; i < n; i++ {
		d := SampleIsotropicDirection(rng)
		sum = sum.Add(d)
		zs[i] = d.Z
	}
	mean := sum.Mul(1.0 / n)
	// each component has variance 1/3, so the standard error is ~0.0018
	assert.InDelta(t, 0, mean.X, 0.01)
	assert.InDelta(t, 0, mean.Y, 0.01)
	assert.InDelta(t, 0, mean.Z, 0.01)

	U := distuv.Uniform{Min: -1, Max: 1}
	D := ksD(zs, U.CDF)
	require.Lessf(t, D, ksCrit01(n), "z not uniform on [-1,1]: D=%.6g", D)
}

// The uniform polar angle variant must be rejected by the same check,
// otherwise the test above proves nothing.
func TestUniformPolarAngleFailsUniformityCheck(t *testing.T) {
	rng := rand.New(rand.NewPCG(12345, 67890))
	const n = 100_000
	zs := make([]float64, n)
	for i := range zs {
		zs[i] = math.Cos(math.Pi * rng.Float64())
	}
	U := distuv.Uniform{Min: -1, Max: 1}
	D := ksD(zs, U.CDF)
	require.Greater(t, D, ksCrit01(n))
}

func TestSampleFreePath_ExponentialMean(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	const n = 100_000
	mu := 0.5
	var sum float64
	for i := 0; i < n; i++ {
		s := SampleFreePath(rng, mu)
		require.True(t, s >= 0 && isFinite(s), "bad step %g", s)
		sum += s
	}
	// mean 1/mu = 2, standard deviation 2, standard error ~0.0063
	assert.InDelta(t, 1/mu, sum/n, 0.05)
}

func TestSampleFreePath_ZeroDrawIsClamped(t *testing.T) {
	rng := rand.New(zeroSource{})
	s := SampleFreePath(rng, 0.1)
	require.True(t, isFinite(s), "step must stay finite, got %g", s)
	assert.InDelta(t, -math.Log(minUniform)/0.1, s, 1e-9)
}

func TestNewPhotonStream_Deterministic(t *testing.T) {
	a := NewPhotonStream(42, 7)
	b := NewPhotonStream(42, 7)
	c := NewPhotonStream(42, 8)
	same, differ := true, false
	for i := 0; i < 16; i++ {
		x, y, z := a.Uint64(), b.Uint64(), c.Uint64()
		if x != y {
			same = false
		}
		if x != z {
			differ = true
		}
	}
	assert.True(t, same, "identical (seed, index) must give identical streams")
	assert.True(t, differ, "different photon indices must give different streams")
}
