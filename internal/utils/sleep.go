package utils

import (
	"math"
	"math/rand"
	"time"
)

// sampleGamma returns a sample from the Gamma(shape, scale) distribution using
// the Marsaglia-Tsang squeeze method. shape must be >= 1.
func sampleGamma(shape, scale float64) float64 {
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		x := rand.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		x2 := x * x
		u := rand.Float64()
		if u < 1.0-0.0331*(x2*x2) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x2+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// Jitter scales d by a Gamma(16, 1/16) multiplier clamped to [0.8, 1.3].
// The game UI needs a minimum settle time, so the lower tail is kept tight.
func Jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	const shape = 16.0
	multiplier := sampleGamma(shape, 1/shape)
	if multiplier < 0.8 {
		multiplier = 0.8
	}
	if multiplier > 1.3 {
		multiplier = 1.3
	}
	return time.Duration(float64(d) * multiplier)
}

// Sleep pauses for a jittered version of d.
func Sleep(d time.Duration) {
	time.Sleep(Jitter(d))
}
