// Package geometry holds the vector primitives used by the posture estimator.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is added to the magnitude product so a zero-length ray still
// produces a finite angle.
const Epsilon = 1e-6

// AngleBetween returns the angle in degrees at vertex b formed by the rays
// b→a and b→c. The result is always in [0, 180].
func AngleBetween(a, b, c r3.Vec) float64 {
	ba := r3.Sub(a, b)
	bc := r3.Sub(c, b)

	cosine := r3.Dot(ba, bc) / (r3.Norm(ba)*r3.Norm(bc) + Epsilon)
	cosine = Clamp(cosine, -1, 1)

	return math.Acos(cosine) * 180 / math.Pi
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b r3.Vec) r3.Vec {
	return r3.Scale(0.5, r3.Add(a, b))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
