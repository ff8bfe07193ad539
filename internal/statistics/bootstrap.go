// Package statistics estimates the uncertainty of per-frame score changes.
package statistics

import (
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ConfidenceInterval holds the result of a bootstrap confidence interval computation.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// DefaultBootstrapIterations is the number of bootstrap resamples.
const DefaultBootstrapIterations = 2000

// DefaultConfidenceLevel is used when callers do not pick one.
const DefaultConfidenceLevel = 0.95

// BootstrapCI computes a bootstrap confidence interval of the mean of values
// using the percentile method. confidenceLevel should be in (0, 1), e.g. 0.95.
// Fewer than 2 values yield a degenerate interval at their mean.
func BootstrapCI(values []float64, confidenceLevel float64) ConfidenceInterval {
	return BootstrapCIWithSeed(values, confidenceLevel, rand.Uint64())
}

// BootstrapCIWithSeed is like BootstrapCI but resamples from a generator
// seeded with seed, so equal inputs give equal intervals.
func BootstrapCIWithSeed(values []float64, confidenceLevel float64, seed uint64) ConfidenceInterval {
	n := len(values)
	if n < 2 {
		var m float64
		if n == 1 {
			m = values[0]
		}
		return ConfidenceInterval{
			Lower:           m,
			Upper:           m,
			Mean:            m,
			ConfidenceLevel: confidenceLevel,
		}
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	iters := DefaultBootstrapIterations

	// Bootstrap: resample with replacement, compute mean of each resample
	bootMeans := make([]float64, iters)
	sample := make([]float64, n)
	for i := range bootMeans {
		for j := range sample {
			sample[j] = values[rng.IntN(n)]
		}
		bootMeans[i] = stat.Mean(sample, nil)
	}
	slices.Sort(bootMeans)

	// Percentile method
	alpha := 1.0 - confidenceLevel
	return ConfidenceInterval{
		Lower:           stat.Quantile(alpha/2, stat.Empirical, bootMeans, nil),
		Upper:           stat.Quantile(1-alpha/2, stat.Empirical, bootMeans, nil),
		Mean:            stat.Mean(values, nil),
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   iters,
	}
}

// IsSignificant returns true if the confidence interval does not contain zero,
// indicating statistical significance at the given confidence level.
func IsSignificant(ci ConfidenceInterval) bool {
	return ci.Lower > 0 || ci.Upper < 0
}
