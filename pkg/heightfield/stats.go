package heightfield

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the distribution of grid samples.
type Stats struct {
	Min      float64
	Max      float64
	Mean     float64
	Variance float64 // population variance
	StdDev   float64
}

// Stats computes summary statistics over the normalized samples.
func (g *Grid) Stats() Stats {
	mean, variance := stat.PopMeanVariance(g.samples, nil)
	return Stats{
		Min:      floats.Min(g.samples),
		Max:      floats.Max(g.samples),
		Mean:     mean,
		Variance: variance,
		StdDev:   stat.PopStdDev(g.samples, nil),
	}
}

// Range returns the smallest and largest sample.
func (g *Grid) Range() (lo, hi float64) {
	return floats.Min(g.samples), floats.Max(g.samples)
}

// Quantile returns the p-quantile (0 <= p <= 1) of the samples.
func (g *Grid) Quantile(p float64) float64 {
	sorted := g.Samples()
	floats.Argsort(sorted, make([]int, len(sorted)))
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}
