// Package heightfield builds normalized elevation grids from heightmap rasters
// and answers bilinear elevation queries at world coordinates.
//
// A Grid is immutable once constructed: every accessor hands out copies, so a
// Grid and any Query over it can be shared between goroutines without locking.
package heightfield

import (
	"errors"
	"fmt"
	"math"
)

// Heightfield errors.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrMalformedInput  = errors.New("malformed input")
)

// Grid is a square, row-major grid of normalized elevation samples in [0, 1].
// Sample (row i, column j) is stored at index i*Resolution()+j.
type Grid struct {
	resolution int
	samples    []float64
}

// NewGrid creates a grid from already smoothed samples.
// The slice is copied; every value must be finite and lie in [0, 1].
func NewGrid(resolution int, samples []float64) (*Grid, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("%w: resolution %d", ErrInvalidArgument, resolution)
	}
	if !fitsArea(resolution, 1) || len(samples) != resolution*resolution {
		return nil, fmt.Errorf("%w: %d samples for resolution %d", ErrMalformedInput, len(samples), resolution)
	}
	if err := checkNormalized(samples); err != nil {
		return nil, err
	}

	return &Grid{
		resolution: resolution,
		samples:    append([]float64(nil), samples...),
	}, nil
}

// Resolution returns N for an N x N grid.
func (g *Grid) Resolution() int {
	return g.resolution
}

// Len returns the number of samples.
func (g *Grid) Len() int {
	return len(g.samples)
}

// Samples returns a copy of the row-major samples.
func (g *Grid) Samples() []float64 {
	return append([]float64(nil), g.samples...)
}

// At returns the sample at (row, col).
// Returns 0 if the coordinates are out of bounds.
func (g *Grid) At(row, col int) float64 {
	if row < 0 || col < 0 || row >= g.resolution || col >= g.resolution {
		return 0
	}
	return g.samples[row*g.resolution+col]
}

// Equal reports whether two grids hold bit-identical samples.
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.resolution != other.resolution {
		return false
	}
	for i, v := range g.samples {
		if math.Float64bits(v) != math.Float64bits(other.samples[i]) {
			return false
		}
	}
	return true
}

func checkNormalized(samples []float64) error {
	for i, v := range samples {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: sample %d = %v outside [0, 1]", ErrMalformedInput, i, v)
		}
	}
	return nil
}
