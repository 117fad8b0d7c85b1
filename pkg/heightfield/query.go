package heightfield

import (
	"fmt"
	"math"
)

// Query answers elevation lookups over a grid centered at the world origin.
// The grid covers [-WorldWidth/2, +WorldWidth/2] on both the X and Z axes.
type Query struct {
	grid        *Grid
	worldWidth  float64
	heightScale float64
}

// NewQuery creates a query view over grid.
func NewQuery(grid *Grid, worldWidth, heightScale float64) (*Query, error) {
	if grid == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrInvalidArgument)
	}
	if !(worldWidth > 0) || math.IsInf(worldWidth, 0) {
		return nil, fmt.Errorf("%w: world width %v", ErrInvalidArgument, worldWidth)
	}
	if math.IsNaN(heightScale) || math.IsInf(heightScale, 0) {
		return nil, fmt.Errorf("%w: height scale %v", ErrInvalidArgument, heightScale)
	}

	return &Query{
		grid:        grid,
		worldWidth:  worldWidth,
		heightScale: heightScale,
	}, nil
}

// Grid returns the underlying grid.
func (q *Query) Grid() *Grid {
	return q.grid
}

// WorldWidth returns the world-space extent covered by the grid.
func (q *Query) WorldWidth() float64 {
	return q.worldWidth
}

// HeightScale returns the multiplier applied to normalized samples.
func (q *Query) HeightScale() float64 {
	return q.heightScale
}

// HeightAt returns the terrain elevation at world position (x, z).
// X selects the grid row and Z the column. Positions outside the footprint
// are clamped to the nearest edge, so HeightAt never fails.
func (q *Query) HeightAt(x, z float64) float64 {
	n := q.grid.resolution
	last := float64(n - 1)
	half := q.worldWidth / 2

	u := clampf((x+half)/q.worldWidth*last, 0, last)
	v := clampf((z+half)/q.worldWidth*last, 0, last)

	i0 := int(math.Floor(u))
	j0 := int(math.Floor(v))
	i1 := min(i0+1, n-1)
	j1 := min(j0+1, n-1)
	fu := u - float64(i0)
	fv := v - float64(j0)

	s := q.grid.samples
	h00 := s[i0*n+j0]
	h10 := s[i1*n+j0]
	h01 := s[i0*n+j1]
	h11 := s[i1*n+j1]

	// Blend along rows first, then across columns
	near := h00*(1-fu) + h10*fu
	far := h01*(1-fu) + h11*fu
	return (near*(1-fv) + far*fv) * q.heightScale
}

// Contains reports whether (x, z) lies inside the grid footprint.
func (q *Query) Contains(x, z float64) bool {
	half := q.worldWidth / 2
	return x >= -half && x <= half && z >= -half && z <= half
}

// clampf clamps v into [lo, hi]. NaN maps to lo.
func clampf(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
