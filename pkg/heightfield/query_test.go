package heightfield

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQuery(t *testing.T, resolution int, samples []float64, width, scale float64) *Query {
	t.Helper()
	grid, err := NewGrid(resolution, samples)
	require.NoError(t, err)
	q, err := NewQuery(grid, width, scale)
	require.NoError(t, err)
	return q
}

func TestHeightAt_TopLeftNode(t *testing.T) {
	grid, err := Build(randomImage(9, 3), 9)
	require.NoError(t, err)
	q, err := NewQuery(grid, 100, 20)
	require.NoError(t, err)

	assert.Equal(t, grid.Samples()[0]*20, q.HeightAt(-50, -50))
}

func TestHeightAt_GridNodes(t *testing.T) {
	// 3x3 grid over 100 units: nodes at -50, 0, +50
	samples := []float64{
		0.0, 0.1, 0.2,
		0.3, 0.4, 0.5,
		0.6, 0.7, 0.8,
	}
	q := newTestQuery(t, 3, samples, 100, 10)

	coords := []float64{-50, 0, 50}
	for i, x := range coords {
		for j, z := range coords {
			assert.InDelta(t, samples[i*3+j]*10, q.HeightAt(x, z), 1e-12, "node (%d,%d)", i, j)
		}
	}
}

func TestHeightAt_Bilinear(t *testing.T) {
	samples := []float64{
		0, 1,
		0.5, 0.25,
	}
	q := newTestQuery(t, 2, samples, 2, 1)

	// Centre of the single cell averages all four corners
	assert.InDelta(t, (0+1+0.5+0.25)/4, q.HeightAt(0, 0), 1e-12)

	// x moves along rows: halfway between (0,0) and (1,0) at z = -1
	assert.InDelta(t, 0.25, q.HeightAt(0, -1), 1e-12)

	// z moves along columns: halfway between (0,0) and (0,1) at x = -1
	assert.InDelta(t, 0.5, q.HeightAt(-1, 0), 1e-12)

	// Quarter point
	want := (0*0.75+0.5*0.25)*0.75 + (1*0.75+0.25*0.25)*0.25
	assert.InDelta(t, want, q.HeightAt(-0.5, -0.5), 1e-12)
}

func TestHeightAt_ScaleApplied(t *testing.T) {
	q := newTestQuery(t, 2, []float64{0.5, 0.5, 0.5, 0.5}, 10, 42)
	assert.InDelta(t, 21, q.HeightAt(1.234, -3.21), 1e-12)

	flat := newTestQuery(t, 2, []float64{0.5, 0.5, 0.5, 0.5}, 10, 0)
	assert.Equal(t, 0.0, flat.HeightAt(0, 0))
}

func TestHeightAt_ClampsOutsideFootprint(t *testing.T) {
	grid, err := Build(randomImage(17, 11), 17)
	require.NoError(t, err)
	q, err := NewQuery(grid, 64, 5)
	require.NoError(t, err)

	half := 32.0
	for _, z := range []float64{-half, -10.3, 0, 7.77, half} {
		assert.Equal(t, q.HeightAt(half, z), q.HeightAt(1e9, z), "far +x at z=%v", z)
		assert.Equal(t, q.HeightAt(-half, z), q.HeightAt(-1e9, z), "far -x at z=%v", z)
		assert.Equal(t, q.HeightAt(z, half), q.HeightAt(z, 1e9), "far +z at x=%v", z)
		assert.Equal(t, q.HeightAt(z, -half), q.HeightAt(z, -1e9), "far -z at x=%v", z)
	}

	assert.Equal(t, q.HeightAt(half, half), q.HeightAt(math.Inf(1), math.Inf(1)))
	assert.Equal(t, q.HeightAt(-half, -half), q.HeightAt(math.Inf(-1), math.Inf(-1)))
	assert.Equal(t, q.HeightAt(-half, -half), q.HeightAt(math.NaN(), math.NaN()))
}

func TestHeightAt_Continuous(t *testing.T) {
	grid, err := Build(randomImage(33, 5), 33)
	require.NoError(t, err)
	const width, scale = 80.0, 12.0
	q, err := NewQuery(grid, width, scale)
	require.NoError(t, err)

	// Largest change between neighboring samples bounds the slope per grid unit
	samples := grid.Samples()
	n := grid.Resolution()
	maxDelta := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i+1 < n {
				maxDelta = max(maxDelta, math.Abs(samples[(i+1)*n+j]-samples[i*n+j]))
			}
			if j+1 < n {
				maxDelta = max(maxDelta, math.Abs(samples[i*n+j+1]-samples[i*n+j]))
			}
		}
	}
	gridUnitsPerWorld := float64(n-1) / width

	const step = 1e-6
	for x := -40.0; x <= 40; x += 0.731 {
		for z := -40.0; z <= 40; z += 0.917 {
			h := q.HeightAt(x, z)
			bound := 2*maxDelta*scale*gridUnitsPerWorld*step + 1e-9
			assert.LessOrEqual(t, math.Abs(q.HeightAt(x+step, z)-h), bound)
			assert.LessOrEqual(t, math.Abs(q.HeightAt(x, z+step)-h), bound)
		}
	}
}

func TestHeightAt_SingleCellGrid(t *testing.T) {
	q := newTestQuery(t, 1, []float64{0.75}, 10, 4)

	for _, p := range [][2]float64{{0, 0}, {-5, -5}, {5, 5}, {100, -100}} {
		assert.Equal(t, 3.0, q.HeightAt(p[0], p[1]))
	}
}

func TestHeightAt_ConcurrentReaders(t *testing.T) {
	grid, err := Build(randomImage(64, 9), 64)
	require.NoError(t, err)
	q, err := NewQuery(grid, 100, 20)
	require.NoError(t, err)

	want := q.HeightAt(12.5, -7.25)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				if got := q.HeightAt(12.5, -7.25); got != want {
					t.Errorf("expected %v, got %v", want, got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNewQuery_Errors(t *testing.T) {
	grid, err := NewGrid(1, []float64{0})
	require.NoError(t, err)

	tests := []struct {
		name   string
		grid   *Grid
		width  float64
		height float64
	}{
		{"nil grid", nil, 10, 1},
		{"zero width", grid, 0, 1},
		{"negative width", grid, -5, 1},
		{"NaN width", grid, math.NaN(), 1},
		{"infinite width", grid, math.Inf(1), 1},
		{"NaN scale", grid, 10, math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewQuery(tt.grid, tt.width, tt.height)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestQuery_Contains(t *testing.T) {
	q := newTestQuery(t, 1, []float64{0}, 10, 1)

	assert.True(t, q.Contains(0, 0))
	assert.True(t, q.Contains(5, -5))
	assert.False(t, q.Contains(5.01, 0))
	assert.False(t, q.Contains(0, -6))
	assert.Equal(t, 10.0, q.WorldWidth())
	assert.Equal(t, 1.0, q.HeightScale())
	assert.NotNil(t, q.Grid())
}
