package preview

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Faultbox/midgard-heightfield/pkg/heightfield"
)

func rampGrid(t *testing.T, n int) *heightfield.Grid {
	t.Helper()
	raw := make([]float64, n*n)
	for i := range n {
		for j := range n {
			raw[i*n+j] = float64(i) / float64(n-1)
		}
	}
	grid, err := heightfield.BuildFromSamples(raw, n)
	require.NoError(t, err)
	return grid
}

func TestGridXYZ(t *testing.T) {
	grid := rampGrid(t, 5)

	xyz := GridXYZ{Grid: grid, WorldWidth: 100}
	c, r := xyz.Dims()
	assert.Equal(t, 5, c)
	assert.Equal(t, 5, r)
	assert.Equal(t, -50.0, xyz.X(0))
	assert.Equal(t, 0.0, xyz.X(2))
	assert.Equal(t, 50.0, xyz.Y(4))
	assert.Equal(t, grid.At(3, 1), xyz.Z(3, 1))

	idx := GridXYZ{Grid: grid}
	assert.Equal(t, 3.0, idx.X(3))
}

func TestRenderPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.png")

	err := Render(rampGrid(t, 16), path, Options{
		Title:      "ramp",
		WorldWidth: 100,
		Size:       2 * vg.Inch,
		Markers:    plotter.XYs{{X: -10, Y: 5}, {X: 20, Y: -30}},
	})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Positive(t, cfg.Width)
	assert.Equal(t, cfg.Width, cfg.Height)
}

func TestPlot_TooSmall(t *testing.T) {
	grid, err := heightfield.NewGrid(1, []float64{0.5})
	require.NoError(t, err)

	_, err = Plot(grid, Options{})
	assert.ErrorIs(t, err, ErrGridTooSmall)

	_, err = Plot(nil, Options{})
	assert.ErrorIs(t, err, ErrGridTooSmall)
}
