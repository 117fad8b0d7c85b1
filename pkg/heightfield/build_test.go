package heightfield

import (
	"math/bits"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-heightfield/pkg/raster"
)

// grayImage builds an n x n 4-channel image whose red channel comes from values.
// The other channels are filled with noise so only channel 0 may matter.
func grayImage(t *testing.T, n int, values []uint8) *raster.Image {
	t.Helper()
	require.Len(t, values, n*n)

	img := raster.NewImage(n, n, 4)
	for k, v := range values {
		img.Pix[k*4] = v
		img.Pix[k*4+1] = uint8(k * 31)
		img.Pix[k*4+2] = uint8(k * 57)
		img.Pix[k*4+3] = 255
	}
	return img
}

func randomImage(n int, seed uint64) *raster.Image {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	img := raster.NewImage(n, n, 4)
	for i := range img.Pix {
		img.Pix[i] = uint8(r.IntN(256))
	}
	return img
}

func TestBuild_WorkedExample(t *testing.T) {
	raw := []float64{
		0, 0, 0, 0,
		0, 1, 1, 0,
		0, 1, 1, 0,
		0, 0, 0, 0,
	}

	grid, err := BuildFromSamples(raw, 4)
	require.NoError(t, err)

	assert.Equal(t, 4.0/9.0, grid.At(1, 1))
	assert.Equal(t, 0.25, grid.At(0, 0))
	assert.Equal(t, 0.25, grid.At(3, 3))
	// Edge cell (0,1): {0,0,0, 0,1,1} over 6 neighbors
	assert.Equal(t, 2.0/6.0, grid.At(0, 1))
}

func TestBuild_WorkedExampleFromPixels(t *testing.T) {
	img := grayImage(t, 4, []uint8{
		0, 0, 0, 0,
		0, 255, 255, 0,
		0, 255, 255, 0,
		0, 0, 0, 0,
	})

	grid, err := Build(img, 4)
	require.NoError(t, err)

	assert.Equal(t, 4.0/9.0, grid.At(1, 1))
	assert.Equal(t, 0.25, grid.At(0, 0))
}

func TestBuild_SizeAndBounds(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 16, 65, 130} {
		grid, err := Build(randomImage(n, uint64(n)), n)
		require.NoError(t, err, "resolution %d", n)

		assert.Equal(t, n, grid.Resolution())
		samples := grid.Samples()
		require.Len(t, samples, n*n)
		for k, v := range samples {
			if v < 0 || v > 1 {
				t.Fatalf("resolution %d: sample %d = %v outside [0, 1]", n, k, v)
			}
		}
	}
}

func TestBuild_SingleCell(t *testing.T) {
	grid, err := Build(grayImage(t, 1, []uint8{51}), 1)
	require.NoError(t, err)

	assert.Equal(t, []float64{51.0 / 255.0}, grid.Samples())
}

func TestBuild_Deterministic(t *testing.T) {
	img := randomImage(97, 42)

	a, err := Build(img, 97)
	require.NoError(t, err)
	b, err := Build(img, 97)
	require.NoError(t, err)

	assert.True(t, a.Equal(b), "two builds of the same image differ")
}

func TestBuild_WorkersDoNotChangeOutput(t *testing.T) {
	img := randomImage(150, 7)

	serial, err := Build(img, 150, WithWorkers(1))
	require.NoError(t, err)

	for _, workers := range []int{2, 3, 8, 200} {
		parallel, err := Build(img, 150, WithWorkers(workers))
		require.NoError(t, err)
		assert.True(t, serial.Equal(parallel), "workers=%d changed the result", workers)
	}
}

func TestBuild_ConstantImage(t *testing.T) {
	// Sums of these values are exact in binary floating point
	for _, v := range []float64{0, 0.25, 0.5, 1} {
		raw := make([]float64, 9)
		for i := range raw {
			raw[i] = v
		}

		grid, err := BuildFromSamples(raw, 3)
		require.NoError(t, err)
		for k, got := range grid.Samples() {
			assert.Equal(t, v, got, "value %v cell %d", v, k)
		}
	}

	img := grayImage(t, 3, []uint8{128, 128, 128, 128, 128, 128, 128, 128, 128})
	grid, err := Build(img, 3)
	require.NoError(t, err)
	for _, got := range grid.Samples() {
		assert.InDelta(t, 128.0/255.0, got, 1e-12)
	}
}

func TestBuild_RangeDoesNotWiden(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		img := randomImage(32, seed)

		rawLo, rawHi := 1.0, 0.0
		for k := 0; k < 32*32; k++ {
			v := float64(img.Pix[k*4]) / 255.0
			rawLo = min(rawLo, v)
			rawHi = max(rawHi, v)
		}

		grid, err := Build(img, 32)
		require.NoError(t, err)

		lo, hi := grid.Range()
		assert.GreaterOrEqual(t, lo, rawLo-1e-12)
		assert.LessOrEqual(t, hi, rawHi+1e-12)
	}
}

func TestBuild_ReadsRawSnapshot(t *testing.T) {
	// In-place smoothing would let cell (0,0) leak into (0,1) twice
	raw := []float64{
		1, 0, 0,
		0, 0, 0,
		0, 0, 0,
	}

	grid, err := BuildFromSamples(raw, 3)
	require.NoError(t, err)

	assert.Equal(t, 0.25, grid.At(0, 0))
	assert.Equal(t, 1.0/6.0, grid.At(0, 1))
	assert.Equal(t, 1.0/9.0, grid.At(1, 1))
	assert.Equal(t, 0.0, grid.At(2, 2))
	assert.Equal(t, 1.0, raw[0], "input slice was modified")
}

func TestBuild_OnlyChannelZero(t *testing.T) {
	a := grayImage(t, 2, []uint8{10, 20, 30, 40})
	b := grayImage(t, 2, []uint8{10, 20, 30, 40})
	for k := 0; k < 4; k++ {
		b.Pix[k*4+1] = 255 - b.Pix[k*4+1]
		b.Pix[k*4+2] = 0
	}

	ga, err := Build(a, 2)
	require.NoError(t, err)
	gb, err := Build(b, 2)
	require.NoError(t, err)

	assert.True(t, ga.Equal(gb))
}

func TestBuild_SingleChannelImage(t *testing.T) {
	img := raster.NewImage(2, 2, 1)
	copy(img.Pix, []uint8{0, 255, 255, 0})

	grid, err := Build(img, 2)
	require.NoError(t, err)

	for _, v := range grid.Samples() {
		assert.Equal(t, 0.5, v)
	}
}

// hugeResolution squares to 1<<UintSize, which wraps to zero as an int.
const hugeResolution = 1 << (bits.UintSize / 2)

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name       string
		img        *raster.Image
		resolution int
		want       error
	}{
		{"zero resolution", raster.NewImage(2, 2, 4), 0, ErrInvalidArgument},
		{"negative resolution", raster.NewImage(2, 2, 4), -3, ErrInvalidArgument},
		{"nil image", nil, 2, ErrMalformedInput},
		{"non-square", raster.NewImage(3, 2, 4), 3, ErrMalformedInput},
		{"wrong size", raster.NewImage(4, 4, 4), 2, ErrMalformedInput},
		{"no channels", raster.NewImage(2, 2, 0), 2, ErrMalformedInput},
		{"short buffer", &raster.Image{Width: 2, Height: 2, Channels: 4, Pix: make([]uint8, 15)}, 2, ErrMalformedInput},
		{"long buffer", &raster.Image{Width: 2, Height: 2, Channels: 1, Pix: make([]uint8, 5)}, 2, ErrMalformedInput},
		{"area overflows", &raster.Image{Width: hugeResolution, Height: hugeResolution, Channels: 1}, hugeResolution, ErrMalformedInput},
		{"channels overflow", &raster.Image{Width: hugeResolution / 2, Height: hugeResolution / 2, Channels: 4}, hugeResolution / 2, ErrMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := Build(tt.img, tt.resolution)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, grid)
		})
	}
}

func TestBuildFromSamples_Errors(t *testing.T) {
	_, err := BuildFromSamples([]float64{0, 0, 0}, 2)
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = BuildFromSamples([]float64{0, 0, 0, 1.5}, 2)
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = BuildFromSamples(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = BuildFromSamples(nil, hugeResolution)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestNewGrid_Errors(t *testing.T) {
	_, err := NewGrid(0, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewGrid(2, []float64{0, 0, 0})
	assert.ErrorIs(t, err, ErrMalformedInput)

	grid, err := NewGrid(hugeResolution, nil)
	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.Nil(t, grid)
}

func TestGrid_Immutable(t *testing.T) {
	grid, err := NewGrid(2, []float64{0.1, 0.2, 0.3, 0.4})
	require.NoError(t, err)

	s := grid.Samples()
	s[0] = 0.9
	assert.Equal(t, 0.1, grid.At(0, 0))
	assert.Equal(t, 0.0, grid.At(5, 0))
	assert.Equal(t, 4, grid.Len())
}

func TestGrid_Stats(t *testing.T) {
	grid, err := NewGrid(2, []float64{0, 0.5, 0.5, 1})
	require.NoError(t, err)

	st := grid.Stats()
	assert.Equal(t, 0.0, st.Min)
	assert.Equal(t, 1.0, st.Max)
	assert.InDelta(t, 0.5, st.Mean, 1e-12)
	assert.InDelta(t, 0.125, st.Variance, 1e-12)
	assert.InDelta(t, 0.35355339, st.StdDev, 1e-6)
	assert.InDelta(t, 0.5, grid.Quantile(0.5), 1e-12)

	single, err := NewGrid(1, []float64{0.3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, single.Stats().Variance)
}
