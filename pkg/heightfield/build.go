package heightfield

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/Faultbox/midgard-heightfield/pkg/raster"
)

// smoothRadius is the half-width of the box filter (3x3 neighborhood).
const smoothRadius = 1

// minParallelRows is the grid size below which smoothing stays on one goroutine.
const minParallelRows = 64

type buildOptions struct {
	workers int
}

// Option configures Build.
type Option func(*buildOptions)

// WithWorkers splits the smoothing pass across n goroutines by row.
// n <= 0 uses GOMAXPROCS. The output does not depend on n.
func WithWorkers(n int) Option {
	return func(o *buildOptions) {
		o.workers = n
	}
}

// Build converts a square raster into a smoothed elevation grid.
//
// Channel 0 of every pixel is divided by 255 and the result is box-filtered
// with a 3x3 window whose out-of-bounds neighbors are dropped from the mean.
// The image must be resolution x resolution.
func Build(img *raster.Image, resolution int, opts ...Option) (*Grid, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("%w: resolution %d", ErrInvalidArgument, resolution)
	}
	if err := checkImage(img, resolution); err != nil {
		return nil, err
	}

	raw := make([]float64, resolution*resolution)
	for k := range raw {
		raw[k] = float64(img.Pix[k*img.Channels]) / 255.0
	}

	return &Grid{
		resolution: resolution,
		samples:    smooth(raw, resolution, workerCount(opts)),
	}, nil
}

// BuildFromSamples smooths already normalized row-major values.
// Every value must lie in [0, 1].
func BuildFromSamples(raw []float64, resolution int, opts ...Option) (*Grid, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("%w: resolution %d", ErrInvalidArgument, resolution)
	}
	if !fitsArea(resolution, 1) || len(raw) != resolution*resolution {
		return nil, fmt.Errorf("%w: %d samples for resolution %d", ErrMalformedInput, len(raw), resolution)
	}
	if err := checkNormalized(raw); err != nil {
		return nil, err
	}

	return &Grid{
		resolution: resolution,
		samples:    smooth(raw, resolution, workerCount(opts)),
	}, nil
}

func checkImage(img *raster.Image, resolution int) error {
	switch {
	case img == nil:
		return fmt.Errorf("%w: nil image", ErrMalformedInput)
	case !img.IsSquare():
		return fmt.Errorf("%w: image is %dx%d, not square", ErrMalformedInput, img.Width, img.Height)
	case img.Width != resolution:
		return fmt.Errorf("%w: image is %dx%d, want %dx%d", ErrMalformedInput, img.Width, img.Height, resolution, resolution)
	case img.Channels <= 0:
		return fmt.Errorf("%w: %d channels", ErrMalformedInput, img.Channels)
	case !fitsArea(resolution, img.Channels):
		return fmt.Errorf("%w: %dx%d image with %d channels is too large", ErrMalformedInput, resolution, resolution, img.Channels)
	case len(img.Pix) != resolution*resolution*img.Channels:
		return fmt.Errorf("%w: %d bytes of pixel data, want %d", ErrMalformedInput, len(img.Pix), resolution*resolution*img.Channels)
	}
	return nil
}

// fitsArea reports whether resolution*resolution*channels is representable as an int.
func fitsArea(resolution, channels int) bool {
	return resolution <= math.MaxInt/resolution/channels
}

func workerCount(opts []Option) int {
	o := buildOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.workers
}

// smooth box-filters raw into a new slice. raw is never written.
func smooth(raw []float64, n, workers int) []float64 {
	out := make([]float64, len(raw))

	if workers <= 1 || n < minParallelRows {
		smoothRows(raw, out, n, 0, n)
		return out
	}

	rowsPerWorker := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += rowsPerWorker {
		end := min(start+rowsPerWorker, n)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			smoothRows(raw, out, n, start, end)
		}(start, end)
	}
	wg.Wait()

	return out
}

// smoothRows fills rows [from, to) of out.
// Neighbors are summed row offset first, then column offset, both ascending.
func smoothRows(raw, out []float64, n, from, to int) {
	for i := from; i < to; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			count := 0
			for m := -smoothRadius; m <= smoothRadius; m++ {
				r := i + m
				if r < 0 || r >= n {
					continue
				}
				for k := -smoothRadius; k <= smoothRadius; k++ {
					c := j + k
					if c < 0 || c >= n {
						continue
					}
					sum += raw[r*n+c]
					count++
				}
			}
			out[i*n+j] = sum / float64(count)
		}
	}
}
