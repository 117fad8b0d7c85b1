// Package noise generates synthetic heightmaps from perlin noise.
package noise

import (
	"fmt"

	"github.com/aquilax/go-perlin"

	"github.com/Faultbox/midgard-heightfield/pkg/raster"
)

// DefaultFrequency is the number of noise periods across a generated map.
const DefaultFrequency = 4.0

// Generator generates a heightmap using perlin noise.
type Generator struct {
	detail *perlin.Perlin // hills
	zone   *perlin.Perlin // lowlands vs highlands, much lower frequency

	frequency float64
}

// New creates a new Generator with a seed. A non-positive frequency selects DefaultFrequency.
func New(seed int64, frequency float64) *Generator {
	if frequency <= 0 {
		frequency = DefaultFrequency
	}
	return &Generator{
		detail:    perlin.NewPerlin(2, 2, 4, seed),
		zone:      perlin.NewPerlin(2.5, 3, 3, seed+1),
		frequency: frequency,
	}
}

// Generate returns size*size height bytes in row-major order.
// The pattern covers the same area regardless of size, so larger sizes add detail.
func (g *Generator) Generate(size int) []byte {
	buf := make([]byte, size*size)
	step := g.frequency / float64(size)

	for j := 0; j < size; j++ {
		for i := 0; i < size; i++ {
			x := float64(i) * step
			y := float64(j) * step

			h := g.detail.Noise2D(x, y)*0.5 + 0.5

			// Zone is very low frequency
			zone := clamp(g.zone.Noise2D(x*0.25, y*0.25)*2+0.6, 0, 1)
			h *= zone

			buf[i+j*size] = clampToByte(h * 255)
		}
	}

	return buf
}

// Image returns the generated heightmap as a single-channel image.
func (g *Generator) Image(size int) (*raster.Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", raster.ErrInvalidSize, size)
	}
	img := raster.NewImage(size, size, 1)
	img.Pix = g.Generate(size)
	return img, nil
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

func clampToByte(v float64) byte {
	return byte(clamp(v+0.5, 0, 255))
}
