// Package raster holds decoded heightmap pixel buffers and the loaders that produce them.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Raster errors.
var (
	ErrInvalidSize       = errors.New("invalid raster size")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Image is a decoded pixel buffer.
// Pix is row-major with Channels interleaved 8-bit values per pixel.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewImage allocates a zeroed image.
func NewImage(width, height, channels int) *Image {
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// IsSquare reports whether width equals height.
func (m *Image) IsSquare() bool {
	return m.Width == m.Height
}

// At returns channel c of the pixel at (x, y).
// Returns 0 if any coordinate is out of bounds.
func (m *Image) At(x, y, c int) uint8 {
	if x < 0 || y < 0 || c < 0 || x >= m.Width || y >= m.Height || c >= m.Channels {
		return 0
	}
	return m.Pix[(y*m.Width+x)*m.Channels+c]
}

// Set writes channel c of the pixel at (x, y). Out of bounds writes are ignored.
func (m *Image) Set(x, y, c int, v uint8) {
	if x < 0 || y < 0 || c < 0 || x >= m.Width || y >= m.Height || c >= m.Channels {
		return
	}
	m.Pix[(y*m.Width+x)*m.Channels+c] = v
}

// FromImage draws src into a size x size RGBA buffer and returns it as a 4-channel Image.
// Scaling uses Catmull-Rom so that downsampled heightmaps stay smooth.
func FromImage(src image.Image, size int) (*Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if src == nil || src.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty source image", ErrInvalidSize)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return &Image{
		Width:    size,
		Height:   size,
		Channels: 4,
		Pix:      dst.Pix,
	}, nil
}

// FromGray wraps an 8-bit grayscale image without resampling.
func FromGray(src *image.Gray) *Image {
	b := src.Bounds()
	img := NewImage(b.Dx(), b.Dy(), 1)
	for y := 0; y < b.Dy(); y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(img.Pix[y*img.Width:(y+1)*img.Width], src.Pix[off:off+b.Dx()])
	}
	return img
}

// Gray encodes normalized values in [0, 1] into a size x size single-channel image.
// Values outside the range are clamped.
func Gray(values []float64, size int) (*Image, error) {
	if size <= 0 || len(values) != size*size {
		return nil, fmt.Errorf("%w: %d values for size %d", ErrInvalidSize, len(values), size)
	}

	img := NewImage(size, size, 1)
	for i, v := range values {
		switch {
		case v <= 0:
			img.Pix[i] = 0
		case v >= 1:
			img.Pix[i] = 255
		default:
			img.Pix[i] = uint8(v*255 + 0.5)
		}
	}
	return img, nil
}

// ToGray converts channel 0 into an *image.Gray, e.g. for PNG encoding.
func (m *Image) ToGray() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			out.SetGray(x, y, color.Gray{Y: m.At(x, y, 0)})
		}
	}
	return out
}
