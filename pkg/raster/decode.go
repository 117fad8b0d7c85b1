package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // BMP decoder registration
)

// Decode decodes an image. TGA has no magic number so it is selected by the
// extension of name; everything else goes through image.Decode.
func Decode(r io.Reader, name string) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	if strings.EqualFold(filepath.Ext(name), ".tga") {
		return DecodeTGA(data)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, name, err)
	}
	return img, nil
}

// Load decodes an image and resamples it to size x size.
func Load(r io.Reader, name string, size int) (*Image, error) {
	img, err := Decode(r, name)
	if err != nil {
		return nil, err
	}
	return FromImage(img, size)
}

// LoadFile decodes an image file from disk and resamples it to size x size.
func LoadFile(path string, size int) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	return Load(f, path, size)
}
